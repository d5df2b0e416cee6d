package models

import (
	"gorm.io/gorm"
)

type Pagination struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

type PageResult[T any] struct {
	Records  []*T  `json:"records"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginate runs the count and page query on an already-filtered gorm query.
func Paginate[T any](query *gorm.DB, pagination *Pagination, orders ...string) (*PageResult[T], error) {
	pagination.Normalize()

	var total int64
	var model T
	if err := query.Model(&model).Count(&total).Error; err != nil {
		return nil, err
	}

	for _, order := range orders {
		query = query.Order(order)
	}

	var records []*T
	if err := query.Offset(pagination.Offset()).Limit(pagination.PageSize).Find(&records).Error; err != nil {
		return nil, err
	}

	return &PageResult[T]{
		Records:  records,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}
