package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
)

type Category struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	ParentId  *int      `gorm:"index" json:"parent_id"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name      string `json:"name" binding:"required"`
	ParentId  *int   `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
}

func (input *NewCategory) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Category](ctx, id); err != nil {
			return utils.NewNotFound("category")
		}
	}
	if err := utils.ValidateUnique[Category](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if input.ParentId != nil {
		if id > 0 && *input.ParentId == id {
			return utils.NewValidationError("category cannot be its own parent", "parent_id")
		}
		if err := utils.ValidateResourceId[Category](ctx, *input.ParentId); err != nil {
			return utils.NewNotFound("parent category")
		}
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := Category{
		Name:      input.Name,
		ParentId:  input.ParentId,
		SortOrder: input.SortOrder,
		IsActive:  utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}

	// clear cached category list
	if err := utils.RemoveRedisList[Category](); err != nil {
		return nil, err
	}

	return &category, nil
}

func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("category")
	}

	category.Name = input.Name
	category.ParentId = input.ParentId
	category.SortOrder = input.SortOrder
	if err := db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedis[Category](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Category](); err != nil {
		return nil, err
	}

	return category, nil
}

func DeleteCategory(ctx context.Context, id int) (*Category, error) {
	db := config.GetDB()

	category, err := utils.FetchModel[Category](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("category")
	}

	count, err := utils.ResourceCountWhere[Product](ctx, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("category is used by products")
	}
	count, err = utils.ResourceCountWhere[Category](ctx, "parent_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("category has sub categories")
	}

	if err := db.WithContext(ctx).Delete(category).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedis[Category](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Category](); err != nil {
		return nil, err
	}

	return category, nil
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return GetResource[Category](ctx, id)
}

func ListCategories(ctx context.Context) ([]*Category, error) {
	return ListAllResource[Category](ctx, "sort_order ASC, id ASC")
}
