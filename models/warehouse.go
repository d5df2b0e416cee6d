package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
)

type Warehouse struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	StoreId   int       `gorm:"index" json:"store_id"`
	Address   string    `gorm:"size:255" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWarehouse struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	StoreId int    `json:"store_id"`
	Address string `json:"address"`
}

func (input *NewWarehouse) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Warehouse](ctx, id); err != nil {
			return utils.NewNotFound("warehouse")
		}
	}
	if err := utils.ValidateUnique[Warehouse](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.StoreId > 0 {
		if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
			return utils.NewNotFound("store")
		}
	}
	return nil
}

func CreateWarehouse(ctx context.Context, input *NewWarehouse) (*Warehouse, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	warehouse := Warehouse{
		Code:     input.Code,
		Name:     input.Name,
		StoreId:  input.StoreId,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&warehouse).Error; err != nil {
		return nil, err
	}

	return &warehouse, nil
}

func UpdateWarehouse(ctx context.Context, id int, input *NewWarehouse) (*Warehouse, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	warehouse, err := utils.FetchModel[Warehouse](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("warehouse")
	}

	warehouse.Code = input.Code
	warehouse.Name = input.Name
	warehouse.StoreId = input.StoreId
	warehouse.Address = input.Address
	if err := db.WithContext(ctx).Save(warehouse).Error; err != nil {
		return nil, err
	}

	return warehouse, nil
}

func DeleteWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	db := config.GetDB()

	warehouse, err := utils.FetchModel[Warehouse](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("warehouse")
	}

	// don't delete if stock records exist
	count, err := utils.ResourceCountWhere[Inventory](ctx, "warehouse_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("warehouse has inventory records")
	}

	if err := db.WithContext(ctx).Delete(warehouse).Error; err != nil {
		return nil, err
	}

	return warehouse, nil
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	warehouse, err := utils.FetchModel[Warehouse](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("warehouse")
	}
	return warehouse, nil
}

func ListWarehouses(ctx context.Context) ([]*Warehouse, error) {
	return utils.FetchAllModels[Warehouse](ctx)
}
