package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
)

type Store struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (input *NewStore) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Store](ctx, id); err != nil {
			return utils.NewNotFound("store")
		}
	}
	// validate unique code
	if err := utils.ValidateUnique[Store](ctx, "code", input.Code, id); err != nil {
		return err
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone number is not valid", "phone")
		}
	}
	return nil
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	store := Store{
		Code:     input.Code,
		Name:     input.Name,
		Phone:    input.Phone,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, err
	}

	return &store, nil
}

func UpdateStore(ctx context.Context, id int, input *NewStore) (*Store, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	store, err := utils.FetchModel[Store](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("store")
	}

	store.Code = input.Code
	store.Name = input.Name
	store.Phone = input.Phone
	store.Address = input.Address
	if err := db.WithContext(ctx).Save(store).Error; err != nil {
		return nil, err
	}

	return store, nil
}

func DeleteStore(ctx context.Context, id int) (*Store, error) {
	db := config.GetDB()

	store, err := utils.FetchModel[Store](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("store")
	}

	// don't delete if orders exist for the store
	count, err := utils.ResourceCountWhere[Order](ctx, "store_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("store is used in orders")
	}

	if err := db.WithContext(ctx).Delete(store).Error; err != nil {
		return nil, err
	}

	return store, nil
}

func GetStore(ctx context.Context, id int) (*Store, error) {
	store, err := utils.FetchModel[Store](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("store")
	}
	return store, nil
}

func ListStores(ctx context.Context) ([]*Store, error) {
	return utils.FetchAllModels[Store](ctx)
}
