package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Sku         string          `gorm:"size:50;uniqueIndex;not null" json:"sku" binding:"required"`
	Barcode     string          `gorm:"size:50;index" json:"barcode"`
	Name        string          `gorm:"size:200;not null" json:"name" binding:"required"`
	CategoryId  int             `gorm:"index" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Unit        string          `gorm:"size:20" json:"unit"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cost_price"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"sale_price"`
	SafetyStock int             `gorm:"default:0" json:"safety_stock"`
	Status      ProductStatus   `gorm:"type:enum('ACTIVE','INACTIVE','DISCONTINUED');default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Sku         string          `json:"sku" binding:"required"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name" binding:"required"`
	CategoryId  int             `json:"category_id"`
	Unit        string          `json:"unit"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	SafetyStock int             `json:"safety_stock"`
	Status      ProductStatus   `json:"status"`
}

type ProductQuery struct {
	Pagination
	Keyword    string `form:"keyword" json:"keyword"`
	CategoryId int    `form:"category_id" json:"category_id"`
	Status     string `form:"status" json:"status"`
}

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, id); err != nil {
			return utils.NewNotFound("product")
		}
	}
	if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, id); err != nil {
		return err
	}
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[Category](ctx, input.CategoryId); err != nil {
			return utils.NewNotFound("category")
		}
	}
	if input.SalePrice.IsNegative() || input.CostPrice.IsNegative() {
		return utils.NewValidationError("price cannot be negative", "sale_price")
	}
	if input.SafetyStock < 0 {
		return utils.NewValidationError("safety stock cannot be negative", "safety_stock")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = ProductStatusActive
	}

	product := Product{
		Sku:         input.Sku,
		Barcode:     input.Barcode,
		Name:        input.Name,
		CategoryId:  input.CategoryId,
		Unit:        input.Unit,
		CostPrice:   input.CostPrice,
		SalePrice:   input.SalePrice,
		SafetyStock: input.SafetyStock,
		Status:      status,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Product](); err != nil {
		return nil, err
	}

	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("product")
	}

	product.Sku = input.Sku
	product.Barcode = input.Barcode
	product.Name = input.Name
	product.CategoryId = input.CategoryId
	product.Unit = input.Unit
	product.CostPrice = input.CostPrice
	product.SalePrice = input.SalePrice
	product.SafetyStock = input.SafetyStock
	if input.Status != "" {
		product.Status = input.Status
	}
	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedis[Product](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Product](); err != nil {
		return nil, err
	}

	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("product")
	}

	// don't delete if referenced by order lines or stock movements
	count, err := utils.ResourceCountWhere[OrderItem](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("product is used in orders")
	}
	count, err = utils.ResourceCountWhere[InventoryMovement](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("product has stock movements")
	}

	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedis[Product](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Product](); err != nil {
		return nil, err
	}

	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return GetResource[Product](ctx, id, "Category")
}

// search by sku / barcode / name keyword, optionally by category and status
func ListProducts(ctx context.Context, query *ProductQuery) (*PageResult[Product], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Category")
	if query.Keyword != "" {
		keyword := "%" + query.Keyword + "%"
		dbCtx = dbCtx.Where("sku LIKE ? OR barcode LIKE ? OR name LIKE ?", keyword, keyword, keyword)
	}
	if query.CategoryId > 0 {
		dbCtx = dbCtx.Where("category_id = ?", query.CategoryId)
	}
	if query.Status != "" {
		dbCtx = dbCtx.Where("status = ?", query.Status)
	}

	return Paginate[Product](dbCtx, &query.Pagination, "id DESC")
}
