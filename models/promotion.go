package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type Promotion struct {
	ID             int              `gorm:"primary_key" json:"id"`
	Name           string           `gorm:"size:100;not null" json:"name" binding:"required"`
	Description    string           `gorm:"type:text" json:"description"`
	PromotionType  PromotionType    `gorm:"type:enum('PERCENTAGE','FIXED','BUY_X_GET_Y');not null" json:"promotion_type" binding:"required"`
	DiscountValue  decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"discount_value"`
	MinPurchase    decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"min_purchase"`
	BuyQuantity    int              `gorm:"default:0" json:"buy_quantity"`
	GetQuantity    int              `gorm:"default:0" json:"get_quantity"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	Products       []*Product       `gorm:"many2many:promotion_products" json:"products,omitempty"`
	Categories     []*Category      `gorm:"many2many:promotion_categories" json:"categories,omitempty"`
	Stores         []*Store         `gorm:"many2many:promotion_stores" json:"stores,omitempty"`
	CustomerLevels []*CustomerLevel `gorm:"many2many:promotion_customer_levels" json:"customer_levels,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPromotion struct {
	Name             string          `json:"name" binding:"required"`
	Description      string          `json:"description"`
	PromotionType    PromotionType   `json:"promotion_type" binding:"required"`
	DiscountValue    decimal.Decimal `json:"discount_value"`
	MinPurchase      decimal.Decimal `json:"min_purchase"`
	BuyQuantity      int             `json:"buy_quantity"`
	GetQuantity      int             `json:"get_quantity"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	ProductIds       []int           `json:"product_ids"`
	CategoryIds      []int           `json:"category_ids"`
	StoreIds         []int           `json:"store_ids"`
	CustomerLevelIds []int           `json:"customer_level_ids"`
}

type CartItem struct {
	ProductId  int             `json:"product_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
	CategoryId int             `json:"category_id"`
}

type DiscountInput struct {
	StoreId    int         `json:"store_id"`
	CustomerId int         `json:"customer_id"`
	CouponCode string      `json:"coupon_code"`
	Items      []*CartItem `json:"items" binding:"required,dive"`
}

type AppliedPromotion struct {
	PromotionId    int             `json:"promotion_id,omitempty"`
	CouponId       int             `json:"coupon_id,omitempty"`
	Name           string          `json:"name"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type DiscountResult struct {
	SubTotal          decimal.Decimal     `json:"sub_total"`
	TotalDiscount     decimal.Decimal     `json:"total_discount"`
	FinalAmount       decimal.Decimal     `json:"final_amount"`
	AppliedPromotions []*AppliedPromotion `json:"applied_promotions"`
}

func (input *NewPromotion) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Promotion](ctx, id); err != nil {
			return utils.NewNotFound("promotion")
		}
	}
	switch input.PromotionType {
	case PromotionTypePercentage, PromotionTypeFixed:
		if input.DiscountValue.LessThanOrEqual(decimal.Zero) {
			return utils.NewValidationError("discount value must be positive", "discount_value")
		}
	case PromotionTypeBuyXGetY:
		if input.BuyQuantity <= 0 || input.GetQuantity <= 0 {
			return utils.NewValidationError("buy and get quantities must be positive", "buy_quantity")
		}
		if len(input.ProductIds) == 0 {
			return utils.NewValidationError("buy x get y promotion must name its products", "product_ids")
		}
	default:
		return utils.NewValidationError("invalid promotion type", "promotion_type")
	}
	if !input.EndDate.After(input.StartDate) {
		return utils.NewValidationError("end date must be after start date", "end_date")
	}
	if err := utils.ValidateResourcesId[Product](ctx, input.ProductIds); err != nil {
		return utils.NewNotFound("product")
	}
	if err := utils.ValidateResourcesId[Category](ctx, input.CategoryIds); err != nil {
		return utils.NewNotFound("category")
	}
	if err := utils.ValidateResourcesId[Store](ctx, input.StoreIds); err != nil {
		return utils.NewNotFound("store")
	}
	if err := utils.ValidateResourcesId[CustomerLevel](ctx, input.CustomerLevelIds); err != nil {
		return utils.NewNotFound("customer level")
	}
	return nil
}

func mapPromotionScopes(input *NewPromotion) ([]*Product, []*Category, []*Store, []*CustomerLevel) {
	var products []*Product
	for _, id := range utils.UniqueSlice(input.ProductIds) {
		products = append(products, &Product{ID: id})
	}
	var categories []*Category
	for _, id := range utils.UniqueSlice(input.CategoryIds) {
		categories = append(categories, &Category{ID: id})
	}
	var stores []*Store
	for _, id := range utils.UniqueSlice(input.StoreIds) {
		stores = append(stores, &Store{ID: id})
	}
	var levels []*CustomerLevel
	for _, id := range utils.UniqueSlice(input.CustomerLevelIds) {
		levels = append(levels, &CustomerLevel{ID: id})
	}
	return products, categories, stores, levels
}

func CreatePromotion(ctx context.Context, input *NewPromotion) (*Promotion, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	products, categories, stores, levels := mapPromotionScopes(input)
	promotion := Promotion{
		Name:           input.Name,
		Description:    input.Description,
		PromotionType:  input.PromotionType,
		DiscountValue:  input.DiscountValue,
		MinPurchase:    input.MinPurchase,
		BuyQuantity:    input.BuyQuantity,
		GetQuantity:    input.GetQuantity,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		IsActive:       utils.NewTrue(),
		Products:       products,
		Categories:     categories,
		Stores:         stores,
		CustomerLevels: levels,
	}
	if err := db.WithContext(ctx).Create(&promotion).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Promotion](); err != nil {
		return nil, err
	}

	return &promotion, nil
}

func UpdatePromotion(ctx context.Context, id int, input *NewPromotion) (*Promotion, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	promotion, err := utils.FetchModel[Promotion](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("promotion")
	}

	products, categories, stores, levels := mapPromotionScopes(input)

	tx := db.Begin()

	promotion.Name = input.Name
	promotion.Description = input.Description
	promotion.PromotionType = input.PromotionType
	promotion.DiscountValue = input.DiscountValue
	promotion.MinPurchase = input.MinPurchase
	promotion.BuyQuantity = input.BuyQuantity
	promotion.GetQuantity = input.GetQuantity
	promotion.StartDate = input.StartDate
	promotion.EndDate = input.EndDate
	if err := tx.WithContext(ctx).Omit("Products", "Categories", "Stores", "CustomerLevels").
		Save(promotion).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// replace scope associations
	if err := tx.WithContext(ctx).Model(promotion).Association("Products").Replace(products); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(promotion).Association("Categories").Replace(categories); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(promotion).Association("Stores").Replace(stores); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(promotion).Association("CustomerLevels").Replace(levels); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := utils.RemoveRedis[Promotion](id); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := utils.RemoveRedisList[Promotion](); err != nil {
		tx.Rollback()
		return nil, err
	}

	return promotion, tx.Commit().Error
}

func GetPromotion(ctx context.Context, id int) (*Promotion, error) {
	promotion, err := utils.FetchModel[Promotion](ctx, id, "Products", "Categories", "Stores", "CustomerLevels")
	if err != nil {
		return nil, utils.NewNotFound("promotion")
	}
	return promotion, nil
}

func ListPromotions(ctx context.Context, pagination *Pagination) (*PageResult[Promotion], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx)
	return Paginate[Promotion](dbCtx, pagination, "id DESC")
}

// ListActivePromotions loads active, in-window promotions, optionally scoped
// to one store (unscoped promotions apply everywhere).
func ListActivePromotions(ctx context.Context, storeId int) ([]*Promotion, error) {
	db := config.GetDB()

	now := time.Now()
	var promotions []*Promotion
	if err := db.WithContext(ctx).
		Preload("Products").
		Preload("Categories").
		Preload("Stores").
		Preload("CustomerLevels").
		Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now).
		Find(&promotions).Error; err != nil {
		return nil, err
	}

	if storeId == 0 {
		return promotions, nil
	}

	var scoped []*Promotion
	for _, p := range promotions {
		if p.appliesToStore(storeId) {
			scoped = append(scoped, p)
		}
	}
	return scoped, nil
}

// an empty scope list means the promotion applies to all
func (p *Promotion) appliesToStore(storeId int) bool {
	if len(p.Stores) == 0 {
		return true
	}
	for _, s := range p.Stores {
		if s.ID == storeId {
			return true
		}
	}
	return false
}

func (p *Promotion) appliesToItem(item *CartItem) bool {
	if len(p.Products) == 0 && len(p.Categories) == 0 {
		return true
	}
	for _, product := range p.Products {
		if product.ID == item.ProductId {
			return true
		}
	}
	for _, category := range p.Categories {
		if item.CategoryId > 0 && category.ID == item.CategoryId {
			return true
		}
	}
	return false
}

func (p *Promotion) appliesToLevel(levelId int) bool {
	if len(p.CustomerLevels) == 0 {
		return true
	}
	for _, level := range p.CustomerLevels {
		if levelId > 0 && level.ID == levelId {
			return true
		}
	}
	return false
}

// scopedSubTotal sums the cart lines the promotion covers.
func (p *Promotion) scopedSubTotal(items []*CartItem) decimal.Decimal {
	scoped := decimal.Zero
	for _, item := range items {
		if p.appliesToItem(item) {
			scoped = scoped.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return scoped
}

// buyXGetYDiscount prices the gift units of a quantity promotion: every full
// group of buy+get units on a covered line yields get free units at that
// line's unit price.
func (p *Promotion) buyXGetYDiscount(items []*CartItem) decimal.Decimal {
	groupSize := p.BuyQuantity + p.GetQuantity
	if groupSize <= 0 {
		return decimal.Zero
	}
	discount := decimal.Zero
	for _, item := range items {
		if !p.appliesToItem(item) {
			continue
		}
		freeUnits := (item.Quantity / groupSize) * p.GetQuantity
		if freeUnits > 0 {
			discount = discount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(freeUnits))))
		}
	}
	return discount
}

// computeDiscount is the pure pricing core: promotion discounts are additive,
// the coupon is applied on top, and the result never goes below zero.
// An invalid coupon contributes nothing rather than failing the quote.
func computeDiscount(promotions []*Promotion, coupon *Coupon, levelId int, items []*CartItem, now time.Time) *DiscountResult {

	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	totalDiscount := decimal.Zero
	var applied []*AppliedPromotion

	for _, p := range promotions {
		if !p.appliesToLevel(levelId) {
			continue
		}
		if subTotal.LessThan(p.MinPurchase) {
			continue
		}

		var discount decimal.Decimal
		switch p.PromotionType {
		case PromotionTypePercentage:
			discount = p.scopedSubTotal(items).Mul(p.DiscountValue).DivRound(decimal.NewFromInt(100), 4)
		case PromotionTypeFixed:
			if p.scopedSubTotal(items).GreaterThan(decimal.Zero) {
				discount = p.DiscountValue
			}
		case PromotionTypeBuyXGetY:
			discount = p.buyXGetYDiscount(items)
		}

		if discount.GreaterThan(decimal.Zero) {
			totalDiscount = totalDiscount.Add(discount)
			applied = append(applied, &AppliedPromotion{
				PromotionId:    p.ID,
				Name:           p.Name,
				DiscountAmount: discount,
			})
		}
	}

	if coupon != nil && coupon.IsValid(now) {
		discount := coupon.DiscountFor(subTotal)
		if discount.GreaterThan(decimal.Zero) {
			totalDiscount = totalDiscount.Add(discount)
			applied = append(applied, &AppliedPromotion{
				CouponId:       coupon.ID,
				Name:           coupon.Name,
				DiscountAmount: discount,
			})
		}
	}

	if totalDiscount.GreaterThan(subTotal) {
		totalDiscount = subTotal
	}

	return &DiscountResult{
		SubTotal:          subTotal,
		TotalDiscount:     totalDiscount,
		FinalAmount:       subTotal.Sub(totalDiscount),
		AppliedPromotions: applied,
	}
}

// CalculateDiscount quotes the discount for a cart without mutating any
// state: coupons are not burned and promotions keep their usage untouched.
func CalculateDiscount(ctx context.Context, input *DiscountInput) (*DiscountResult, error) {
	db := config.GetDB()

	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("cart must not be empty", "items")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, utils.NewValidationError("item quantity must be positive", "items")
		}
		if item.UnitPrice.IsNegative() {
			return nil, utils.NewValidationError("unit price cannot be negative", "items")
		}
	}

	promotions, err := ListActivePromotions(ctx, input.StoreId)
	if err != nil {
		return nil, err
	}

	levelId := 0
	if input.CustomerId > 0 {
		customer, err := utils.FetchModel[Customer](ctx, input.CustomerId)
		if err != nil {
			return nil, utils.NewNotFound("customer")
		}
		if customer.LevelId != nil {
			levelId = *customer.LevelId
		}
	}

	// unknown coupon codes are ignored, not failed
	var coupon *Coupon
	if input.CouponCode != "" {
		var c Coupon
		err := db.WithContext(ctx).Where("code = ?", input.CouponCode).First(&c).Error
		if err == nil {
			coupon = &c
		}
	}

	return computeDiscount(promotions, coupon, levelId, input.Items, time.Now()), nil
}
