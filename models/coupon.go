package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Coupon struct {
	ID            int              `gorm:"primary_key" json:"id"`
	Code          string           `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	Name          string           `gorm:"size:100;not null" json:"name" binding:"required"`
	DiscountType  DiscountType     `gorm:"type:enum('PERCENTAGE','FIXED');not null" json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"discount_value" binding:"required"`
	MinPurchase   decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"min_purchase"`
	MaxDiscount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_discount"`
	UsageLimit    int              `gorm:"default:0" json:"usage_limit"`
	UsedCount     int              `gorm:"default:0" json:"used_count"`
	Status        CouponStatus     `gorm:"type:enum('ACTIVE','USED','EXPIRED','DISABLED');default:'ACTIVE'" json:"status"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// CouponUsage records each redemption against the order it discounted.
type CouponUsage struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CouponId       int             `gorm:"index;not null" json:"coupon_id"`
	OrderId        int             `gorm:"index;not null" json:"order_id"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewCoupon struct {
	Code          string           `json:"code" binding:"required"`
	Name          string           `json:"name" binding:"required"`
	DiscountType  DiscountType     `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal  `json:"discount_value" binding:"required"`
	MinPurchase   decimal.Decimal  `json:"min_purchase"`
	MaxDiscount   *decimal.Decimal `json:"max_discount"`
	UsageLimit    int              `json:"usage_limit"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
}

// IsValid reports whether the coupon can currently be redeemed:
// active, inside its window and not over its usage limit.
func (c *Coupon) IsValid(now time.Time) bool {
	if c.Status != CouponStatusActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// DiscountFor quotes the coupon's discount on a subtotal. Below the minimum
// purchase the discount is zero; max_discount caps percentage coupons.
func (c *Coupon) DiscountFor(subTotal decimal.Decimal) decimal.Decimal {
	if subTotal.LessThan(c.MinPurchase) {
		return decimal.Zero
	}
	discount := utils.CalculateDiscountAmount(subTotal, c.DiscountValue, string(c.DiscountType))
	if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
		discount = *c.MaxDiscount
	}
	if discount.GreaterThan(subTotal) {
		discount = subTotal
	}
	return discount
}

func (input *NewCoupon) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Coupon](ctx, id); err != nil {
			return utils.NewNotFound("coupon")
		}
	}
	if err := utils.ValidateUnique[Coupon](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.DiscountType != DiscountTypePercentage && input.DiscountType != DiscountTypeFixed {
		return utils.NewValidationError("invalid discount type", "discount_type")
	}
	if input.DiscountValue.LessThanOrEqual(decimal.Zero) {
		return utils.NewValidationError("discount value must be positive", "discount_value")
	}
	if !input.EndDate.After(input.StartDate) {
		return utils.NewValidationError("end date must be after start date", "end_date")
	}
	return nil
}

func CreateCoupon(ctx context.Context, input *NewCoupon) (*Coupon, error) {
	db := config.GetDB()

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	coupon := Coupon{
		Code:          input.Code,
		Name:          input.Name,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MinPurchase:   input.MinPurchase,
		MaxDiscount:   input.MaxDiscount,
		UsageLimit:    input.UsageLimit,
		Status:        CouponStatusActive,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}
	if err := db.WithContext(ctx).Create(&coupon).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedisList[Coupon](); err != nil {
		return nil, err
	}

	return &coupon, nil
}

func UpdateCoupon(ctx context.Context, id int, input *NewCoupon) (*Coupon, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	coupon, err := utils.FetchModel[Coupon](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("coupon")
	}

	coupon.Code = input.Code
	coupon.Name = input.Name
	coupon.DiscountType = input.DiscountType
	coupon.DiscountValue = input.DiscountValue
	coupon.MinPurchase = input.MinPurchase
	coupon.MaxDiscount = input.MaxDiscount
	coupon.UsageLimit = input.UsageLimit
	coupon.StartDate = input.StartDate
	coupon.EndDate = input.EndDate
	if err := db.WithContext(ctx).Save(coupon).Error; err != nil {
		return nil, err
	}

	if err := utils.RemoveRedis[Coupon](id); err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[Coupon](); err != nil {
		return nil, err
	}

	return coupon, nil
}

func DisableCoupon(ctx context.Context, id int) (*Coupon, error) {
	db := config.GetDB()

	coupon, err := utils.FetchModel[Coupon](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("coupon")
	}

	if err := db.WithContext(ctx).Model(coupon).
		UpdateColumn("status", CouponStatusDisabled).Error; err != nil {
		return nil, err
	}
	coupon.Status = CouponStatusDisabled

	if err := utils.RemoveRedis[Coupon](id); err != nil {
		return nil, err
	}

	return coupon, nil
}

func ListCoupons(ctx context.Context, pagination *Pagination) (*PageResult[Coupon], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx)
	return Paginate[Coupon](dbCtx, pagination, "id DESC")
}

type CouponQuote struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	Coupon         *Coupon         `json:"coupon,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ValidateCoupon is the read-only check used by the cashier screen before
// the sale closes. It never mutates the coupon.
func ValidateCoupon(ctx context.Context, code string, subTotal decimal.Decimal) (*CouponQuote, error) {
	db := config.GetDB()

	var coupon Coupon
	err := db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &CouponQuote{Valid: false, Reason: "coupon not found", DiscountAmount: decimal.Zero}, nil
		}
		return nil, err
	}

	if !coupon.IsValid(time.Now()) {
		return &CouponQuote{Valid: false, Reason: "coupon is not redeemable", Coupon: &coupon, DiscountAmount: decimal.Zero}, nil
	}
	if subTotal.LessThan(coupon.MinPurchase) {
		return &CouponQuote{Valid: false, Reason: "purchase amount below coupon minimum", Coupon: &coupon, DiscountAmount: decimal.Zero}, nil
	}

	return &CouponQuote{
		Valid:          true,
		Coupon:         &coupon,
		DiscountAmount: coupon.DiscountFor(subTotal),
	}, nil
}

// redeemCoupon locks the coupon row, re-checks validity and burns one use
// inside the caller's transaction. The row lock is the correctness backstop;
// callers serialize cross-instance via redislock first (best effort).
func redeemCoupon(tx *gorm.DB, code string, orderId int, discountAmount decimal.Decimal) (*Coupon, error) {

	var coupon Coupon
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).First(&coupon).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFound("coupon")
		}
		return nil, err
	}

	if !coupon.IsValid(time.Now()) {
		return nil, utils.NewInvalidOperation("coupon is not redeemable")
	}

	coupon.UsedCount++
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		coupon.Status = CouponStatusUsed
	}
	if err := tx.Model(&coupon).
		Updates(map[string]interface{}{
			"used_count": coupon.UsedCount,
			"status":     coupon.Status,
		}).Error; err != nil {
		return nil, err
	}

	usage := CouponUsage{
		CouponId:       coupon.ID,
		OrderId:        orderId,
		DiscountAmount: discountAmount,
	}
	if err := tx.Create(&usage).Error; err != nil {
		return nil, err
	}

	return &coupon, nil
}

// acquireCouponLock takes the best-effort cross-instance lock on a coupon
// code. A nil lock is returned when redis is unavailable; the DB row lock
// still guarantees single redemption.
func acquireCouponLock(ctx context.Context, code string) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, "couponLock:"+code, 5*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "models", "acquireCouponLock", code, nil, err)
		return nil
	}
	return lock
}
