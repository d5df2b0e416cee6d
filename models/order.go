package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type Order struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrderNumber    string          `gorm:"size:30;uniqueIndex;not null" json:"order_number"`
	StoreId        int             `gorm:"index;not null" json:"store_id"`
	Store          *Store          `json:"store,omitempty"`
	WarehouseId    int             `gorm:"index;not null" json:"warehouse_id"`
	CustomerId     *int            `gorm:"index" json:"customer_id"`
	Customer       *Customer       `json:"customer,omitempty"`
	OrderType      OrderType       `gorm:"type:enum('POS','ONLINE');default:'POS'" json:"order_type"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"sub_total"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	PointsUsed     int             `gorm:"default:0" json:"points_used"`
	PointsEarned   int             `gorm:"default:0" json:"points_earned"`
	Status         OrderStatus     `gorm:"type:enum('COMPLETED','CONFIRMED','CANCELLED','VOIDED');default:'COMPLETED'" json:"status"`
	Note           string          `gorm:"size:255" json:"note"`
	VoidReason     string          `gorm:"size:255" json:"void_reason"`
	VoidedBy       int             `json:"voided_by"`
	VoidedAt       *time.Time      `json:"voided_at"`
	Items          []*OrderItem    `json:"items,omitempty"`
	Payments       []*Payment      `json:"payments,omitempty"`
	CreatedBy      int             `json:"created_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	OrderId          int             `gorm:"index;not null" json:"order_id"`
	ProductId        int             `gorm:"index;not null" json:"product_id"`
	ProductName      string          `gorm:"size:200;not null" json:"product_name"`
	Sku              string          `gorm:"size:50" json:"sku"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"discount_amount"`
	SubTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sub_total"`
	RefundedQuantity int             `gorm:"default:0" json:"refunded_quantity"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type Payment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrderId         int             `gorm:"index;not null" json:"order_id"`
	Method          PaymentMethod   `gorm:"type:enum('CASH','CARD','MOBILE','POINTS','OTHER');not null" json:"method"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ReferenceNumber string          `gorm:"size:100" json:"reference_number"`
	Status          PaymentStatus   `gorm:"type:enum('PAID','REFUNDED');default:'PAID'" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrderItem struct {
	ProductId      int              `json:"product_id" binding:"required"`
	Quantity       int              `json:"quantity" binding:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
}

type NewPayment struct {
	Method          PaymentMethod   `json:"method" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	ReferenceNumber string          `json:"reference_number"`
}

type NewOrder struct {
	StoreId        int             `json:"store_id" binding:"required"`
	WarehouseId    int             `json:"warehouse_id" binding:"required"`
	CustomerId     *int            `json:"customer_id"`
	OrderType      OrderType       `json:"order_type"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CouponCode     string          `json:"coupon_code"`
	PointsUsed     int             `json:"points_used"`
	Note           string          `json:"note"`
	Items          []*NewOrderItem `json:"items" binding:"required,dive"`
	Payments       []*NewPayment   `json:"payments" binding:"required,dive"`
}

type OrderQuery struct {
	Pagination
	StoreId     int    `form:"store_id" json:"store_id"`
	CustomerId  int    `form:"customer_id" json:"customer_id"`
	Status      string `form:"status" json:"status"`
	OrderNumber string `form:"order_number" json:"order_number"`
}

func (input *NewOrder) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Store](ctx, input.StoreId); err != nil {
		return utils.NewNotFound("store")
	}
	if err := utils.ValidateResourceId[Warehouse](ctx, input.WarehouseId); err != nil {
		return utils.NewNotFound("warehouse")
	}
	if input.CustomerId != nil {
		if err := utils.ValidateResourceId[Customer](ctx, *input.CustomerId); err != nil {
			return utils.NewNotFound("customer")
		}
	}
	if len(input.Items) == 0 {
		return utils.NewValidationError("order must have at least one item", "items")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return utils.NewValidationError("item quantity must be positive", "items")
		}
		if item.DiscountAmount.IsNegative() {
			return utils.NewValidationError("item discount cannot be negative", "items")
		}
	}
	if len(input.Payments) == 0 {
		return utils.NewValidationError("order must have at least one payment", "payments")
	}
	for _, payment := range input.Payments {
		if !payment.Method.IsValid() {
			return utils.NewValidationError("invalid payment method", "payments")
		}
		if payment.Amount.IsNegative() {
			return utils.NewValidationError("payment amount cannot be negative", "payments")
		}
	}
	if input.DiscountAmount.IsNegative() {
		return utils.NewValidationError("discount cannot be negative", "discount_amount")
	}
	if input.PointsUsed < 0 {
		return utils.NewValidationError("points used cannot be negative", "points_used")
	}
	if input.PointsUsed > 0 && input.CustomerId == nil {
		return utils.NewValidationError("points require a member customer", "points_used")
	}
	return nil
}

// CreateOrder closes a sale in one transaction: pricing, stock deduction,
// payments, coupon redemption and loyalty postings either all commit or none
// do. A sold-out line or a short point balance rolls everything back.
func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	orderType := input.OrderType
	if orderType == "" {
		orderType = OrderTypePos
	}

	// price the lines; unit price falls back to the product's sale price
	subTotal := decimal.Zero
	items := make([]*OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		product, err := GetProduct(ctx, line.ProductId)
		if err != nil {
			return nil, utils.NewNotFound("product")
		}
		if product.Status != ProductStatusActive {
			return nil, utils.NewInvalidOperation(fmt.Sprintf("product %s is not for sale", product.Name))
		}

		unitPrice := product.SalePrice
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		lineSubTotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.DiscountAmount)
		if lineSubTotal.IsNegative() {
			return nil, utils.NewValidationError("line discount exceeds line amount", "items")
		}

		items = append(items, &OrderItem{
			ProductId:      product.ID,
			ProductName:    product.Name,
			Sku:            product.Sku,
			Quantity:       line.Quantity,
			UnitPrice:      unitPrice,
			DiscountAmount: line.DiscountAmount,
			SubTotal:       lineSubTotal,
		})
		subTotal = subTotal.Add(lineSubTotal)
	}

	// coupon discount is quoted up front, redeemed inside the transaction
	discountAmount := input.DiscountAmount
	couponDiscount := decimal.Zero
	if input.CouponCode != "" {
		quote, err := ValidateCoupon(ctx, input.CouponCode, subTotal)
		if err != nil {
			return nil, err
		}
		if !quote.Valid {
			return nil, utils.NewInvalidOperation("coupon is not redeemable")
		}
		couponDiscount = quote.DiscountAmount
		discountAmount = discountAmount.Add(couponDiscount)
	}
	if discountAmount.GreaterThan(subTotal) {
		discountAmount = subTotal
	}

	taxableAmount := subTotal.Sub(discountAmount)
	taxAmount := utils.CalculateTax(taxableAmount)
	totalAmount := taxableAmount.Add(taxAmount)

	// every sale must balance against its payments
	paymentTotal := decimal.Zero
	for _, payment := range input.Payments {
		paymentTotal = paymentTotal.Add(payment.Amount)
	}
	if !paymentTotal.Equal(totalAmount) {
		return nil, utils.NewValidationError(
			fmt.Sprintf("payments %s do not match order total %s", paymentTotal.String(), totalAmount.String()),
			"payments")
	}

	createdBy, _ := utils.GetUserIdFromContext(ctx)

	// serialize coupon redemption across instances (best effort; the row
	// lock below is the correctness backstop)
	if input.CouponCode != "" {
		if lock := acquireCouponLock(ctx, input.CouponCode); lock != nil {
			defer lock.Release(context.Background())
		}
	}

	tx := db.Begin()

	order := Order{
		OrderNumber:    utils.GenerateDocumentNumber("POS"),
		StoreId:        input.StoreId,
		WarehouseId:    input.WarehouseId,
		CustomerId:     input.CustomerId,
		OrderType:      orderType,
		SubTotal:       subTotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    totalAmount,
		PointsUsed:     input.PointsUsed,
		Status:         OrderStatusCompleted,
		Note:           input.Note,
		Items:          items,
		CreatedBy:      createdBy,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "models", "CreateOrder", "create", input, err)
		return nil, err
	}

	// deduct stock per line; any shortage aborts the whole sale
	for _, item := range items {
		if _, err := AdjustStock(tx, ctx, input.WarehouseId, item.ProductId, -item.Quantity,
			MovementTypeSaleOut, "orders", order.ID, order.OrderNumber); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, p := range input.Payments {
		payment := Payment{
			OrderId:         order.ID,
			Method:          p.Method,
			Amount:          p.Amount,
			ReferenceNumber: p.ReferenceNumber,
			Status:          PaymentStatusPaid,
		}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if input.CouponCode != "" {
		if _, err := redeemCoupon(tx, input.CouponCode, order.ID, couponDiscount); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// loyalty postings against the locked customer row
	if input.CustomerId != nil {
		customer, err := LockCustomer(tx, *input.CustomerId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		if input.PointsUsed > 0 {
			if err := UsePoints(tx, ctx, customer, input.PointsUsed, PointsLogTypeRedeem,
				"redeemed on order "+order.OrderNumber, "orders", order.ID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		pointsEarned := int(totalAmount.Div(decimal.NewFromInt(100)).IntPart())
		if pointsEarned > 0 {
			if err := AddPoints(tx, ctx, customer, pointsEarned, PointsLogTypeEarn,
				"earned on order "+order.OrderNumber, "orders", order.ID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		order.PointsEarned = pointsEarned

		if err := tx.Model(customer).
			Updates(map[string]interface{}{
				"total_spending": customer.TotalSpending.Add(totalAmount),
				"total_orders":   customer.TotalOrders + 1,
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		if err := tx.Model(&order).
			UpdateColumn("points_earned", pointsEarned).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetOrder(ctx, order.ID)
}

// VoidOrder reverses a completed sale: stock returns to the warehouse and
// loyalty effects are compensated with forward ledger entries. Cancelled and
// already-voided orders stay terminal.
func VoidOrder(ctx context.Context, orderId int, reason string) (*Order, error) {
	db := config.GetDB()

	voidedBy, _ := utils.GetUserIdFromContext(ctx)
	now := time.Now()

	tx := db.Begin()

	// the terminal-state guard must hold the order row lock; a concurrent
	// void must block here and then see VOIDED, not compensate twice
	var order Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, orderId).Error; err != nil {
		tx.Rollback()
		return nil, utils.NewNotFound("order")
	}
	if order.Status == OrderStatusVoided {
		tx.Rollback()
		return nil, utils.NewInvalidOperation("order is already voided")
	}
	if order.Status == OrderStatusCancelled {
		tx.Rollback()
		return nil, utils.NewInvalidOperation("cancelled order cannot be voided")
	}

	var items []*OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	var payments []*Payment
	if err := tx.Where("order_id = ?", order.ID).Find(&payments).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// return every sold unit to stock, regardless of current availability
	for _, item := range items {
		if _, err := AdjustStock(tx, ctx, order.WarehouseId, item.ProductId, item.Quantity,
			MovementTypeReturnIn, "orders", order.ID, "void "+order.OrderNumber); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// compensate loyalty with forward entries, never by deleting history
	if order.CustomerId != nil {
		customer, err := LockCustomer(tx, *order.CustomerId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		if order.PointsEarned > 0 {
			if err := UsePoints(tx, ctx, customer, order.PointsEarned, PointsLogTypeAdjust,
				"void of order "+order.OrderNumber, "orders", order.ID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		if order.PointsUsed > 0 {
			if err := AddPoints(tx, ctx, customer, order.PointsUsed, PointsLogTypeAdjust,
				"void of order "+order.OrderNumber, "orders", order.ID); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		if err := tx.Model(customer).
			Updates(map[string]interface{}{
				"total_spending": customer.TotalSpending.Sub(order.TotalAmount),
				"total_orders":   customer.TotalOrders - 1,
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	for _, payment := range payments {
		if err := tx.Model(payment).
			UpdateColumn("status", PaymentStatusRefunded).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&order).
		Updates(map[string]interface{}{
			"status":      OrderStatusVoided,
			"void_reason": reason,
			"voided_by":   voidedBy,
			"voided_at":   now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetOrder(ctx, orderId)
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	order, err := utils.FetchModel[Order](ctx, id, "Items", "Payments", "Store", "Customer")
	if err != nil {
		return nil, utils.NewNotFound("order")
	}
	return order, nil
}

func ListOrders(ctx context.Context, query *OrderQuery) (*PageResult[Order], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Items").Preload("Payments")
	if query.StoreId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", query.StoreId)
	}
	if query.CustomerId > 0 {
		dbCtx = dbCtx.Where("customer_id = ?", query.CustomerId)
	}
	if query.Status != "" {
		dbCtx = dbCtx.Where("status = ?", query.Status)
	}
	if query.OrderNumber != "" {
		dbCtx = dbCtx.Where("order_number = ?", query.OrderNumber)
	}

	return Paginate[Order](dbCtx, &query.Pagination, "id DESC")
}
