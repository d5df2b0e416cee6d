package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Refund struct {
	ID           int             `gorm:"primary_key" json:"id"`
	RefundNumber string          `gorm:"size:30;uniqueIndex;not null" json:"refund_number"`
	OrderId      int             `gorm:"index;not null" json:"order_id"`
	Order        *Order          `json:"order,omitempty"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"refund_amount"`
	Reason       string          `gorm:"size:255" json:"reason"`
	Status       RefundStatus    `gorm:"type:enum('PENDING','COMPLETED');default:'PENDING'" json:"status"`
	CompletedAt  *time.Time      `json:"completed_at"`
	Items        []*RefundItem   `json:"items,omitempty"`
	CreatedBy    int             `json:"created_by"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type RefundItem struct {
	ID          int       `gorm:"primary_key" json:"id"`
	RefundId    int       `gorm:"index;not null" json:"refund_id"`
	OrderItemId int       `gorm:"index;not null" json:"order_item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewRefundItem struct {
	OrderItemId int `json:"order_item_id" binding:"required"`
	Quantity    int `json:"quantity" binding:"required"`
}

type NewRefund struct {
	OrderId int              `json:"order_id" binding:"required"`
	Reason  string           `json:"reason"`
	Items   []*NewRefundItem `json:"items" binding:"required,dive"`
}

// CreateRefund records a pending refund against a completed order. Stock and
// money only move when the refund completes.
func CreateRefund(ctx context.Context, input *NewRefund) (*Refund, error) {
	db := config.GetDB()

	order, err := utils.FetchModel[Order](ctx, input.OrderId, "Items")
	if err != nil {
		return nil, utils.NewNotFound("order")
	}
	if order.Status != OrderStatusCompleted && order.Status != OrderStatusConfirmed {
		return nil, utils.NewInvalidOperation("only completed orders can be refunded")
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("refund must have at least one item", "items")
	}

	orderItems := make(map[int]*OrderItem, len(order.Items))
	for _, item := range order.Items {
		orderItems[item.ID] = item
	}

	// pending refunds also count against the refundable remainder
	var pendingQuantities []struct {
		OrderItemId int
		Quantity    int
	}
	if err := db.WithContext(ctx).Model(&RefundItem{}).
		Select("refund_items.order_item_id, SUM(refund_items.quantity) AS quantity").
		Joins("JOIN refunds ON refunds.id = refund_items.refund_id").
		Where("refunds.order_id = ? AND refunds.status = ?", input.OrderId, RefundStatusPending).
		Group("refund_items.order_item_id").
		Scan(&pendingQuantities).Error; err != nil {
		return nil, err
	}
	pending := make(map[int]int, len(pendingQuantities))
	for _, p := range pendingQuantities {
		pending[p.OrderItemId] = p.Quantity
	}

	refundAmount := decimal.Zero
	items := make([]*RefundItem, 0, len(input.Items))
	for _, line := range input.Items {
		orderItem, ok := orderItems[line.OrderItemId]
		if !ok {
			return nil, utils.NewNotFound("order item")
		}
		if line.Quantity <= 0 {
			return nil, utils.NewValidationError("refund quantity must be positive", "items")
		}
		remaining := orderItem.Quantity - orderItem.RefundedQuantity - pending[line.OrderItemId]
		if line.Quantity > remaining {
			return nil, utils.NewInvalidOperation(
				fmt.Sprintf("cannot refund %d of %s: only %d left refundable", line.Quantity, orderItem.ProductName, remaining))
		}

		items = append(items, &RefundItem{
			OrderItemId: line.OrderItemId,
			Quantity:    line.Quantity,
		})
		refundAmount = refundAmount.Add(orderItem.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	createdBy, _ := utils.GetUserIdFromContext(ctx)
	refund := Refund{
		RefundNumber: utils.GenerateDocumentNumber("REF"),
		OrderId:      input.OrderId,
		RefundAmount: refundAmount,
		Reason:       input.Reason,
		Status:       RefundStatusPending,
		Items:        items,
		CreatedBy:    createdBy,
	}
	if err := db.WithContext(ctx).Create(&refund).Error; err != nil {
		return nil, err
	}

	return &refund, nil
}

// CompleteRefund executes a pending refund in one transaction: stock returns
// to the warehouse and the order items record what has been given back.
// Completing twice is rejected, as is anything that would push an item past
// its sold quantity.
func CompleteRefund(ctx context.Context, refundId int) (*Refund, error) {
	db := config.GetDB()

	refund, err := utils.FetchModel[Refund](ctx, refundId, "Items")
	if err != nil {
		return nil, utils.NewNotFound("refund")
	}
	if refund.Status != RefundStatusPending {
		return nil, utils.NewInvalidOperation("refund is not pending")
	}

	order, err := utils.FetchModel[Order](ctx, refund.OrderId)
	if err != nil {
		return nil, utils.NewNotFound("order")
	}

	now := time.Now()

	tx := db.Begin()

	for _, item := range refund.Items {
		// lock the order item so concurrent completions cannot over-refund
		var orderItem OrderItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&orderItem, item.OrderItemId).Error; err != nil {
			tx.Rollback()
			if err == gorm.ErrRecordNotFound {
				return nil, utils.NewNotFound("order item")
			}
			return nil, err
		}

		if orderItem.RefundedQuantity+item.Quantity > orderItem.Quantity {
			tx.Rollback()
			return nil, utils.NewInvalidOperation(
				fmt.Sprintf("refund exceeds sold quantity of %s", orderItem.ProductName))
		}

		if _, err := AdjustStock(tx, ctx, order.WarehouseId, orderItem.ProductId, item.Quantity,
			MovementTypeReturnIn, "refunds", refund.ID, refund.RefundNumber); err != nil {
			tx.Rollback()
			return nil, err
		}

		if err := tx.Model(&orderItem).
			UpdateColumn("refunded_quantity", orderItem.RefundedQuantity+item.Quantity).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(refund).
		Updates(map[string]interface{}{
			"status":       RefundStatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetRefund(ctx, refundId)
}

func GetRefund(ctx context.Context, id int) (*Refund, error) {
	refund, err := utils.FetchModel[Refund](ctx, id, "Items", "Order")
	if err != nil {
		return nil, utils.NewNotFound("refund")
	}
	return refund, nil
}

func ListRefunds(ctx context.Context, orderId int, status string, pagination *Pagination) (*PageResult[Refund], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Items")
	if orderId > 0 {
		dbCtx = dbCtx.Where("order_id = ?", orderId)
	}
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}

	return Paginate[Refund](dbCtx, pagination, "id DESC")
}
