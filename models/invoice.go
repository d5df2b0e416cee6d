package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID            int             `gorm:"primary_key" json:"id"`
	InvoiceNumber string          `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`
	OrderId       int             `gorm:"uniqueIndex;not null" json:"order_id"`
	Order         *Order          `json:"order,omitempty"`
	InvoiceType   InvoiceType     `gorm:"type:enum('B2C','B2B');default:'B2C'" json:"invoice_type"`
	Status        InvoiceStatus   `gorm:"type:enum('PENDING','ISSUED','VOIDED');default:'PENDING'" json:"status"`
	TaxableAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"taxable_amount"`
	TaxFreeAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax_free_amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	BuyerTaxId    string          `gorm:"size:20" json:"buyer_tax_id"`
	BuyerName     string          `gorm:"size:100" json:"buyer_name"`
	CarrierType   string          `gorm:"size:20" json:"carrier_type"`
	CarrierId     string          `gorm:"size:64" json:"carrier_id"`
	DonationCode  string          `gorm:"size:10" json:"donation_code"`
	IssuedAt      *time.Time      `json:"issued_at"`
	VoidReason    string          `gorm:"size:255" json:"void_reason"`
	VoidedAt      *time.Time      `json:"voided_at"`
	Items         []*InvoiceItem  `json:"items,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Description string          `gorm:"size:200;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoice struct {
	OrderId      int         `json:"order_id" binding:"required"`
	InvoiceType  InvoiceType `json:"invoice_type"`
	BuyerTaxId   string      `json:"buyer_tax_id"`
	BuyerName    string      `json:"buyer_name"`
	CarrierType  string      `json:"carrier_type"`
	CarrierId    string      `json:"carrier_id"`
	DonationCode string      `json:"donation_code"`
}

// CreateInvoice opens a pending fiscal invoice for an order. One invoice per
// order; B2B invoices must carry the buyer's tax id.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	db := config.GetDB()

	order, err := utils.FetchModel[Order](ctx, input.OrderId, "Items")
	if err != nil {
		return nil, utils.NewNotFound("order")
	}
	if order.Status != OrderStatusCompleted && order.Status != OrderStatusConfirmed {
		return nil, utils.NewInvalidOperation("only completed orders can be invoiced")
	}

	count, err := utils.ResourceCountWhere[Invoice](ctx, "order_id = ?", input.OrderId)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInvalidOperation("order already has an invoice")
	}

	invoiceType := input.InvoiceType
	if invoiceType == "" {
		invoiceType = InvoiceTypeB2C
	}
	if invoiceType == InvoiceTypeB2B && input.BuyerTaxId == "" {
		return nil, utils.NewValidationError("b2b invoice requires buyer tax id", "buyer_tax_id")
	}

	taxableAmount := order.SubTotal.Sub(order.DiscountAmount)
	taxAmount := utils.CalculateTax(taxableAmount)
	totalAmount := taxableAmount.Add(taxAmount)

	items := make([]*InvoiceItem, 0, len(order.Items))
	for _, orderItem := range order.Items {
		items = append(items, &InvoiceItem{
			Description: orderItem.ProductName,
			Quantity:    orderItem.Quantity,
			UnitPrice:   orderItem.UnitPrice,
			Amount:      orderItem.SubTotal,
		})
	}

	invoice := Invoice{
		OrderId:       input.OrderId,
		InvoiceType:   invoiceType,
		Status:        InvoiceStatusPending,
		TaxableAmount: taxableAmount,
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		BuyerTaxId:    input.BuyerTaxId,
		BuyerName:     input.BuyerName,
		CarrierType:   input.CarrierType,
		CarrierId:     input.CarrierId,
		DonationCode:  input.DonationCode,
		Items:         items,
	}

	// number collisions are rare; regenerate and retry a few times
	for attempt := 0; attempt < 5; attempt++ {
		invoice.InvoiceNumber = utils.GenerateInvoiceNumber()
		err = db.WithContext(ctx).Create(&invoice).Error
		if err == nil {
			return &invoice, nil
		}
		if !isDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, err
}

func isDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

// IssueInvoice moves a pending invoice to issued and stamps the issue time.
func IssueInvoice(ctx context.Context, id int) (*Invoice, error) {
	db := config.GetDB()

	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("invoice")
	}
	if invoice.Status != InvoiceStatusPending {
		return nil, utils.NewInvalidOperation("only pending invoices can be issued")
	}

	// conditional on status so a concurrent transition cannot also win
	now := time.Now()
	result := db.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND status = ?", id, InvoiceStatusPending).
		Updates(map[string]interface{}{
			"status":    InvoiceStatusIssued,
			"issued_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidOperation("only pending invoices can be issued")
	}
	invoice.Status = InvoiceStatusIssued
	invoice.IssuedAt = &now

	return invoice, nil
}

// VoidInvoice voids an issued invoice with a reason. Pending invoices are
// voided by never issuing them; voided stays terminal.
func VoidInvoice(ctx context.Context, id int, reason string) (*Invoice, error) {
	db := config.GetDB()

	invoice, err := utils.FetchModel[Invoice](ctx, id)
	if err != nil {
		return nil, utils.NewNotFound("invoice")
	}
	if invoice.Status != InvoiceStatusIssued {
		return nil, utils.NewInvalidOperation("only issued invoices can be voided")
	}

	now := time.Now()
	result := db.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND status = ?", id, InvoiceStatusIssued).
		Updates(map[string]interface{}{
			"status":      InvoiceStatusVoided,
			"void_reason": reason,
			"voided_at":   now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInvalidOperation("only issued invoices can be voided")
	}
	invoice.Status = InvoiceStatusVoided
	invoice.VoidReason = reason
	invoice.VoidedAt = &now

	return invoice, nil
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	invoice, err := utils.FetchModel[Invoice](ctx, id, "Items", "Order")
	if err != nil {
		return nil, utils.NewNotFound("invoice")
	}
	return invoice, nil
}

func GetInvoiceByOrder(ctx context.Context, orderId int) (*Invoice, error) {
	db := config.GetDB()

	var invoice Invoice
	err := db.WithContext(ctx).Preload("Items").
		Where("order_id = ?", orderId).First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFound("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}

func ListInvoices(ctx context.Context, status string, pagination *Pagination) (*PageResult[Invoice], error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx)
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}

	return Paginate[Invoice](dbCtx, pagination, "id DESC")
}
