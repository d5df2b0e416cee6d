package models_test

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func TestRefundLifecycleRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// 5 x 100 = 500; tax 25; total 525
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 5},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCard, Amount: decimal.NewFromInt(525)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	itemId := order.Items[0].ID

	// refunding more than was sold is rejected up front
	_, err = models.CreateRefund(ctx, &models.NewRefund{
		OrderId: order.ID,
		Reason:  "damaged",
		Items:   []*models.NewRefundItem{{OrderItemId: itemId, Quantity: 6}},
	})
	var invalidOp *utils.InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError for over-refund, got %v", err)
	}

	refund, err := models.CreateRefund(ctx, &models.NewRefund{
		OrderId: order.ID,
		Reason:  "damaged",
		Items:   []*models.NewRefundItem{{OrderItemId: itemId, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}
	if refund.Status != models.RefundStatusPending {
		t.Fatalf("refund status = %s, want PENDING", refund.Status)
	}
	if !refund.RefundAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("refund amount = %s, want 200", refund.RefundAmount.String())
	}

	// a pending refund already counts against the refundable remainder
	_, err = models.CreateRefund(ctx, &models.NewRefund{
		OrderId: order.ID,
		Items:   []*models.NewRefundItem{{OrderItemId: itemId, Quantity: 4}},
	})
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError for overlapping refunds, got %v", err)
	}

	// creating the refund moves nothing
	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		MovementType: string(models.MovementTypeReturnIn),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 0 {
		t.Fatalf("pending refund must not move stock, got %d movements", movements.Total)
	}

	completed, err := models.CompleteRefund(ctx, refund.ID)
	if err != nil {
		t.Fatalf("CompleteRefund: %v", err)
	}
	if completed.Status != models.RefundStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("completed refund = %+v", completed)
	}

	// stock came back: 20 seeded - 5 sold + 2 returned = 17
	movements, err = models.ListMovements(ctx, &models.MovementQuery{
		MovementType: string(models.MovementTypeReturnIn),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 1 || movements.Records[0].Quantity != 2 || movements.Records[0].Balance != 17 {
		t.Fatalf("return movement = %+v", movements.Records[0])
	}

	order, err = models.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.Items[0].RefundedQuantity != 2 {
		t.Fatalf("refunded quantity = %d, want 2", order.Items[0].RefundedQuantity)
	}

	// completing twice is rejected
	_, err = models.CompleteRefund(ctx, refund.ID)
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError on re-complete, got %v", err)
	}
}

func TestInvoiceLifecycleRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// 4 x 100 = 400; tax 20; total 420
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 4},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(420)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// B2B without a tax id is rejected
	_, err = models.CreateInvoice(ctx, &models.NewInvoice{
		OrderId:     order.ID,
		InvoiceType: models.InvoiceTypeB2B,
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for B2B without tax id, got %v", err)
	}

	invoice, err := models.CreateInvoice(ctx, &models.NewInvoice{
		OrderId:     order.ID,
		InvoiceType: models.InvoiceTypeB2C,
		CarrierType: "MOBILE",
		CarrierId:   "/ABC1234",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if invoice.Status != models.InvoiceStatusPending {
		t.Fatalf("invoice status = %s, want PENDING", invoice.Status)
	}
	if ok, _ := regexp.MatchString(`^[A-Z]{2}-\d{8}$`, invoice.InvoiceNumber); !ok {
		t.Fatalf("invoice number %q has wrong format", invoice.InvoiceNumber)
	}
	if !invoice.TaxAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("invoice tax = %s, want 20", invoice.TaxAmount.String())
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(420)) {
		t.Fatalf("invoice total = %s, want 420", invoice.TotalAmount.String())
	}

	// one invoice per order
	_, err = models.CreateInvoice(ctx, &models.NewInvoice{
		OrderId:     order.ID,
		InvoiceType: models.InvoiceTypeB2C,
	})
	var invalidOp *utils.InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError for duplicate invoice, got %v", err)
	}

	// voiding before issuing is not allowed
	_, err = models.VoidInvoice(ctx, invoice.ID, "typo")
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError voiding a pending invoice, got %v", err)
	}

	issued, err := models.IssueInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("IssueInvoice: %v", err)
	}
	if issued.Status != models.InvoiceStatusIssued || issued.IssuedAt == nil {
		t.Fatalf("issued invoice = %+v", issued)
	}

	// issuing twice is rejected
	_, err = models.IssueInvoice(ctx, invoice.ID)
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError on re-issue, got %v", err)
	}

	voided, err := models.VoidInvoice(ctx, invoice.ID, "buyer cancelled")
	if err != nil {
		t.Fatalf("VoidInvoice: %v", err)
	}
	if voided.Status != models.InvoiceStatusVoided || voided.VoidReason != "buyer cancelled" {
		t.Fatalf("voided invoice = %+v", voided)
	}

	// voided stays terminal
	_, err = models.VoidInvoice(ctx, invoice.ID, "again")
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError voiding twice, got %v", err)
	}

	found, err := models.GetInvoiceByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetInvoiceByOrder: %v", err)
	}
	if found.ID != invoice.ID {
		t.Fatalf("GetInvoiceByOrder returned invoice %d, want %d", found.ID, invoice.ID)
	}
}

func TestConcurrentInvoiceIssueRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// 1 x 100; tax 5; total 105
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 1},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(105)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	invoice, err := models.CreateInvoice(ctx, &models.NewInvoice{
		OrderId:     order.ID,
		InvoiceType: models.InvoiceTypeB2C,
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// the status-conditional update lets exactly one issuer through
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = models.IssueInvoice(ctx, invoice.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	var invalidOp *utils.InvalidOperationError
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &invalidOp):
			rejected++
		default:
			t.Fatalf("unexpected issue error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("concurrent issues: %d succeeded, %d rejected; want 1 and 1", succeeded, rejected)
	}

	final, err := models.GetInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if final.Status != models.InvoiceStatusIssued || final.IssuedAt == nil {
		t.Fatalf("final invoice = %+v", final)
	}
}
