package models_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type salesFixture struct {
	Store     *models.Store
	Warehouse *models.Warehouse
	Product   *models.Product
	Customer  *models.Customer
}

func seedSalesFixture(t *testing.T, ctx context.Context) *salesFixture {
	t.Helper()

	store, err := models.CreateStore(ctx, &models.NewStore{Code: "S01", Name: "Downtown"})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{Code: "W01", Name: "Backroom", StoreId: store.ID})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:       "COLA-001",
		Name:      "Cola",
		SalePrice: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:  "Mei Lin",
		Phone: "0912345678",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	if _, err := models.AdjustStockStandalone(ctx, &models.StockAdjustmentInput{
		WarehouseId:  warehouse.ID,
		ProductId:    product.ID,
		Quantity:     20,
		MovementType: models.MovementTypePurchaseIn,
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	return &salesFixture{Store: store, Warehouse: warehouse, Product: product, Customer: customer}
}

func TestCreateOrderRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	now := time.Now()
	coupon, err := models.CreateCoupon(ctx, &models.NewCoupon{
		Code:          "SAVE50",
		Name:          "50 off",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(50),
		UsageLimit:    1,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	// 3 x 100 = 300; coupon -50; taxable 250; 5% tax 13 (12.5 rounds up); total 263
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		CustomerId:  &fx.Customer.ID,
		CouponCode:  "SAVE50",
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 3},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(263)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if !order.SubTotal.Equal(decimal.NewFromInt(300)) {
		t.Errorf("sub total = %s, want 300", order.SubTotal.String())
	}
	if !order.DiscountAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("discount = %s, want 50", order.DiscountAmount.String())
	}
	if !order.TaxAmount.Equal(decimal.NewFromInt(13)) {
		t.Errorf("tax = %s, want 13", order.TaxAmount.String())
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(263)) {
		t.Errorf("total = %s, want 263", order.TotalAmount.String())
	}
	if order.Status != models.OrderStatusCompleted {
		t.Errorf("status = %s", order.Status)
	}
	if order.PointsEarned != 2 { // floor(263 / 100)
		t.Errorf("points earned = %d, want 2", order.PointsEarned)
	}

	// stock moved and the ledger carries the post balance
	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		WarehouseId: fx.Warehouse.ID, ProductId: fx.Product.ID,
		MovementType: string(models.MovementTypeSaleOut),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 1 || movements.Records[0].Quantity != -3 || movements.Records[0].Balance != 17 {
		t.Fatalf("sale movement = %+v", movements.Records[0])
	}

	// customer aggregates and points ledger
	customer, err := models.GetCustomer(ctx, fx.Customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if customer.Points != 2 || customer.TotalOrders != 1 {
		t.Errorf("customer after sale: points=%d orders=%d", customer.Points, customer.TotalOrders)
	}
	if !customer.TotalSpending.Equal(decimal.NewFromInt(263)) {
		t.Errorf("total spending = %s", customer.TotalSpending.String())
	}

	// single-use coupon is exhausted
	quote, err := models.ValidateCoupon(ctx, coupon.Code, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("ValidateCoupon: %v", err)
	}
	if quote.Valid {
		t.Error("exhausted coupon should no longer validate")
	}

	// mismatched payments are rejected before anything moves
	_, err = models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 1},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(1)},
		},
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for payment mismatch, got %v", err)
	}
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// 25 x 100 = 2500; tax 125; total 2625 — but only 20 in stock
	_, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		CustomerId:  &fx.Customer.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 25},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCard, Amount: decimal.NewFromInt(2625)},
		},
	})
	var stockErr *utils.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	// nothing persisted: no order, no movement, customer untouched
	orders, err := models.ListOrders(ctx, &models.OrderQuery{})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if orders.Total != 0 {
		t.Fatalf("order count = %d, want 0", orders.Total)
	}
	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		MovementType: string(models.MovementTypeSaleOut),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 0 {
		t.Fatalf("sale movements = %d, want 0", movements.Total)
	}
	customer, err := models.GetCustomer(ctx, fx.Customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if customer.Points != 0 || customer.TotalOrders != 0 {
		t.Fatalf("customer mutated by failed order: %+v", customer)
	}
}

func TestVoidOrderRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// grant points so the order can redeem them
	if _, err := models.AdjustPointsStandalone(ctx, fx.Customer.ID, 100, "welcome grant"); err != nil {
		t.Fatalf("AdjustPointsStandalone: %v", err)
	}

	// 2 x 100 = 200; tax 10; total 210
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		CustomerId:  &fx.Customer.ID,
		PointsUsed:  30,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 2},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(210)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	// 100 - 30 used + 2 earned
	customer, _ := models.GetCustomer(ctx, fx.Customer.ID)
	if customer.Points != 72 {
		t.Fatalf("points after sale = %d, want 72", customer.Points)
	}

	voided, err := models.VoidOrder(ctx, order.ID, "customer changed mind")
	if err != nil {
		t.Fatalf("VoidOrder: %v", err)
	}
	if voided.Status != models.OrderStatusVoided || voided.VoidReason == "" || voided.VoidedAt == nil {
		t.Fatalf("voided order = %+v", voided)
	}

	// stock returned via RETURN_IN, not by rewriting history
	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		WarehouseId: fx.Warehouse.ID, ProductId: fx.Product.ID,
		MovementType: string(models.MovementTypeReturnIn),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 1 || movements.Records[0].Quantity != 2 || movements.Records[0].Balance != 20 {
		t.Fatalf("return movement = %+v", movements.Records[0])
	}

	// loyalty compensated forward: 72 - 2 earned + 30 used = 100
	customer, _ = models.GetCustomer(ctx, fx.Customer.ID)
	if customer.Points != 100 || customer.TotalOrders != 0 {
		t.Fatalf("customer after void: points=%d orders=%d", customer.Points, customer.TotalOrders)
	}
	if !customer.TotalSpending.IsZero() {
		t.Fatalf("total spending after void = %s", customer.TotalSpending.String())
	}

	// the points ledger keeps the whole story
	logs, err := models.ListPointsLogs(ctx, fx.Customer.ID, &models.Pagination{PageSize: 50})
	if err != nil {
		t.Fatalf("ListPointsLogs: %v", err)
	}
	if logs.Total != 5 { // grant, redeem, earn, void compensation x2
		t.Fatalf("points log entries = %d, want 5", logs.Total)
	}

	// voiding twice is rejected
	_, err = models.VoidOrder(ctx, order.ID, "again")
	var invalidOp *utils.InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}
}

func TestConcurrentVoidOrderRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)
	fx := seedSalesFixture(t, ctx)

	// 2 x 100 = 200; tax 10; total 210
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		StoreId:     fx.Store.ID,
		WarehouseId: fx.Warehouse.ID,
		CustomerId:  &fx.Customer.ID,
		Items: []*models.NewOrderItem{
			{ProductId: fx.Product.ID, Quantity: 2},
		},
		Payments: []*models.NewPayment{
			{Method: models.PaymentMethodCash, Amount: decimal.NewFromInt(210)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// two cashiers void the same order at once; the row lock must let
	// exactly one compensation through
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = models.VoidOrder(ctx, order.ID, "duplicate click")
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
			t.Fatalf("unexpected void error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("concurrent voids: %d succeeded, %d rejected; want 1 and 1", succeeded, rejected)
	}

	// stock came back exactly once
	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		MovementType: string(models.MovementTypeReturnIn),
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 1 || movements.Records[0].Quantity != 2 || movements.Records[0].Balance != 20 {
		t.Fatalf("return movements = %d (%+v), want exactly one +2", movements.Total, movements.Records)
	}

	// loyalty compensated exactly once
	customer, err := models.GetCustomer(ctx, fx.Customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if customer.Points != 0 || customer.TotalOrders != 0 || !customer.TotalSpending.IsZero() {
		t.Fatalf("customer after concurrent void: points=%d orders=%d spending=%s",
			customer.Points, customer.TotalOrders, customer.TotalSpending.String())
	}
}
