package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func TestStockAdjustReserveReleaseRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{Code: "WH1", Name: "Main"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:         "COLA-001",
		Name:        "Cola",
		SalePrice:   decimal.NewFromInt(30),
		SafetyStock: 5,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// receiving creates the inventory row lazily
	inv, err := models.AdjustStockStandalone(ctx, &models.StockAdjustmentInput{
		WarehouseId:  warehouse.ID,
		ProductId:    product.ID,
		Quantity:     10,
		MovementType: models.MovementTypePurchaseIn,
		Note:         "initial receipt",
	})
	if err != nil {
		t.Fatalf("AdjustStockStandalone: %v", err)
	}
	if inv.Quantity != 10 || inv.ReservedQuantity != 0 || inv.AvailableQuantity != 10 {
		t.Fatalf("after receipt: %+v", inv)
	}

	// reserving holds quantity without moving it
	inv, err = models.ReserveStockStandalone(ctx, warehouse.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("ReserveStockStandalone: %v", err)
	}
	if inv.Quantity != 10 || inv.ReservedQuantity != 3 || inv.AvailableQuantity != 7 {
		t.Fatalf("after reserve: %+v", inv)
	}

	// a deduction beyond available must fail and change nothing
	_, err = models.AdjustStockStandalone(ctx, &models.StockAdjustmentInput{
		WarehouseId:  warehouse.ID,
		ProductId:    product.ID,
		Quantity:     -8,
		MovementType: models.MovementTypeAdjust,
	})
	var stockErr *utils.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Required != 8 || stockErr.Available != 7 {
		t.Fatalf("error should carry the shortfall: %+v", stockErr)
	}

	movements, err := models.ListMovements(ctx, &models.MovementQuery{
		WarehouseId: warehouse.ID, ProductId: product.ID,
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 1 {
		t.Fatalf("failed adjustment must not write a movement, total = %d", movements.Total)
	}

	// a deduction within available succeeds and records the post balance
	inv, err = models.AdjustStockStandalone(ctx, &models.StockAdjustmentInput{
		WarehouseId:  warehouse.ID,
		ProductId:    product.ID,
		Quantity:     -5,
		MovementType: models.MovementTypeAdjust,
	})
	if err != nil {
		t.Fatalf("adjust -5: %v", err)
	}
	if inv.Quantity != 5 || inv.ReservedQuantity != 3 || inv.AvailableQuantity != 2 {
		t.Fatalf("after deduction: %+v", inv)
	}

	movements, err = models.ListMovements(ctx, &models.MovementQuery{
		WarehouseId: warehouse.ID, ProductId: product.ID,
	})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if movements.Total != 2 {
		t.Fatalf("movement count = %d, want 2", movements.Total)
	}
	// newest first
	if movements.Records[0].Balance != 5 || movements.Records[0].Quantity != -5 {
		t.Fatalf("latest movement = %+v", movements.Records[0])
	}

	// releasing more than reserved clamps at zero
	inv, err = models.ReleaseStockStandalone(ctx, warehouse.ID, product.ID, 10)
	if err != nil {
		t.Fatalf("ReleaseStockStandalone: %v", err)
	}
	if inv.ReservedQuantity != 0 || inv.AvailableQuantity != 5 {
		t.Fatalf("after release: %+v", inv)
	}

	// quantity 5 == safety stock 5 makes the product low stock
	low, err := models.GetLowStock(ctx, warehouse.ID)
	if err != nil {
		t.Fatalf("GetLowStock: %v", err)
	}
	if len(low) != 1 || low[0].ProductId != product.ID {
		t.Fatalf("low stock rows = %+v", low)
	}

	// reserving against a missing inventory row is a NotFound
	_, err = models.ReserveStockStandalone(ctx, warehouse.ID, product.ID+999, 1)
	var notFound *utils.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
