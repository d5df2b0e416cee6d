package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

func TestDuplicateUniqueColumnsRegression(t *testing.T) {
	ctx := setupIntegrationEnv(t)

	if _, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:       "COLA-001",
		Name:      "Cola",
		SalePrice: decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// a duplicate sku is a business-rule violation, not an internal error
	_, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:       "COLA-001",
		Name:      "Cola Zero",
		SalePrice: decimal.NewFromInt(110),
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate sku, got %v", err)
	}
	if validationErr.Field != "sku" {
		t.Errorf("validation field = %q, want sku", validationErr.Field)
	}

	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:  "Mei Lin",
		Phone: "0912345678",
	}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	_, err = models.CreateCustomer(ctx, &models.NewCustomer{
		Name:  "Mei Lin Again",
		Phone: "0912345678",
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for duplicate phone, got %v", err)
	}
	if validationErr.Field != "phone" {
		t.Errorf("validation field = %q, want phone", validationErr.Field)
	}
}
