package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCart() []*CartItem {
	return []*CartItem{
		{ProductId: 1, Quantity: 2, UnitPrice: dec("100"), CategoryId: 10},
		{ProductId: 2, Quantity: 1, UnitPrice: dec("300"), CategoryId: 20},
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	promotions := []*Promotion{{
		ID:            1,
		Name:          "10% off",
		PromotionType: PromotionTypePercentage,
		DiscountValue: dec("10"),
	}}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())

	if !result.SubTotal.Equal(dec("500")) {
		t.Fatalf("sub total = %s, want 500", result.SubTotal.String())
	}
	if !result.TotalDiscount.Equal(dec("50")) {
		t.Fatalf("discount = %s, want 50", result.TotalDiscount.String())
	}
	if !result.FinalAmount.Equal(dec("450")) {
		t.Fatalf("final = %s, want 450", result.FinalAmount.String())
	}
	if len(result.AppliedPromotions) != 1 || result.AppliedPromotions[0].PromotionId != 1 {
		t.Fatalf("unexpected applied promotions %+v", result.AppliedPromotions)
	}
}

func TestComputeDiscountAdditive(t *testing.T) {
	promotions := []*Promotion{
		{ID: 1, Name: "10% off", PromotionType: PromotionTypePercentage, DiscountValue: dec("10")},
		{ID: 2, Name: "30 off", PromotionType: PromotionTypeFixed, DiscountValue: dec("30")},
	}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())

	if !result.TotalDiscount.Equal(dec("80")) {
		t.Fatalf("discount = %s, want 80 (50 + 30)", result.TotalDiscount.String())
	}
	if len(result.AppliedPromotions) != 2 {
		t.Fatalf("expected both promotions applied, got %d", len(result.AppliedPromotions))
	}
}

func TestComputeDiscountMinPurchaseGate(t *testing.T) {
	promotions := []*Promotion{{
		ID:            1,
		Name:          "big spender",
		PromotionType: PromotionTypeFixed,
		DiscountValue: dec("100"),
		MinPurchase:   dec("1000"),
	}}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())

	if !result.TotalDiscount.IsZero() {
		t.Fatalf("discount below min purchase should be zero, got %s", result.TotalDiscount.String())
	}
}

func TestComputeDiscountProductScope(t *testing.T) {
	// percentage applies only to product 1 lines
	promotions := []*Promotion{{
		ID:            1,
		Name:          "cola sale",
		PromotionType: PromotionTypePercentage,
		DiscountValue: dec("10"),
		Products:      []*Product{{ID: 1}},
	}}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())

	// 10% of the 2x100 line only
	if !result.TotalDiscount.Equal(dec("20")) {
		t.Fatalf("discount = %s, want 20", result.TotalDiscount.String())
	}
}

func TestComputeDiscountBuyXGetY(t *testing.T) {
	// buy 2 get 1: 7 units => 2 full groups of 3 => 2 free units
	promotions := []*Promotion{{
		ID:            1,
		Name:          "buy 2 get 1",
		PromotionType: PromotionTypeBuyXGetY,
		BuyQuantity:   2,
		GetQuantity:   1,
		Products:      []*Product{{ID: 1}},
	}}
	cart := []*CartItem{
		{ProductId: 1, Quantity: 7, UnitPrice: dec("50")},
	}

	result := computeDiscount(promotions, nil, 0, cart, time.Now())

	if !result.TotalDiscount.Equal(dec("100")) {
		t.Fatalf("discount = %s, want 100 (2 free units x 50)", result.TotalDiscount.String())
	}

	// below a full group nothing is free
	cart[0].Quantity = 2
	result = computeDiscount(promotions, nil, 0, cart, time.Now())
	if !result.TotalDiscount.IsZero() {
		t.Fatalf("2 units should earn nothing, got %s", result.TotalDiscount.String())
	}
}

func TestComputeDiscountLevelScope(t *testing.T) {
	promotions := []*Promotion{{
		ID:             1,
		Name:           "gold members",
		PromotionType:  PromotionTypePercentage,
		DiscountValue:  dec("20"),
		CustomerLevels: []*CustomerLevel{{ID: 3}},
	}}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())
	if !result.TotalDiscount.IsZero() {
		t.Fatalf("non-member should get nothing, got %s", result.TotalDiscount.String())
	}

	result = computeDiscount(promotions, nil, 3, testCart(), time.Now())
	if !result.TotalDiscount.Equal(dec("100")) {
		t.Fatalf("gold member discount = %s, want 100", result.TotalDiscount.String())
	}
}

func TestComputeDiscountCouponWithCap(t *testing.T) {
	now := time.Now()
	maxDiscount := dec("30")
	coupon := &Coupon{
		ID:            7,
		Code:          "SAVE20",
		Name:          "save 20%",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: dec("20"),
		MaxDiscount:   &maxDiscount,
		Status:        CouponStatusActive,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
	}

	result := computeDiscount(nil, coupon, 0, testCart(), now)

	// 20% of 500 is 100, capped at 30
	if !result.TotalDiscount.Equal(dec("30")) {
		t.Fatalf("discount = %s, want capped 30", result.TotalDiscount.String())
	}
	if len(result.AppliedPromotions) != 1 || result.AppliedPromotions[0].CouponId != 7 {
		t.Fatalf("unexpected applied %+v", result.AppliedPromotions)
	}
}

func TestComputeDiscountInvalidCouponIgnored(t *testing.T) {
	now := time.Now()
	coupon := &Coupon{
		ID:            7,
		Code:          "OLD",
		DiscountType:  DiscountTypeFixed,
		DiscountValue: dec("50"),
		Status:        CouponStatusActive,
		StartDate:     now.Add(-2 * time.Hour),
		EndDate:       now.Add(-time.Hour), // expired
	}

	result := computeDiscount(nil, coupon, 0, testCart(), now)

	if !result.TotalDiscount.IsZero() {
		t.Fatalf("expired coupon must contribute nothing, got %s", result.TotalDiscount.String())
	}
	if !result.FinalAmount.Equal(result.SubTotal) {
		t.Fatalf("final amount should equal sub total")
	}
}

func TestComputeDiscountNeverNegative(t *testing.T) {
	promotions := []*Promotion{
		{ID: 1, Name: "a", PromotionType: PromotionTypeFixed, DiscountValue: dec("400")},
		{ID: 2, Name: "b", PromotionType: PromotionTypeFixed, DiscountValue: dec("400")},
	}

	result := computeDiscount(promotions, nil, 0, testCart(), time.Now())

	if !result.TotalDiscount.Equal(result.SubTotal) {
		t.Fatalf("discount must clamp at sub total, got %s", result.TotalDiscount.String())
	}
	if !result.FinalAmount.IsZero() {
		t.Fatalf("final amount must not go negative, got %s", result.FinalAmount.String())
	}
}

func TestCouponIsValid(t *testing.T) {
	now := time.Now()
	base := Coupon{
		Status:     CouponStatusActive,
		StartDate:  now.Add(-time.Hour),
		EndDate:    now.Add(time.Hour),
		UsageLimit: 0,
	}

	if !base.IsValid(now) {
		t.Error("active in-window coupon should be valid")
	}

	c := base
	c.Status = CouponStatusDisabled
	if c.IsValid(now) {
		t.Error("disabled coupon must be invalid")
	}

	c = base
	c.UsageLimit = 3
	c.UsedCount = 3
	if c.IsValid(now) {
		t.Error("exhausted coupon must be invalid")
	}
	c.UsedCount = 2
	if !c.IsValid(now) {
		t.Error("coupon below its limit should be valid")
	}

	c = base
	c.StartDate = now.Add(time.Hour)
	c.EndDate = now.Add(2 * time.Hour)
	if c.IsValid(now) {
		t.Error("not-yet-started coupon must be invalid")
	}
}

func TestCouponDiscountFor(t *testing.T) {
	c := Coupon{
		DiscountType:  DiscountTypeFixed,
		DiscountValue: dec("80"),
		MinPurchase:   dec("200"),
	}

	if got := c.DiscountFor(dec("150")); !got.IsZero() {
		t.Errorf("below min purchase should quote zero, got %s", got.String())
	}
	if got := c.DiscountFor(dec("500")); !got.Equal(dec("80")) {
		t.Errorf("fixed discount = %s, want 80", got.String())
	}
	// discount never exceeds the sub total
	c.MinPurchase = decimal.Zero
	if got := c.DiscountFor(dec("50")); !got.Equal(dec("50")) {
		t.Errorf("discount should clamp at sub total, got %s", got.String())
	}
}
