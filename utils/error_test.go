package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{ProductName: "Cola", Required: 5, Available: 2}
	if err.Code() != "INSUFFICIENT_STOCK" {
		t.Errorf("unexpected code %q", err.Code())
	}
	if msg := err.Error(); !strings.Contains(msg, "Cola") {
		t.Errorf("message should name the product: %q", msg)
	}

	var businessErr BusinessError
	if !errors.As(error(err), &businessErr) {
		t.Error("should satisfy BusinessError")
	}
}

func TestInsufficientPointsError(t *testing.T) {
	err := &InsufficientPointsError{Required: 100, Available: 40}
	if err.Code() != "INSUFFICIENT_POINTS" {
		t.Errorf("unexpected code %q", err.Code())
	}
}

func TestTypedErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{NewInvalidOperation("nope"), "INVALID_OPERATION"},
		{NewValidationError("bad", "field"), "VALIDATION_ERROR"},
		{NewNotFound("order"), "NOT_FOUND"},
	}
	for _, c := range cases {
		var businessErr BusinessError
		if !errors.As(c.err, &businessErr) {
			t.Fatalf("%v should satisfy BusinessError", c.err)
		}
		if businessErr.Code() != c.code {
			t.Errorf("code = %q, want %q", businessErr.Code(), c.code)
		}
	}
}
