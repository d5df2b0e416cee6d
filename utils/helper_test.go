package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateDocumentNumber(t *testing.T) {
	number := GenerateDocumentNumber("POS")
	if !strings.HasPrefix(number, "POS") {
		t.Fatalf("expected POS prefix, got %q", number)
	}
	// prefix + yyyymmddhhmmss + 4 random digits
	if len(number) != 3+14+4 {
		t.Fatalf("unexpected length %d for %q", len(number), number)
	}
	if !regexp.MustCompile(`^POS\d{18}$`).MatchString(number) {
		t.Fatalf("unexpected format %q", number)
	}
}

func TestGenerateInvoiceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{2}-\d{8}$`)
	for i := 0; i < 100; i++ {
		number := GenerateInvoiceNumber()
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected invoice number format %q", number)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	if !IsValidEmail("user@example.com") {
		t.Error("expected user@example.com to be valid")
	}
	if IsValidEmail("not-an-email") {
		t.Error("expected not-an-email to be invalid")
	}
	if IsValidEmail("user@") {
		t.Error("expected user@ to be invalid")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{1, 2, 2, 3, 1})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("UniqueSlice = %v, want [1 2 3]", got)
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("0912345678"); got != "0912****78" {
		t.Errorf("MaskPhone = %q", got)
	}
	if got := MaskPhone("12345"); got != "12345" {
		t.Errorf("short phone should pass through, got %q", got)
	}
}

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail("test@example.com"); got != "t***@example.com" {
		t.Errorf("MaskEmail = %q", got)
	}
}
