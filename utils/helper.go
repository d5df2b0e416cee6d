package utils

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "TW"

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil // Phone number is valid for the specified country code
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

const digits = "0123456789"
const uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomString(charset string, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// GenerateDocumentNumber returns {prefix}{yyyymmddhhmmss}{4 random digits},
// e.g. POS202601021504059731. Used for order and refund numbers.
func GenerateDocumentNumber(prefix string) string {
	timestamp := time.Now().Format("20060102150405")
	return prefix + timestamp + randomString(digits, 4)
}

// GenerateInvoiceNumber returns a number in the local fiscal format:
// two uppercase letters, a dash, then eight digits (e.g. AB-12345678).
// Real issuance against the tax authority platform is out of scope; the
// caller must retry on unique-key collision.
func GenerateInvoiceNumber() string {
	return randomString(uppercaseLetters, 2) + "-" + randomString(digits, 8)
}

// GenerateCode returns a random uppercase alphanumeric code with optional prefix.
func GenerateCode(prefix string, length int) string {
	return prefix + randomString(uppercaseLetters+digits, length)
}

// GenerateMemberNo returns the next member number, sequenced through the
// redis counter when available, e.g. M00000042. Falls back to a random
// code when redis is not connected (uniqueness enforced by the DB).
func GenerateMemberNo(ctx context.Context) string {
	seq, err := config.GetRedisCounter(ctx, "memberNoSeq")
	if err != nil || seq == 0 {
		return GenerateCode("M", 8)
	}
	return fmt.Sprintf("M%08d", seq)
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// returns slice removing duplicate elements
func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			// if not exists in map, append it, otherwise do nothing
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

func NilIfEmpty[T comparable](v T) *T {
	var defaultZero T
	if v == defaultZero {
		return nil
	}
	return &v
}

// turn salesOrder to SalesOrder
func UppercaseFirst(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// MaskPhone masks the middle of a phone number: 0912****78
func MaskPhone(phone string) string {
	if len(phone) < 6 {
		return phone
	}
	return phone[:4] + "****" + phone[len(phone)-2:]
}

// MaskEmail masks the local part of an email: t***@example.com
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 1 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
