package models

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

type MovementType string

const (
	MovementTypePurchaseIn  MovementType = "PURCHASE_IN"
	MovementTypeSaleOut     MovementType = "SALE_OUT"
	MovementTypeReturnIn    MovementType = "RETURN_IN"
	MovementTypeAdjust      MovementType = "ADJUST"
	MovementTypeTransferIn  MovementType = "TRANSFER_IN"
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	MovementTypeCount       MovementType = "COUNT"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchaseIn, MovementTypeSaleOut, MovementTypeReturnIn,
		MovementTypeAdjust, MovementTypeTransferIn, MovementTypeTransferOut, MovementTypeCount:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypePos    OrderType = "POS"
	OrderTypeOnline OrderType = "ONLINE"
)

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusVoided    OrderStatus = "VOIDED"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodMobile PaymentMethod = "MOBILE"
	PaymentMethodPoints PaymentMethod = "POINTS"
	PaymentMethodOther  PaymentMethod = "OTHER"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodPoints, PaymentMethodOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusCompleted RefundStatus = "COMPLETED"
)

type InvoiceType string

const (
	InvoiceTypeB2C InvoiceType = "B2C"
	InvoiceTypeB2B InvoiceType = "B2B"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusIssued  InvoiceStatus = "ISSUED"
	InvoiceStatusVoided  InvoiceStatus = "VOIDED"
)

type PointsLogType string

const (
	PointsLogTypeEarn   PointsLogType = "EARN"
	PointsLogTypeRedeem PointsLogType = "REDEEM"
	PointsLogTypeAdjust PointsLogType = "ADJUST"
	PointsLogTypeExpire PointsLogType = "EXPIRE"
)

type PromotionType string

const (
	PromotionTypePercentage PromotionType = "PERCENTAGE"
	PromotionTypeFixed      PromotionType = "FIXED"
	PromotionTypeBuyXGetY   PromotionType = "BUY_X_GET_Y"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "ACTIVE"
	CouponStatusUsed     CouponStatus = "USED"
	CouponStatusExpired  CouponStatus = "EXPIRED"
	CouponStatusDisabled CouponStatus = "DISABLED"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "Admin"
	UserRoleManager UserRole = "Manager"
	UserRoleCashier UserRole = "Cashier"
)
