package api

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listCoupons(c *gin.Context) {
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListCoupons(c.Request.Context(), &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func createCoupon(c *gin.Context) {
	var input models.NewCoupon
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	coupon, err := models.CreateCoupon(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, coupon)
}

func updateCoupon(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewCoupon
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	coupon, err := models.UpdateCoupon(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, coupon)
}

func disableCoupon(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	coupon, err := models.DisableCoupon(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, coupon)
}

type couponValidateRequest struct {
	Code     string          `json:"code" binding:"required"`
	SubTotal decimal.Decimal `json:"sub_total"`
}

func validateCoupon(c *gin.Context) {
	var req couponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	quote, err := models.ValidateCoupon(c.Request.Context(), req.Code, req.SubTotal)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, quote)
}
