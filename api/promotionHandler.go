package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listPromotions(c *gin.Context) {
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListPromotions(c.Request.Context(), &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func listActivePromotions(c *gin.Context) {
	promotions, err := models.ListActivePromotions(c.Request.Context(), queryInt(c, "store_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, promotions)
}

func getPromotion(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	promotion, err := models.GetPromotion(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, promotion)
}

func createPromotion(c *gin.Context) {
	var input models.NewPromotion
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	promotion, err := models.CreatePromotion(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, promotion)
}

func updatePromotion(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewPromotion
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	promotion, err := models.UpdatePromotion(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, promotion)
}

func calculateDiscount(c *gin.Context) {
	var input models.DiscountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.CalculateDiscount(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}
