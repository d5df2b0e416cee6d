package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listRefunds(c *gin.Context) {
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListRefunds(c.Request.Context(),
		queryInt(c, "order_id"), c.Query("status"), &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func getRefund(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	refund, err := models.GetRefund(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, refund)
}

func createRefund(c *gin.Context) {
	var input models.NewRefund
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	refund, err := models.CreateRefund(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, refund)
}

func completeRefund(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	refund, err := models.CompleteRefund(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, refund)
}
