package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listOrders(c *gin.Context) {
	var query models.OrderQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListOrders(c.Request.Context(), &query)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func getOrder(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	order, err := models.GetOrder(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, order)
}

func createOrder(c *gin.Context) {
	var input models.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	order, err := models.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, order)
}

type voidRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func voidOrder(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req voidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	order, err := models.VoidOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, order)
}
