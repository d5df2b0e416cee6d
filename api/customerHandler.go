package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listCustomers(c *gin.Context) {
	var query models.CustomerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListCustomers(c.Request.Context(), &query)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func getCustomer(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, customer)
}

func createCustomer(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, customer)
}

func updateCustomer(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, customer)
}

func listCustomerPoints(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListPointsLogs(c.Request.Context(), id, &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

type pointsAdjustRequest struct {
	Points      int    `json:"points" binding:"required"`
	Description string `json:"description"`
}

func adjustCustomerPoints(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req pointsAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	customer, err := models.AdjustPointsStandalone(c.Request.Context(), id, req.Points, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, customer)
}

func listCustomerLevels(c *gin.Context) {
	levels, err := models.ListCustomerLevels(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, levels)
}

func createCustomerLevel(c *gin.Context) {
	var input models.NewCustomerLevel
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	level, err := models.CreateCustomerLevel(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, level)
}

func updateCustomerLevel(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewCustomerLevel
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	level, err := models.UpdateCustomerLevel(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, level)
}

func setDefaultCustomerLevel(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	level, err := models.SetDefaultCustomerLevel(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, level)
}
