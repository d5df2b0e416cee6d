package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

func listInventory(c *gin.Context) {
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListInventory(c.Request.Context(),
		queryInt(c, "warehouse_id"), queryInt(c, "product_id"), &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func adjustStock(c *gin.Context) {
	var input models.StockAdjustmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	inventory, err := models.AdjustStockStandalone(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inventory)
}

type reservationRequest struct {
	WarehouseId int `json:"warehouse_id" binding:"required"`
	ProductId   int `json:"product_id" binding:"required"`
	Quantity    int `json:"quantity" binding:"required"`
}

func reserveStock(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	inventory, err := models.ReserveStockStandalone(c.Request.Context(), req.WarehouseId, req.ProductId, req.Quantity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inventory)
}

func releaseStock(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	inventory, err := models.ReleaseStockStandalone(c.Request.Context(), req.WarehouseId, req.ProductId, req.Quantity)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inventory)
}

func listMovements(c *gin.Context) {
	var query models.MovementQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListMovements(c.Request.Context(), &query)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func lowStock(c *gin.Context) {
	inventories, err := models.GetLowStock(c.Request.Context(), queryInt(c, "warehouse_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, inventories)
}
