package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listInvoices(c *gin.Context) {
	var pagination models.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondError(c, err)
		return
	}
	result, err := models.ListInvoices(c.Request.Context(), c.Query("status"), &pagination)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func getInvoice(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, invoice)
}

func createInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, invoice)
}

func issueInvoice(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	invoice, err := models.IssueInvoice(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, invoice)
}

func voidInvoice(c *gin.Context) {
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
	invoice, err := models.VoidInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, invoice)
}
