package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listCategories(c *gin.Context) {
	categories, err := models.ListCategories(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, categories)
}

func getCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	category, err := models.GetCategory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, category)
}

func createCategory(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, category)
}

func updateCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	category, err := models.UpdateCategory(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, category)
}

func deleteCategory(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if _, err := models.DeleteCategory(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
