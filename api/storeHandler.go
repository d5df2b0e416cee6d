package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func pathId(c *gin.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

func listStores(c *gin.Context) {
	stores, err := models.ListStores(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stores)
}

func getStore(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	store, err := models.GetStore(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, store)
}

func createStore(c *gin.Context) {
	var input models.NewStore
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	store, err := models.CreateStore(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, store)
}

func updateStore(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var input models.NewStore
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	store, err := models.UpdateStore(c.Request.Context(), id, &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, store)
}

func deleteStore(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if _, err := models.DeleteStore(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
