package api

import (
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func listUsers(c *gin.Context) {
	users, err := models.GetAllUsers(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, users)
}

func createUser(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, err)
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, user)
}

type userActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func setUserActive(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	var req userActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}
	user, err := models.ToggleActiveModel[models.User](c.Request.Context(), id, *req.IsActive)
	if err != nil {
		RespondError(c, err)
		return
	}
	user.PrepareGive()
	RespondOK(c, user)
}
