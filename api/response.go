package api

import (
	"errors"
	"net/http"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondError maps business errors to HTTP statuses through their codes.
// Everything unrecognized is a 500 with the detail kept in the logs.
func RespondError(c *gin.Context, err error) {

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: &ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Details: utils.ProcessValidationErrors(err),
		}})
		return
	}

	var businessErr utils.BusinessError
	if errors.As(err, &businessErr) {
		status := http.StatusBadRequest
		switch businessErr.Code() {
		case "NOT_FOUND":
			status = http.StatusNotFound
		case "PERMISSION_DENIED":
			status = http.StatusUnauthorized
		}
		c.JSON(status, Response{Success: false, Error: &ErrorBody{
			Code:    businessErr.Code(),
			Message: businessErr.Error(),
		}})
		return
	}

	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: &ErrorBody{
			Code:    "NOT_FOUND",
			Message: "record not found",
		}})
		return
	}

	logger := config.GetLogger()
	config.LogError(logger, "api", "RespondError", c.FullPath(), nil, err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: &ErrorBody{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	}})
}
