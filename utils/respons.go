package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  bool   `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, kind string, err error) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  false,
		Kind:    kind,
		Message: err.Error(),
	})
}

func RespondFieldError(c *gin.Context, code int, kind, field, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{
		Status:  false,
		Kind:    kind,
		Message: message,
		Field:   field,
	})
}
