package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Meta carries pagination metadata alongside list responses
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type successBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse sends a 200 response with the given data
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, successBody{Success: true, Data: data})
}

// CreatedResponse sends a 201 response with the given data
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, successBody{Success: true, Data: data})
}

// SuccessResponseWithStatus sends a response with a custom status code
func SuccessResponseWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, successBody{Success: true, Data: data})
}

// SuccessResponseWithMeta sends a 200 response with data and pagination metadata
func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, successBody{Success: true, Data: data, Meta: &meta})
}

// ErrorResponse sends an error response with the given status and message
func ErrorResponse(c *gin.Context, status int, message string) {
	code := CodeInternal
	switch status {
	case http.StatusBadRequest:
		code = CodeValidation
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusConflict:
		code = CodeConflict
	}
	c.JSON(status, errorBody{Success: false, Code: code, Message: message})
}

// AppErrorResponse sends an error response from an AppError
func AppErrorResponse(c *gin.Context, err *AppError) {
	c.JSON(err.StatusCode, errorBody{Success: false, Code: err.Code, Message: err.Message})
}
