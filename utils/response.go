package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AppError is implemented by domain errors that carry their own HTTP mapping.
type AppError interface {
	error
	HTTPStatus() int
	AppCode() int
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Created returns a 201 success response.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusCreated, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// Fail maps err onto an error response. Domain errors keep their status and message;
// anything else is logged and reported as a generic 500 with fallbackCode.
func Fail(ctx *gin.Context, err error, fallbackCode int) {
	var appErr AppError
	if errors.As(err, &appErr) {
		Error(ctx, appErr.HTTPStatus(), appErr.AppCode(), appErr.Error())
		return
	}
	Sugar.Errorw("request failed", "path", ctx.FullPath(), "code", fallbackCode, "error", err)
	Error(ctx, http.StatusInternalServerError, fallbackCode, "internal server error")
}
