package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"practicetests/middleware"
	"practicetests/services"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// respondServiceError maps service sentinel errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		respondError(c, http.StatusBadRequest, strings.TrimPrefix(err.Error(), services.ErrConflict.Error()+": "))
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, strings.TrimPrefix(err.Error(), services.ErrUnauthorized.Error()+": "))
	default:
		log.Printf("Request %s %s %s failed: %v", c.GetString(middleware.RequestIDKey), c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
