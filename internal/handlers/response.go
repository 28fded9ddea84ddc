package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldline/internal/domain"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			TotalPages: totalPages,
			HasMore:    page < totalPages,
		},
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// statusFor maps business error codes onto HTTP statuses. Unknown codes
// fall through to 500.
func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound, domain.CodeProductNotFound,
		domain.CodeDiscountNotFound, domain.CodeItemNotInPO:
		return http.StatusNotFound
	case domain.CodeEmptyCart, domain.CodeValidationError,
		domain.CodeInvalidMode, domain.CodeInvalidVisitType,
		domain.CodeInvalidOutcome, domain.CodeMissingRequiredField,
		domain.CodeInvalidDate, domain.CodeMinOrderAmount,
		domain.CodeDiscountInactive, domain.CodeDiscountExpired:
		return http.StatusBadRequest
	case domain.CodeInsufficientStock, domain.CodeOrderNotCancellable,
		domain.CodeInvalidStatusTransition, domain.CodePONotEditable:
		return http.StatusConflict
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondDomainError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		respondError(c, statusFor(de.Code), de.Code, de.Message)
		return
	}
	respondError(c, http.StatusInternalServerError, domain.CodeServerError, "internal server error")
}
