package domain

import "errors"

// Error codes returned across the API boundary. Clients map them to
// localized messages; none are fatal to the process.
const (
	CodeEmptyCart               = "EMPTY_CART"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeDiscountNotFound        = "DISCOUNT_NOT_FOUND"
	CodeDiscountInactive        = "DISCOUNT_INACTIVE"
	CodeDiscountExpired         = "DISCOUNT_EXPIRED"
	CodeMinOrderAmount          = "MIN_ORDER_AMOUNT"
	CodeOrderNotCancellable     = "ORDER_NOT_CANCELLABLE"
	CodeInvalidMode             = "INVALID_MODE"
	CodeInvalidVisitType        = "INVALID_VISIT_TYPE"
	CodeInvalidOutcome          = "INVALID_OUTCOME"
	CodeMissingRequiredField    = "MISSING_REQUIRED_FIELD"
	CodeInvalidDate             = "INVALID_DATE"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeProductNotFound         = "PRODUCT_NOT_FOUND"
	CodeItemNotInPO             = "ITEM_NOT_IN_PO"
	CodePONotEditable           = "PO_NOT_EDITABLE"
	CodeNotFound                = "NOT_FOUND"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeServerError             = "SERVER_ERROR"
)

// Error is a business-rule failure carrying a flat string code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the error code from err, or SERVER_ERROR when err is
// not a domain error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeServerError
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code string) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
