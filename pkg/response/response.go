package response

import (
	"net/http"
	"strconv"

	"github.com/grandslambert/backend-cms/pkg/apperr"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta represents metadata for paginated responses
type Meta struct {
	Total       int64 `json:"total"`
	Count       int   `json:"count"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}

// PaginationParams represents pagination input parameters
type PaginationParams struct {
	Page    int
	PerPage int
}

// MaxPerPage bounds the per_page query parameter.
const MaxPerPage = 100

// DefaultPagination returns default pagination values
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Page:    1,
		PerPage: 20,
	}
}

// Normalize clamps pagination parameters into their allowed ranges.
func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset returns the row offset for the current page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// errorKindToHTTPStatus maps application error kinds to HTTP status codes.
var errorKindToHTTPStatus = map[apperr.Kind]int{
	apperr.KindUnauthorized:     http.StatusUnauthorized,
	apperr.KindForbidden:        http.StatusForbidden,
	apperr.KindValidation:       http.StatusBadRequest,
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindConflict:         http.StatusConflict,
	apperr.KindImmutableBuiltin: http.StatusConflict,
	apperr.KindInUse:            http.StatusConflict,
	apperr.KindTenantNotFound:   http.StatusNotFound,
	apperr.KindTenantInactive:   http.StatusBadRequest,
	apperr.KindNotImpersonating: http.StatusBadRequest,
	apperr.KindInternal:         http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for an application error kind.
func HTTPStatus(kind apperr.Kind) int {
	if status, ok := errorKindToHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// --- Response Builders ---

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// FromAppError renders a typed application error into the response envelope.
// Validation errors name the offending field; IN_USE errors carry the
// blocking count so the caller can decide whether to cascade manually.
func FromAppError(e *apperr.Error) *Response {
	var details map[string]string
	if e.Field != "" {
		details = map[string]string{"field": e.Field}
	}
	if e.Kind == apperr.KindInUse {
		details = map[string]string{"count": strconv.FormatInt(e.Count, 10)}
	}
	return ErrorWithDetails(string(e.Kind), e.Message, details)
}

// Paginated creates a paginated success response. count is the number of
// items on the current page, total the full result-set size.
func Paginated(data interface{}, page, perPage, count int, total int64) *Response {
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return &Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:       total,
			Count:       count,
			PerPage:     perPage,
			CurrentPage: page,
			TotalPages:  totalPages,
		},
	}
}

// --- Common Error Responses ---

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error("BAD_REQUEST", message)
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(string(apperr.KindUnauthorized), message)
}

// Forbidden creates a forbidden error response
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(string(apperr.KindForbidden), message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(string(apperr.KindNotFound), message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(string(apperr.KindInternal), message)
}

// TooManyRequests creates a rate limit error response
func TooManyRequests(message string) *Response {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return Error("TOO_MANY_REQUESTS", message)
}
