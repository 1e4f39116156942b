package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	archivedomain "github.com/smallbiznis/aquaflow/internal/archive/domain"
	areadomain "github.com/smallbiznis/aquaflow/internal/area/domain"
	auditdomain "github.com/smallbiznis/aquaflow/internal/audit/domain"
	"github.com/smallbiznis/aquaflow/internal/authorization"
	cardomain "github.com/smallbiznis/aquaflow/internal/car/domain"
	"github.com/smallbiznis/aquaflow/internal/changefeed"
	customerdomain "github.com/smallbiznis/aquaflow/internal/customer/domain"
	debtdomain "github.com/smallbiznis/aquaflow/internal/debt/domain"
	driverdomain "github.com/smallbiznis/aquaflow/internal/driver/domain"
	fillingdomain "github.com/smallbiznis/aquaflow/internal/filling/domain"
	operatordomain "github.com/smallbiznis/aquaflow/internal/operator/domain"
	requestdomain "github.com/smallbiznis/aquaflow/internal/request/domain"
	"github.com/smallbiznis/aquaflow/internal/storage"
	tanktypedomain "github.com/smallbiznis/aquaflow/internal/tanktype/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, operatordomain.ErrInvalidCredentials),
		errors.Is(err, operatordomain.ErrInvalidToken),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictCode(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, changefeed.ErrHubUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code recorded by the request logger.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status == http.StatusBadRequest && len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status == http.StatusConflict {
		return payload.Type, payload.Message
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

var validationErrors = []error{
	ErrInvalidRequest,
	areadomain.ErrInvalidID,
	areadomain.ErrInvalidName,
	tanktypedomain.ErrInvalidID,
	tanktypedomain.ErrInvalidName,
	tanktypedomain.ErrInvalidPrice,
	tanktypedomain.ErrInvalidCapacity,
	driverdomain.ErrInvalidID,
	driverdomain.ErrInvalidName,
	driverdomain.ErrInvalidRole,
	driverdomain.ErrInvalidFile,
	cardomain.ErrInvalidID,
	cardomain.ErrInvalidName,
	cardomain.ErrInvalidFile,
	cardomain.ErrDriverMissing,
	customerdomain.ErrInvalidID,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidTankNo,
	customerdomain.ErrInvalidLocation,
	customerdomain.ErrInvalidFile,
	customerdomain.ErrInvalidPageToken,
	customerdomain.ErrInvalidReference,
	requestdomain.ErrInvalidID,
	requestdomain.ErrInvalidCustomer,
	requestdomain.ErrInvalidDriver,
	requestdomain.ErrInvalidPageToken,
	requestdomain.ErrInvalidTimeRange,
	requestdomain.ErrInvalidType,
	requestdomain.ErrInvalidStatus,
	requestdomain.ErrInvalidDate,
	fillingdomain.ErrInvalidID,
	fillingdomain.ErrInvalidPageToken,
	fillingdomain.ErrInvalidTimeRange,
	fillingdomain.ErrInvalidAmount,
	fillingdomain.ErrInvalidType,
	fillingdomain.ErrInvalidDates,
	debtdomain.ErrInvalidID,
	debtdomain.ErrInvalidAmount,
	debtdomain.ErrInvalidCustomer,
	debtdomain.ErrInvalidRemaining,
	archivedomain.ErrInvalidSource,
	archivedomain.ErrInvalidRecord,
	archivedomain.ErrInvalidTimeRange,
	archivedomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidTimeRange,
	auditdomain.ErrInvalidAction,
	operatordomain.ErrInvalidUsername,
	operatordomain.ErrInvalidPassword,
	operatordomain.ErrInvalidRole,
	changefeed.ErrInvalidTables,
	storage.ErrEmptyObject,
	storage.ErrInvalidBucket,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var conflictErrors = []error{
	ErrConflict,
	areadomain.ErrInUse,
	tanktypedomain.ErrInUse,
	customerdomain.ErrTankNumberExists,
	customerdomain.ErrHasOutstandingDebt,
	requestdomain.ErrPendingRequestExists,
	requestdomain.ErrRequestInProgress,
	requestdomain.ErrInvalidTransition,
	debtdomain.ErrBalanceChanged,
	operatordomain.ErrUsernameTaken,
}

func isConflictError(err error) bool {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func conflictCode(err error) string {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, areadomain.ErrNotFound),
		errors.Is(err, tanktypedomain.ErrNotFound),
		errors.Is(err, driverdomain.ErrNotFound),
		errors.Is(err, cardomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, requestdomain.ErrNotFound),
		errors.Is(err, fillingdomain.ErrNotFound),
		errors.Is(err, debtdomain.ErrCustomerNotFound),
		errors.Is(err, operatordomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
