package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
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
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: strings.ReplaceAll(code, "_", " "),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, coupondomain.ErrRedemptionContended):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "coupon redemption is contended, retry the checkout",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, offerdomain.ErrInvalidOrganization),
		errors.Is(err, offerdomain.ErrInvalidMode),
		errors.Is(err, offerdomain.ErrMissingFrame),
		errors.Is(err, offerdomain.ErrMissingLens),
		errors.Is(err, offerdomain.ErrMissingItems),
		errors.Is(err, offerdomain.ErrInvalidFrame),
		errors.Is(err, offerdomain.ErrInvalidStore),
		errors.Is(err, offerdomain.ErrInvalidOrder):
		return true
	case errors.Is(err, catalogdomain.ErrInvalidBrandCode),
		errors.Is(err, catalogdomain.ErrInvalidItCode),
		errors.Is(err, catalogdomain.ErrInvalidBasePrice),
		errors.Is(err, catalogdomain.ErrInvalidLens),
		errors.Is(err, catalogdomain.ErrInvalidPowerBand),
		errors.Is(err, catalogdomain.ErrInvalidAddOnRange),
		errors.Is(err, catalogdomain.ErrInvalidExtraCharge):
		return true
	case errors.Is(err, catdiscdomain.ErrInvalidCategory),
		errors.Is(err, catdiscdomain.ErrInvalidBrandCode),
		errors.Is(err, catdiscdomain.ErrInvalidPercent),
		errors.Is(err, catdiscdomain.ErrInvalidMaxDiscount),
		errors.Is(err, catdiscdomain.ErrInvalidID):
		return true
	case errors.Is(err, coupondomain.ErrInvalidCode),
		errors.Is(err, coupondomain.ErrInvalidDiscountType),
		errors.Is(err, coupondomain.ErrInvalidDiscountValue),
		errors.Is(err, coupondomain.ErrInvalidWindow),
		errors.Is(err, coupondomain.ErrInvalidUsageLimit),
		errors.Is(err, coupondomain.ErrInvalidOrder):
		return true
	case errors.Is(err, combodomain.ErrInvalidComboCode),
		errors.Is(err, combodomain.ErrInvalidDisplayName),
		errors.Is(err, combodomain.ErrInvalidEffectivePrice),
		errors.Is(err, combodomain.ErrInvalidBenefitType),
		errors.Is(err, combodomain.ErrInvalidRuleType):
		return true
	case errors.Is(err, offerruledomain.ErrInvalidCode),
		errors.Is(err, offerruledomain.ErrInvalidRuleType),
		errors.Is(err, offerruledomain.ErrInvalidValue),
		errors.Is(err, offerruledomain.ErrInvalidComboCode),
		errors.Is(err, offerruledomain.ErrInvalidStore):
		return true
	case errors.Is(err, rewarddomain.ErrInvalidThreshold):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, catalogdomain.ErrDuplicateBrand),
		errors.Is(err, catalogdomain.ErrDuplicateLens),
		errors.Is(err, catalogdomain.ErrOverlappingPowerBand),
		errors.Is(err, catdiscdomain.ErrDuplicateDiscount),
		errors.Is(err, coupondomain.ErrDuplicateCoupon),
		errors.Is(err, coupondomain.ErrUsageLimitReached),
		errors.Is(err, combodomain.ErrDuplicateCombo),
		errors.Is(err, offerruledomain.ErrDuplicateRule),
		errors.Is(err, rewarddomain.ErrDuplicateThreshold):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrLensNotFound),
		errors.Is(err, catalogdomain.ErrBrandNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, catdiscdomain.ErrNotFound),
		errors.Is(err, coupondomain.ErrNotFound),
		errors.Is(err, combodomain.ErrNotFound),
		errors.Is(err, offerruledomain.ErrNotFound),
		errors.Is(err, rewarddomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return "request"
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case status == http.StatusBadRequest:
		return "validation_error", payload.Type
	default:
		return payload.Type, payload.Type
	}
}
