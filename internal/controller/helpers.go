package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
)

const maxBodySize = 1 << 20

var (
	amountPattern   = regexp.MustCompile(`^[1-9][0-9]*$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
	return v
}

// validateAmount accepts a positive integer without leading zeros that fits in int64.
func validateAmount(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !amountPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(fl.Field().String())
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

var tagMessages = map[string]string{
	"required":         "field is required",
	"amount":           "must be a positive integer without leading zeros",
	"currency":         "must be a three-letter ISO currency code",
	"positive_decimal": "must be a positive decimal number",
	"numeric":          "must contain digits only",
	"min":              "is too short",
	"max":              "is too long",
}

func tagMessage(tag string) string {
	if msg, ok := tagMessages[tag]; ok {
		return msg
	}
	return tag + " validation failed"
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domainErrors.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
	{domainErrors.ErrWebhookDisabled, http.StatusForbidden, "webhook_disabled"},
	{domainErrors.ErrWebhookMisconfigured, http.StatusInternalServerError, "webhook_misconfigured"},
	{domainErrors.ErrInvalidPayload, http.StatusBadRequest, "invalid_payload"},
	{domainErrors.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
	{domainErrors.ErrProviderNotFound, http.StatusNotFound, "provider_not_found"},
	{domainErrors.ErrUnsupportedCurrency, http.StatusUnprocessableEntity, "unsupported_currency"},
	{domainErrors.ErrUnsupportedOperation, http.StatusNotImplemented, "not_implemented"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var pe *domainErrors.ProviderError
	if errors.As(err, &pe) {
		status := pe.HTTPStatus()
		writeJSON(w, status, ErrorResponse{Code: strconv.Itoa(status), Message: pe.Message})
		return
	}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    "validation_error",
			Message: validationErr.Field + ": " + validationErr.Message,
			Errors:  validationErr.Fields,
		})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, ErrorResponse{Code: m.code, Message: err.Error()})
			return
		}
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    "internal_error",
		Message: "internal server error",
	})
}

func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fields := make(map[string][]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = append(fields[fe.Field()], tagMessage(fe.Tag()))
			}
			return newValidationFailure(fields)
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}

// newValidationFailure reports the alphabetically first field as the headline.
// The full map is attached only when several fields failed.
func newValidationFailure(fields map[string][]string) *domainErrors.ValidationError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	ve := domainErrors.NewValidationError(names[0], fields[names[0]][0])
	if len(fields) > 1 {
		ve.Fields = fields
	}
	return ve
}
