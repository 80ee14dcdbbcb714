package partner

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrorCategory is the canonical classification of a failed call, independent of the raw
// HTTP status code.
type ErrorCategory string

// Error categories.
const (
	CategoryBadInput        ErrorCategory = "BadInput"
	CategoryUnauthorized    ErrorCategory = "Unauthorized"
	CategoryForbidden       ErrorCategory = "Forbidden"
	CategoryNotFound        ErrorCategory = "NotFound"
	CategoryAlreadyExists   ErrorCategory = "AlreadyExists"
	CategoryRequestTimeout  ErrorCategory = "RequestTimeout"
	CategoryGatewayTimeout  ErrorCategory = "GatewayTimeout"
	CategoryServerBusy      ErrorCategory = "ServerBusy"
	CategoryServerError     ErrorCategory = "ServerError"
	CategoryResponseParsing ErrorCategory = "ResponseParsing"
)

// Common static errors that can be wrapped with context.
var (
	ErrCredentialsExpired = errors.New("credentials are expired and could not be refreshed")
	ErrMalformedResponse  = errors.New("malformed response payload")
	ErrNotAFailure        = errors.New("successful response passed to the error handler")
)

// CategoryForStatus maps an HTTP status code to its error category. Successful status codes
// have no category; passing one is a programming error and panics.
func CategoryForStatus(statusCode int) ErrorCategory {
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		panic(fmt.Sprintf("%v: status %d", ErrNotAFailure, statusCode))
	}

	switch statusCode {
	case http.StatusBadRequest:
		return CategoryBadInput
	case http.StatusUnauthorized:
		return CategoryUnauthorized
	case http.StatusForbidden:
		return CategoryForbidden
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusConflict:
		return CategoryAlreadyExists
	case http.StatusRequestTimeout:
		return CategoryRequestTimeout
	case http.StatusGatewayTimeout:
		return CategoryGatewayTimeout
	case http.StatusServiceUnavailable:
		return CategoryServerBusy
	default:
		return CategoryServerError
	}
}

// ApiFault is the structured error body returned by the service.
//
//nolint:revive // the wire type keeps the service's name
type ApiFault struct {
	ErrorCode    string   `json:"code"        yaml:"code"`
	ErrorMessage string   `json:"description" yaml:"description"`
	ErrorData    []string `json:"data"        yaml:"data"`
	Source       string   `json:"source"      yaml:"source"`
}

// UnmarshalJSON accepts numeric codes and non-string data entries, both of which the
// service emits.
func (f *ApiFault) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code        json.RawMessage   `json:"code"`
		Description string            `json:"description"`
		Data        []json.RawMessage `json:"data"`
		Source      string            `json:"source"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	f.ErrorCode = rawText(raw.Code)
	f.ErrorMessage = raw.Description
	f.Source = raw.Source
	f.ErrorData = nil

	for _, entry := range raw.Data {
		f.ErrorData = append(f.ErrorData, rawText(entry))
	}

	return nil
}

// Error implements the error interface.
func (f *ApiFault) Error() string {
	if f.ErrorCode == "" {
		return f.ErrorMessage
	}

	return fmt.Sprintf("%s (code: %s)", f.ErrorMessage, f.ErrorCode)
}

// rawText returns a JSON string's value, or the raw JSON text for anything else.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var text string
	if json.Unmarshal(trimmed, &text) == nil {
		return text
	}

	return string(trimmed)
}

// ParseApiFault decodes body as a fault payload. It returns false when the body is not a JSON
// object carrying a code or a description.
//
//nolint:revive // keeps the wire type's name
func ParseApiFault(body []byte) (*ApiFault, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var fault ApiFault

	err := json.Unmarshal(trimmed, &fault)
	if err != nil {
		return nil, false
	}

	if fault.ErrorCode == "" && fault.ErrorMessage == "" {
		return nil, false
	}

	return &fault, true
}

// PartnerError is the categorized failure of a call. It always carries the request context
// that was active when the call failed.
type PartnerError struct {
	Category            ErrorCategory
	ServiceErrorPayload *ApiFault
	Context             RequestContext
	Message             string
	StatusCode          int
	Err                 error
}

// Error implements the error interface.
func (e *PartnerError) Error() string {
	var builder strings.Builder

	builder.WriteString("partner center: ")
	builder.WriteString(string(e.Category))

	if e.StatusCode != 0 {
		fmt.Fprintf(&builder, " (%d)", e.StatusCode)
	}

	if e.Message != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Message)
	}

	fmt.Fprintf(&builder, " [request_id=%s correlation_id=%s]", e.Context.RequestID, e.Context.CorrelationID)

	return builder.String()
}

// Unwrap returns the underlying cause, if any.
func (e *PartnerError) Unwrap() error {
	return e.Err
}

// NewErrorFromResponse builds the categorized error for a failed response. The fault payload is
// attached when body parses as one; otherwise the raw body becomes the message.
// A successful status code panics: it has no category.
func NewErrorFromResponse(statusCode int, body []byte, requestContext RequestContext) *PartnerError {
	partnerErr := &PartnerError{
		Category:   CategoryForStatus(statusCode),
		Context:    requestContext,
		StatusCode: statusCode,
	}

	fault, ok := ParseApiFault(body)
	if ok {
		partnerErr.ServiceErrorPayload = fault
		partnerErr.Message = fault.ErrorMessage
	} else {
		partnerErr.Message = string(body)
	}

	return partnerErr
}

// NewParsingError builds a ResponseParsing error for a successful response whose body could not
// be decoded.
func NewParsingError(statusCode int, cause error, requestContext RequestContext) *PartnerError {
	return &PartnerError{
		Category:   CategoryResponseParsing,
		Context:    requestContext,
		Message:    fmt.Sprintf("%v: %v", ErrMalformedResponse, cause),
		StatusCode: statusCode,
		Err:        fmt.Errorf("%w: %w", ErrMalformedResponse, cause),
	}
}

// NewUnauthorizedError builds the error returned when expired credentials could not be
// refreshed. No request was sent.
func NewUnauthorizedError(requestContext RequestContext, cause error) *PartnerError {
	message := ErrCredentialsExpired.Error()
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}

	return &PartnerError{
		Category: CategoryUnauthorized,
		Context:  requestContext,
		Message:  message,
		Err:      errors.Join(ErrCredentialsExpired, cause),
	}
}

// CategoryOf returns the category of err, or "" when err is not a PartnerError.
func CategoryOf(err error) ErrorCategory {
	partnerErr := &PartnerError{}
	if errors.As(err, &partnerErr) {
		return partnerErr.Category
	}

	return ""
}

// HasCategory reports whether err is a PartnerError of the given category.
func HasCategory(err error, category ErrorCategory) bool {
	return category != "" && CategoryOf(err) == category
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasCategory(err, CategoryNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return HasCategory(err, CategoryUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return HasCategory(err, CategoryForbidden)
}

// IsAlreadyExists checks if the error reports a conflicting resource.
func IsAlreadyExists(err error) bool {
	return HasCategory(err, CategoryAlreadyExists)
}
