package client

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrAPI               = errors.New("api error")
	ErrNotFound          = errors.New("record not found")
	ErrConfigMissing     = errors.New("configuration missing")
	ErrInvalidRequest    = errors.New("invalid request")
)

// Text codes attached to rich errors.
const (
	TextCodeNetwork       = "FMDATA_NETWORK_ERROR"
	TextCodeMalformed     = "FMDATA_MALFORMED_RESPONSE"
	TextCodeAPI           = "FMDATA_API_ERROR"
	TextCodeNotFound      = "FMDATA_NOT_FOUND"
	TextCodeConfigMissing = "FMDATA_CONFIG_MISSING"
	TextCodeInvalidReq    = "FMDATA_INVALID_REQUEST"
	TextCodeInternal      = "FMDATA_INTERNAL_ERROR"
)

// Data API message codes the client gives meaning to.
const (
	codeInvalidToken          = "952"
	codeRecordMissing         = "101"
	codeNoRecordsMatch        = "401"
	codeModIDMismatch         = "306"
	codeInvalidAccount        = "212"
	codeInsufficientPrivilege = "9"
)

// APIError is a well-formed envelope whose first message code is not "0".
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %s", e.Code)
	}
	return fmt.Sprintf("api error %s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// InvalidToken reports whether the server rejected the bearer token.
func (e *APIError) InvalidToken() bool { return e.Code == codeInvalidToken }

// Error ties a failure to the operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e.Err == nil {
		return e.Kind
	}
	return errors.Join(e.Kind, e.Err)
}

func opError(op string, kind error, cause error) error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// AsAPIError extracts the envelope failure from err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the taxonomy sentinel err matches, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrConfigMissing, ErrInvalidRequest, ErrNetwork, ErrMalformedResponse, ErrNotFound, ErrAPI} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ToRichError converts any error from this package into a go-errors
// envelope carrying a category, status-like code, text code and metadata.
func ToRichError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	metadata := map[string]any{}
	var opErr *Error
	if errors.As(err, &opErr) {
		metadata["operation"] = opErr.Op
	}

	var out *goerrors.Error
	switch KindOf(err) {
	case ErrConfigMissing:
		out = goerrors.Wrap(err, goerrors.CategoryBadInput, "fmdata: configuration missing").
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeConfigMissing)
	case ErrInvalidRequest:
		out = goerrors.Wrap(err, goerrors.CategoryBadInput, "fmdata: invalid request").
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeInvalidReq)
	case ErrNetwork:
		out = goerrors.Wrap(err, goerrors.CategoryExternal, "fmdata: remote database unreachable").
			WithCode(http.StatusBadGateway).
			WithTextCode(TextCodeNetwork)
	case ErrMalformedResponse:
		out = goerrors.Wrap(err, goerrors.CategoryExternal, "fmdata: malformed response").
			WithCode(http.StatusBadGateway).
			WithTextCode(TextCodeMalformed)
	case ErrNotFound:
		out = goerrors.Wrap(err, goerrors.CategoryNotFound, "fmdata: record not found").
			WithCode(http.StatusNotFound).
			WithTextCode(TextCodeNotFound)
	case ErrAPI:
		apiErr, ok := AsAPIError(err)
		if !ok {
			apiErr = &APIError{}
		}
		metadata["api_code"] = apiErr.Code
		metadata["api_message"] = apiErr.Message
		category, status := apiCategory(apiErr.Code)
		out = goerrors.Wrap(err, category, apiErr.Error()).
			WithCode(status).
			WithTextCode(TextCodeAPI)
	default:
		out = goerrors.Wrap(err, goerrors.CategoryInternal, "fmdata: unexpected error").
			WithCode(http.StatusInternalServerError).
			WithTextCode(TextCodeInternal)
	}
	if len(metadata) > 0 {
		out.WithMetadata(metadata)
	}
	return out
}

func apiCategory(code string) (goerrors.Category, int) {
	switch code {
	case codeInvalidToken, codeInvalidAccount:
		return goerrors.CategoryAuth, http.StatusUnauthorized
	case codeInsufficientPrivilege:
		return goerrors.CategoryAuthz, http.StatusForbidden
	case codeRecordMissing, codeNoRecordsMatch:
		return goerrors.CategoryNotFound, http.StatusNotFound
	case codeModIDMismatch:
		return goerrors.CategoryConflict, http.StatusConflict
	default:
		return goerrors.CategoryOperation, http.StatusUnprocessableEntity
	}
}
