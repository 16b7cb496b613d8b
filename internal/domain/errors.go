package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache store cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrEmptyClassification is returned when percentages are requested for an empty classification
	ErrEmptyClassification = errors.New("classification is empty")

	// ErrNoImpactData is returned when no environmental record can be scored
	ErrNoImpactData = errors.New("no scorable environmental impact data")

	// ErrNoAnalysis is returned when a product carries no ingredient analysis
	ErrNoAnalysis = errors.New("product has no ingredient analysis")
)

// Fetch error codes surfaced by the retail client.
const (
	CodeNoProductsFound      = "NO_PRODUCTS_FOUND"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeConnectionError      = "CONNECTION_ERROR"
	CodeInvalidProductData   = "INVALID_PRODUCT_DATA"
	CodeProductDataNotFound  = "PRODUCT_DATA_NOT_FOUND"
	CodeSearchError          = "SEARCH_ERROR"
	CodeProductDetailsError  = "PRODUCT_DETAILS_ERROR"
	CodeAnalysisRequestError = "ANALYSIS_REQUEST_ERROR"
	CodeAnalysisParseError   = "ANALYSIS_PARSE_ERROR"
)

// FetchError is a classified failure from the retail fetch layer.
// Status is an HTTP-style hint for the delivery layer.
type FetchError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a FetchError with the same code.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewFetchError creates a FetchError with an optional cause.
func NewFetchError(code string, status int, message string, cause error) *FetchError {
	return &FetchError{Code: code, Status: status, Message: message, Err: cause}
}

// Sentinel values for errors.Is comparisons against fetch error codes.
var (
	ErrNoProductsFound     = &FetchError{Code: CodeNoProductsFound, Status: http.StatusNotFound}
	ErrProductNotFound     = &FetchError{Code: CodeProductNotFound, Status: http.StatusNotFound}
	ErrRateLimited         = &FetchError{Code: CodeRateLimitExceeded, Status: http.StatusTooManyRequests}
	ErrConnection          = &FetchError{Code: CodeConnectionError, Status: http.StatusServiceUnavailable}
	ErrInvalidProductData  = &FetchError{Code: CodeInvalidProductData, Status: http.StatusInternalServerError}
	ErrProductDataNotFound = &FetchError{Code: CodeProductDataNotFound, Status: http.StatusNotFound}
	ErrSearchFailed        = &FetchError{Code: CodeSearchError, Status: http.StatusInternalServerError}
	ErrProductDetails      = &FetchError{Code: CodeProductDetailsError, Status: http.StatusInternalServerError}
)

// AnalysisError is a failure talking to, or decoding the answer of, the classification oracle.
type AnalysisError struct {
	Code    string
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	// ErrAnalysisRequest matches oracle transport failures
	ErrAnalysisRequest = &AnalysisError{Code: CodeAnalysisRequestError}

	// ErrAnalysisParse matches oracle responses that are not a JSON array of the expected shape
	ErrAnalysisParse = &AnalysisError{Code: CodeAnalysisParseError}
)
