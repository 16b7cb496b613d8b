package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
)

// Response codes that are not part of the fetch taxonomy
const (
	codeMissingQuery      = "MISSING_QUERY"
	codeInvalidRequest    = "INVALID_REQUEST"
	codeInvalidJSON       = "INVALID_JSON"
	codeAnalysisError     = "ANALYSIS_ERROR"
	codeCacheClearError   = "CACHE_CLEAR_ERROR"
	codeInternalError     = "INTERNAL_SERVER_ERROR"
	codeRateLimitExceeded = domain.CodeRateLimitExceeded
)

// ProductService is what the handler needs from the product use case
type ProductService interface {
	SearchAndAnalyze(ctx context.Context, request domain.SearchRequest) (*domain.SearchResponse, error)
	ClearCache(ctx context.Context, query string) error
	CheckCache(ctx context.Context) error
}

// IngredientAnalyzer runs an ad-hoc ingredient analysis
type IngredientAnalyzer interface {
	Analyze(ctx context.Context, ingredients []string) (*domain.AnalysisReport, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products ProductService
	analyzer IngredientAnalyzer
	log      zerolog.Logger
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type analyzeRequest struct {
	Ingredients []string `json:"ingredients"`
}

type clearCacheRequest struct {
	Query string `json:"query"`
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductService, analyzer IngredientAnalyzer, log zerolog.Logger) *Handler {
	return &Handler{
		products: products,
		analyzer: analyzer,
		log:      logger.Component(log, "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ingredientlens-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles GET /api/products
func (h *Handler) SearchProducts(c *gin.Context) {
	var request domain.SearchRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query parameters: " + err.Error(), Code: codeInvalidRequest})
		return
	}

	if strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Search query is required", Code: codeMissingQuery})
		return
	}

	requestLogger(c, h.log).Info().
		Str("query", request.Query).
		Int("page", request.Page).
		Int("pageSize", request.PageSize).
		Bool("forceRefresh", request.ForceRefresh).
		Msg("processing search request")

	response, err := h.products.SearchAndAnalyze(c.Request.Context(), request)
	if err != nil {
		h.writeError(c, err, domain.CodeSearchError, "Failed to search products")
		return
	}

	c.JSON(http.StatusOK, response)
}

// Analyze handles POST /api/analyze
func (h *Handler) Analyze(c *gin.Context) {
	var request analyzeRequest
	if err := bindOptionalJSON(c, &request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON payload", Code: codeInvalidJSON})
		return
	}
	if len(request.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Ingredients list is required", Code: codeInvalidRequest})
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), request.Ingredients)
	if err != nil {
		h.writeError(c, err, codeAnalysisError, "Failed to analyze ingredients")
		return
	}

	c.JSON(http.StatusOK, report)
}

// ClearCache handles POST /api/cache/clear. Without a query every cached search is dropped.
func (h *Handler) ClearCache(c *gin.Context) {
	var request clearCacheRequest
	if err := bindOptionalJSON(c, &request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON payload", Code: codeInvalidJSON})
		return
	}

	query := strings.TrimSpace(request.Query)
	if err := h.products.ClearCache(c.Request.Context(), query); err != nil {
		requestLogger(c, h.log).Error().Err(err).Str("query", query).Msg("cache clear error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to clear cache", Code: codeCacheClearError})
		return
	}

	if query != "" {
		c.JSON(http.StatusOK, gin.H{"message": "Cache cleared for query", "query": query})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All cache cleared"})
}

// TestCache handles GET /api/cache/test
func (h *Handler) TestCache(c *gin.Context) {
	if err := h.products.CheckCache(c.Request.Context()); err != nil {
		requestLogger(c, h.log).Error().Err(err).Msg("cache test failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Cache connection failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "Cache connection is working",
		"testResult": true,
	})
}

// bindOptionalJSON decodes the request body into v. A missing or empty body leaves v untouched.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeError maps a use case error onto a status code and ErrorResponse.
// Errors outside the known taxonomy become a 500 with fallbackCode.
func (h *Handler) writeError(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	log := requestLogger(c, h.log)

	var fetchErr *domain.FetchError
	var analysisErr *domain.AnalysisError

	switch {
	case errors.As(err, &fetchErr):
		log.Warn().Err(err).Str("code", fetchErr.Code).Msg("fetch failed")
		status := fetchErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, ErrorResponse{Message: fetchErr.Message, Code: fetchErr.Code})

	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: codeInvalidRequest})

	case errors.As(err, &analysisErr):
		log.Error().Err(err).Str("code", analysisErr.Code).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: analysisErr.Message, Code: analysisErr.Code})

	case errors.Is(err, context.Canceled):
		log.Info().Msg("client went away")
		c.Status(499)

	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: fallbackMsg, Code: fallbackCode})
	}
}
