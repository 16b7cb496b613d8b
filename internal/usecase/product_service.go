package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ingredientlens/backend/internal/analysis"
	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
	"github.com/ingredientlens/backend/internal/infrastructure/cache"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// ProductService searches the retail catalog and enriches each product with an ingredient analysis
type ProductService struct {
	fetcher      domain.ProductFetcher
	oracle       domain.IngredientOracle
	cache        *cache.ProductCache
	preprocessor *QueryPreprocessor
	log          zerolog.Logger
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	fetcher domain.ProductFetcher,
	oracle domain.IngredientOracle,
	productCache *cache.ProductCache,
	log zerolog.Logger,
) *ProductService {
	log = logger.Component(log, "products")
	return &ProductService{
		fetcher:      fetcher,
		oracle:       oracle,
		cache:        productCache,
		preprocessor: NewQueryPreprocessor(log),
		log:          log,
	}
}

// SearchAndAnalyze returns the products for a query.
// Flow: check cache -> search retail -> analyze each product -> cache -> return
func (s *ProductService) SearchAndAnalyze(ctx context.Context, request domain.SearchRequest) (*domain.SearchResponse, error) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidRequest)
	}

	page := request.Page
	if page <= 0 {
		page = DefaultPage
	}
	pageSize := request.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if !request.ForceRefresh {
		lookup := s.cache.Get(ctx, query)
		if lookup.Hit() {
			s.log.Info().Str("query", query).Int("products", len(lookup.Products)).Msg("returning cached results")
			return newSearchResponse(lookup.Products, page, pageSize, true), nil
		}
		// Unavailable is handled like a miss
		s.log.Debug().Str("query", query).Str("lookup", lookup.Status.String()).Msg("cache lookup did not hit")
	}

	result, err := s.fetcher.SearchProducts(ctx, s.preprocessor.PreprocessQuery(query), page, pageSize)
	if err != nil {
		return nil, err
	}

	if result.Tier == domain.TierShallow {
		s.log.Warn().Err(result.DetailErr).Str("query", query).Msg("using shallow search data")
	}

	products := result.Products
	for i := range products {
		s.analyzeProduct(ctx, &products[i])
	}

	s.cache.Set(ctx, query, products)

	return newSearchResponse(products, page, pageSize, false), nil
}

// analyzeProduct attaches a classification, percentages and, when available,
// an environmental report. Failures are logged and leave the analysis absent.
func (s *ProductService) analyzeProduct(ctx context.Context, product *domain.Product) {
	if !product.HasIngredients() {
		s.log.Debug().Str("productId", product.ID).Msg("no ingredients to analyze")
		return
	}

	classification, err := s.oracle.ClassifyIngredients(ctx, product.Ingredients)
	if err != nil {
		s.log.Error().Err(err).Str("productId", product.ID).Msg("error analyzing ingredients for product")
		return
	}

	percentages, err := analysis.CalculatePercentages(classification)
	if err != nil {
		s.log.Warn().Err(err).Str("productId", product.ID).Msg("oracle returned no classification")
		return
	}

	result := &domain.IngredientAnalysis{
		Classification: classification,
		Percentages:    percentages,
	}

	impacts, err := s.oracle.AnalyzeEnvironmentalImpact(ctx, product.Ingredients)
	if err != nil {
		s.log.Warn().Err(err).Str("productId", product.ID).Msg("environmental analysis failed")
	} else if report, err := analysis.BuildEnvironmentalReport(impacts); err != nil {
		s.log.Warn().Err(err).Str("productId", product.ID).Msg("environmental analysis not scorable")
	} else {
		result.EnvironmentalImpact = report
	}

	product.IngredientAnalysis = result
}

// ClearCache drops the cached results for query, or every cached query when query is blank
func (s *ProductService) ClearCache(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		_, err := s.cache.ClearAll(ctx)
		return err
	}
	return s.cache.Clear(ctx, query)
}

// CheckCache runs a write/read/delete round trip against the cache store
func (s *ProductService) CheckCache(ctx context.Context) error {
	if err := s.cache.CheckConnection(ctx); err != nil {
		return errors.Join(domain.ErrCacheUnavailable, err)
	}
	return nil
}

func newSearchResponse(products []domain.Product, page, pageSize int, cached bool) *domain.SearchResponse {
	if products == nil {
		products = []domain.Product{}
	}
	return &domain.SearchResponse{
		Products: products,
		Total:    len(products),
		Page:     page,
		PageSize: pageSize,
		Cached:   cached,
	}
}
