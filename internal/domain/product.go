package domain

// DataTier records which fetch stage produced a product.
type DataTier string

const (
	// TierDetailed means the product was built from the detail page's embedded data
	TierDetailed DataTier = "detailed"
	// TierShallow means the detail fetch failed and the search hit was used instead
	TierShallow DataTier = "shallow"
)

// Product is a cosmetics product as returned to callers and stored in the cache
type Product struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Brand              string              `json:"brand"`
	URL                string              `json:"url"`
	ImageURL           string              `json:"imageUrl"`
	Price              float64             `json:"price"`
	Ingredients        []string            `json:"ingredients,omitempty"`
	IngredientAnalysis *IngredientAnalysis `json:"ingredientAnalysis,omitempty"`
	DataTier           DataTier            `json:"dataTier,omitempty"`
}

// HasIngredients reports whether the product has anything to analyze
func (p *Product) HasIngredients() bool {
	return p != nil && len(p.Ingredients) > 0
}

// FetchResult is the outcome of a product fetch.
// DetailErr is set when Tier is TierShallow and explains why the detail page was not used.
type FetchResult struct {
	Products  []Product
	Tier      DataTier
	DetailErr error
}

// SearchRequest represents a product search request
type SearchRequest struct {
	Query        string `json:"query" form:"query"`
	Page         int    `json:"page" form:"page"`
	PageSize     int    `json:"pageSize" form:"pageSize"`
	ForceRefresh bool   `json:"forceRefresh" form:"forceRefresh"`
}

// SearchResponse is the paginated envelope returned by a product search
type SearchResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Cached   bool      `json:"cached"`
}

// CatalogSearchResponse is the upstream catalog search payload.
// Products is a pointer so a missing field can be told apart from an empty list.
type CatalogSearchResponse struct {
	Products *[]CatalogProduct `json:"products"`
}

// CatalogProduct is a single search hit with the shallow fields the catalog exposes
type CatalogProduct struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brand       string     `json:"brand"`
	TargetURL   string     `json:"targetUrl"`
	ImageURL    string     `json:"imageUrl"`
	Price       PriceValue `json:"price"`
	Ingredients []string   `json:"ingredients,omitempty"`
}

// PageState is the embedded page JSON carried by a product detail page
type PageState struct {
	Page *struct {
		Product *struct {
			CurrentSku *CurrentSku `json:"currentSku"`
		} `json:"product"`
	} `json:"page"`
}

// CurrentSku is the detail-page product record
type CurrentSku struct {
	SkuID          string     `json:"skuId"`
	ProductName    string     `json:"productName"`
	BrandName      string     `json:"brandName"`
	ListPrice      PriceValue `json:"listPrice"`
	IngredientDesc string     `json:"ingredientDesc"`
	SkuImages      *struct {
		ImageURL string `json:"imageUrl"`
	} `json:"skuImages"`
}
