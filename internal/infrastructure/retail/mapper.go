package retail

import (
	"github.com/ingredientlens/backend/internal/domain"
)

// MapSkuToProduct converts the detail page's current SKU to a detailed Product
func MapSkuToProduct(sku *domain.CurrentSku, productURL string) domain.Product {
	imageURL := ""
	if sku.SkuImages != nil {
		imageURL = sku.SkuImages.ImageURL
	}

	return domain.Product{
		ID:          sku.SkuID,
		Name:        sku.ProductName,
		Brand:       sku.BrandName,
		URL:         productURL,
		ImageURL:    imageURL,
		Price:       float64(sku.ListPrice),
		Ingredients: ParseIngredients(sku.IngredientDesc),
		DataTier:    domain.TierDetailed,
	}
}

// MapSearchHitToProduct converts a catalog search hit to a shallow Product.
// Callers must check the hit has an ID and a name first.
func MapSearchHitToProduct(hit *domain.CatalogProduct) domain.Product {
	return domain.Product{
		ID:          hit.ID,
		Name:        hit.Name,
		Brand:       hit.Brand,
		URL:         hit.TargetURL,
		ImageURL:    hit.ImageURL,
		Price:       float64(hit.Price),
		Ingredients: normalizeIngredients(hit.Ingredients),
		DataTier:    domain.TierShallow,
	}
}
