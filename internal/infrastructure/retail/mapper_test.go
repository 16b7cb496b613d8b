package retail

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/ingredientlens/backend/internal/domain"
)

func TestMapSkuToProduct(t *testing.T) {
	tests := []struct {
		name string
		sku  *domain.CurrentSku
		url  string
		want domain.Product
	}{
		{
			name: "complete sku",
			sku: func() *domain.CurrentSku {
				var sku domain.CurrentSku
				raw := `{"skuId":"2345","productName":"Lip Stain","brandName":"Glow","listPrice":"$24.00",
					"ingredientDesc":"Water, Glycerin","skuImages":{"imageUrl":"https://img/2345.jpg"}}`
				if err := json.Unmarshal([]byte(raw), &sku); err != nil {
					t.Fatalf("unmarshal sku: %v", err)
				}
				return &sku
			}(),
			url: "https://shop.example.com/product/lip-stain",
			want: domain.Product{
				ID:          "2345",
				Name:        "Lip Stain",
				Brand:       "Glow",
				URL:         "https://shop.example.com/product/lip-stain",
				ImageURL:    "https://img/2345.jpg",
				Price:       24,
				Ingredients: []string{"Water", "Glycerin"},
				DataTier:    domain.TierDetailed,
			},
		},
		{
			name: "missing images and ingredients",
			sku:  &domain.CurrentSku{SkuID: "1", ProductName: "Balm", ListPrice: 12.5},
			url:  "https://shop.example.com/product/balm",
			want: domain.Product{
				ID:          "1",
				Name:        "Balm",
				URL:         "https://shop.example.com/product/balm",
				Price:       12.5,
				Ingredients: []string{},
				DataTier:    domain.TierDetailed,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSkuToProduct(tt.sku, tt.url)

			if got.ID != tt.want.ID {
				t.Errorf("ID = %v, want %v", got.ID, tt.want.ID)
			}
			if got.Name != tt.want.Name {
				t.Errorf("Name = %v, want %v", got.Name, tt.want.Name)
			}
			if got.Brand != tt.want.Brand {
				t.Errorf("Brand = %v, want %v", got.Brand, tt.want.Brand)
			}
			if got.URL != tt.want.URL {
				t.Errorf("URL = %v, want %v", got.URL, tt.want.URL)
			}
			if got.ImageURL != tt.want.ImageURL {
				t.Errorf("ImageURL = %v, want %v", got.ImageURL, tt.want.ImageURL)
			}
			if got.Price != tt.want.Price {
				t.Errorf("Price = %v, want %v", got.Price, tt.want.Price)
			}
			if len(got.Ingredients) != len(tt.want.Ingredients) {
				t.Fatalf("Ingredients = %v, want %v", got.Ingredients, tt.want.Ingredients)
			}
			for i := range got.Ingredients {
				if got.Ingredients[i] != tt.want.Ingredients[i] {
					t.Errorf("Ingredients[%d] = %v, want %v", i, got.Ingredients[i], tt.want.Ingredients[i])
				}
			}
			if got.DataTier != tt.want.DataTier {
				t.Errorf("DataTier = %v, want %v", got.DataTier, tt.want.DataTier)
			}
		})
	}
}

func TestMapSearchHitToProduct(t *testing.T) {
	var hit domain.CatalogProduct
	raw := `{"id":"P1","name":"Cream","brand":"Glow","targetUrl":"/product/cream-P1",
		"imageUrl":"https://img/p1.jpg","price":"$1,024.50","ingredients":["Water","<i>Shea</i> Butter"]}`
	if err := json.Unmarshal([]byte(raw), &hit); err != nil {
		t.Fatalf("unmarshal hit: %v", err)
	}

	got := MapSearchHitToProduct(&hit)

	if got.ID != "P1" || got.Name != "Cream" || got.Brand != "Glow" {
		t.Errorf("identity = %+v, want P1/Cream/Glow", got)
	}
	if got.URL != "/product/cream-P1" {
		t.Errorf("URL = %v, want /product/cream-P1", got.URL)
	}
	if got.Price != 1024.5 {
		t.Errorf("Price = %v, want 1024.5", got.Price)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[1] != "Shea Butter" {
		t.Errorf("Ingredients = %v, want [Water Shea Butter]", got.Ingredients)
	}
	if got.DataTier != domain.TierShallow {
		t.Errorf("DataTier = %v, want shallow", got.DataTier)
	}
}
