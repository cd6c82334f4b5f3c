package domain

const (
	CategoryOther = "Overig"
	MacroNone     = "None"
)

// Closed sets the oracle chooses from. Anything outside them degrades to the
// neutral value rather than leaking free-form oracle text into the store.
var (
	Categories = []string{
		"Groenten", "Fruit", "Vlees_Vis_Vega", "Zuivel", "Koolhydraten",
		"Pantry", "Snacks", "Drinken", "Huishouden", CategoryOther,
	}

	PrimaryMacros = []string{"Protein", "Carbs", "Fat", "Balanced", MacroNone}
)

func NormalizeCategory(category string) string {
	for _, c := range Categories {
		if c == category {
			return category
		}
	}
	return CategoryOther
}

func NormalizePrimaryMacro(macro string) string {
	for _, m := range PrimaryMacros {
		if m == macro {
			return macro
		}
	}
	return MacroNone
}

// EnrichmentInput is one {name, discount, price} triple sent to the oracle.
type EnrichmentInput struct {
	Name          string   `json:"name"`
	Discount      string   `json:"discount"`
	OriginalPrice *float64 `json:"original_price"`
}

// EnrichmentResult is the oracle's advisory signal for one product. Pointer
// fields distinguish "oracle did not opine" from an explicit value; the
// reconciliation engine only trusts DealQuantity/IsMeerdereArtikels over the
// deterministic parser when both are present.
type EnrichmentResult struct {
	CleanName          *string  `json:"clean_name"`
	Category           string   `json:"category"`
	PrimaryMacro       string   `json:"primary_macro"`
	IsHealthy          bool     `json:"is_healthy"`
	PromoPrice         *float64 `json:"promo_price"`
	IsMeerdereArtikels *bool    `json:"is_meerdere_artikels"`
	DealQuantity       *int     `json:"deal_quantity"`
}

// DefaultEnrichmentResult is the neutral fallback used when the oracle is
// unreachable or misbehaves. The pipeline continues with degraded enrichment
// rather than stalling on an external dependency.
func DefaultEnrichmentResult() EnrichmentResult {
	return EnrichmentResult{
		Category:     CategoryOther,
		PrimaryMacro: MacroNone,
	}
}
