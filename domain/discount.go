package domain

// DiscountRule is the normalized decomposition of a retailer discount label.
// Derived purely from RawLabel: parsing the same label twice yields the same
// rule. DealQuantity == 1 exactly when IsMultiUnit is false; threshold deals
// ("-40% VANAF 6 ST") are multi-unit with the threshold as quantity.
type DiscountRule struct {
	RawLabel             string   `json:"raw_label"`
	EquivalentPercentage *float64 `json:"equivalent_percentage"`
	IsMultiUnit          bool     `json:"is_multi_unit"`
	DealQuantity         int      `json:"deal_quantity"`
}
