package reconcile

import (
	"context"
	"errors"
	"promoMarket/domain"
	"strings"
	"testing"
	"time"
)

type fakeMatcher struct {
	entries map[string]*domain.CatalogEntry
	errOn   string
	lookups []string
}

func (f *fakeMatcher) MatchByBarcode(_ context.Context, barcode string) (*domain.CatalogEntry, error) {
	f.lookups = append(f.lookups, barcode)
	if barcode == f.errOn && f.errOn != "" {
		return nil, errors.New("catalog unavailable")
	}
	return f.entries[barcode], nil
}

type fakeEnricher struct {
	inputs  []domain.EnrichmentInput
	results []domain.EnrichmentResult
}

func (f *fakeEnricher) EnrichAll(_ context.Context, inputs []domain.EnrichmentInput) []domain.EnrichmentResult {
	f.inputs = inputs
	if f.results != nil {
		return f.results
	}
	results := make([]domain.EnrichmentResult, len(inputs))
	for i := range results {
		results[i] = domain.DefaultEnrichmentResult()
	}
	return results
}

type fakeStoreRepo struct {
	storeID string
	err     error
}

func (f *fakeStoreRepo) GetOrCreate(_ context.Context, _ string) (string, error) {
	return f.storeID, f.err
}

type fakeProductRepo struct {
	upserts []domain.Product
	errOn   string
}

func (f *fakeProductRepo) Upsert(_ context.Context, product *domain.Product) (string, error) {
	if f.errOn != "" && product.Barcode == f.errOn {
		return "", errors.New("db write failed")
	}
	f.upserts = append(f.upserts, *product)
	return "product-" + product.Barcode, nil
}

type fakePromoRepo struct {
	deactivated   []string
	created       []domain.Promotion
	deactivateErr error
	ops           []string
}

func (f *fakePromoRepo) DeactivateAllActive(_ context.Context, storeID string) (int64, error) {
	f.ops = append(f.ops, "deactivate")
	f.deactivated = append(f.deactivated, storeID)
	return 0, f.deactivateErr
}

func (f *fakePromoRepo) Create(_ context.Context, promo *domain.Promotion) error {
	f.ops = append(f.ops, "create")
	f.created = append(f.created, *promo)
	return nil
}

func newTestService(matcher *fakeMatcher, enricher *fakeEnricher, products *fakeProductRepo, promos *fakePromoRepo) *reconcileService {
	return NewReconcileService(matcher, enricher, &fakeStoreRepo{storeID: "store-1"}, products, promos)
}

func window() (time.Time, time.Time) {
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 7)
}

func floatPtr(v float64) *float64 { return &v }

func TestRunEndToEndUnmatchedProduct(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{}
	clean := "Jupiler Blond Blik 6x33cl"
	enricher.results = []domain.EnrichmentResult{{
		CleanName:    &clean,
		Category:     "Drinken",
		PrimaryMacro: "Carbs",
	}}
	products := &fakeProductRepo{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, products, promos)

	items := []domain.RawScrapeItem{{
		URL:      "https://shop.example/jupiler-6x33",
		Name:     "JUPILER BLOND 6X33CL BLIK",
		Discount: "1+1 GRATIS",
		Barcode:  "5410228112345",
		Price:    floatPtr(19.99),
	}}

	from, until := window()
	summary, err := svc.Run(context.Background(), "Colruyt", items, from, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Matched != 0 || summary.NotFound != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 not_found", summary)
	}
	if len(promos.created) != 1 {
		t.Fatalf("created %d promotions, want 1", len(promos.created))
	}

	promo := promos.created[0]
	if promo.Barcode != "5410228112345" {
		t.Errorf("barcode = %q, want scraped barcode kept on a catalog miss", promo.Barcode)
	}
	if promo.ProductName != clean {
		t.Errorf("product name = %q, want the oracle's clean name", promo.ProductName)
	}
	if promo.EquivalentPercentage == nil || *promo.EquivalentPercentage != 50.0 {
		t.Errorf("equivalent percentage = %v, want 50", promo.EquivalentPercentage)
	}
	if !promo.IsMeerdereArtikels || promo.DealQuantity != 2 {
		t.Errorf("deal shape = multi=%v qty=%d, want multi-unit of 2", promo.IsMeerdereArtikels, promo.DealQuantity)
	}
	if promo.PromoPrice != 10.0 {
		t.Errorf("promo price = %v, want 19.99 at 50%% rounded to 10.0", promo.PromoPrice)
	}
	if promo.Category != "Drinken" || promo.PrimaryMacro != "Carbs" {
		t.Errorf("enrichment = %q/%q", promo.Category, promo.PrimaryMacro)
	}
	if !promo.IsActive {
		t.Error("new promotion must be active")
	}
	if !promo.ValidFrom.Equal(from) || !promo.ValidUntil.Equal(until) {
		t.Errorf("validity window = %v..%v", promo.ValidFrom, promo.ValidUntil)
	}
}

func TestRunMatchedProductCarriesCatalogData(t *testing.T) {
	brand := "Danone"
	protein := 7.5
	matcher := &fakeMatcher{entries: map[string]*domain.CatalogEntry{
		"5410146416040": {
			Barcode:      "5410146416040",
			ProductName:  "Danio Aardbei 450g",
			Brands:       &brand,
			Proteins100g: &protein,
		},
	}}
	enricher := &fakeEnricher{}
	products := &fakeProductRepo{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, products, promos)

	items := []domain.RawScrapeItem{{
		URL:      "https://shop.example/danio",
		Name:     "DANIO AARDBEI",
		Discount: "-20%",
		Barcode:  "5410146416040",
		Price:    floatPtr(2.5),
	}}

	from, until := window()
	summary, err := svc.Run(context.Background(), "Delhaize", items, from, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Matched != 1 {
		t.Fatalf("summary = %+v, want 1 matched", summary)
	}
	if len(products.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(products.upserts))
	}

	product := products.upserts[0]
	if product.Brand == nil || *product.Brand != brand {
		t.Errorf("brand = %v, want catalog brand carried over", product.Brand)
	}
	if product.Proteins100g == nil || *product.Proteins100g != protein {
		t.Errorf("proteins = %v, want catalog nutrition carried over", product.Proteins100g)
	}
	if promos.created[0].PromoPrice != 2.0 {
		t.Errorf("promo price = %v, want 2.50 at 20%%", promos.created[0].PromoPrice)
	}
}

func TestRunNamePriority(t *testing.T) {
	clean := "Coca-Cola Zero 1.5L"
	cases := []struct {
		label      string
		cleanName  *string
		scraped    string
		catalog    string
		wantPrefix string
	}{
		{"oracle wins", &clean, "COCA COLA ZERO PET", "Coca-Cola Zero", clean},
		{"scraped next", nil, "COCA COLA ZERO PET", "Coca-Cola Zero", "COCA COLA ZERO PET"},
		{"catalog next", nil, "", "Coca-Cola Zero", "Coca-Cola Zero"},
		{"fallback last", nil, "", "", "Unknown Product ("},
	}

	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			matcher := &fakeMatcher{entries: map[string]*domain.CatalogEntry{}}
			if tc.catalog != "" {
				matcher.entries["123"] = &domain.CatalogEntry{Barcode: "123", ProductName: tc.catalog}
			}
			enricher := &fakeEnricher{results: []domain.EnrichmentResult{{
				CleanName:    tc.cleanName,
				Category:     domain.CategoryOther,
				PrimaryMacro: domain.MacroNone,
			}}}
			promos := &fakePromoRepo{}
			svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

			items := []domain.RawScrapeItem{{
				URL:      "https://shop.example/cola",
				Name:     tc.scraped,
				Discount: "-10%",
				Barcode:  "123",
			}}

			from, until := window()
			if _, err := svc.Run(context.Background(), "Aldi", items, from, until); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(promos.created) != 1 {
				t.Fatalf("created = %d, want 1", len(promos.created))
			}
			if !strings.HasPrefix(promos.created[0].ProductName, tc.wantPrefix) {
				t.Errorf("product name = %q, want prefix %q", promos.created[0].ProductName, tc.wantPrefix)
			}
		})
	}
}

func TestRunGroupsItemsByURL(t *testing.T) {
	matcher := &fakeMatcher{entries: map[string]*domain.CatalogEntry{
		"200": {Barcode: "200", ProductName: "Tweede Verpakking"},
	}}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	// One physical product listed twice with different packaging barcodes
	items := []domain.RawScrapeItem{
		{URL: "https://shop.example/p1", Name: "Product Een", Discount: "-30%", Barcode: "100"},
		{URL: "https://shop.example/p1", Name: "Product Een", Discount: "-30%", Barcode: "200"},
		{URL: "https://shop.example/p2", Name: "Product Twee", Discount: "-10%", Barcode: "300"},
	}

	from, until := window()
	summary, err := svc.Run(context.Background(), "Lidl", items, from, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Matched != 1 || summary.NotFound != 1 {
		t.Fatalf("summary = %+v, want one matched group and one not_found group", summary)
	}
	if len(promos.created) != 2 {
		t.Fatalf("created %d promotions, want one per URL group", len(promos.created))
	}
	if promos.created[0].Barcode != "200" {
		t.Errorf("first group barcode = %q, want the matched candidate's barcode", promos.created[0].Barcode)
	}
	if len(enricher.inputs) != 2 {
		t.Errorf("enrichment inputs = %d, want one per group", len(enricher.inputs))
	}
}

func TestRunPlaceholderBarcodeWhenNoneScraped(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	items := []domain.RawScrapeItem{{
		URL:      "https://shop.example/mystery",
		Name:     "Mysterieproduct",
		Discount: "-15%",
	}}

	from, until := window()
	if _, err := svc.Run(context.Background(), "Carrefour", items, from, until); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(promos.created) != 1 {
		t.Fatalf("created = %d, want 1", len(promos.created))
	}
	barcode := promos.created[0].Barcode
	if !strings.HasPrefix(barcode, "URL-") || len(barcode) != len("URL-")+8 {
		t.Errorf("barcode = %q, want deterministic URL-derived placeholder", barcode)
	}
	if barcode != placeholderBarcode("https://shop.example/mystery") {
		t.Errorf("placeholder not deterministic: %q", barcode)
	}
}

func TestRunGroupErrorIsolation(t *testing.T) {
	matcher := &fakeMatcher{errOn: "bad"}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	items := []domain.RawScrapeItem{
		{URL: "https://shop.example/ok1", Name: "Eerste", Discount: "-10%", Barcode: "111"},
		{URL: "https://shop.example/broken", Name: "Kapot", Discount: "-20%", Barcode: "bad"},
		{URL: "https://shop.example/ok2", Name: "Derde", Discount: "-30%", Barcode: "333"},
	}

	from, until := window()
	summary, err := svc.Run(context.Background(), "Okay", items, from, until)
	if err != nil {
		t.Fatalf("a failed group must not abort the run: %v", err)
	}

	if summary.Failed != 1 || summary.NotFound != 2 {
		t.Fatalf("summary = %+v, want 1 failed and 2 not_found", summary)
	}
	if len(summary.ErrorList) != 1 || summary.ErrorList[0].URL != "https://shop.example/broken" {
		t.Errorf("error list = %+v", summary.ErrorList)
	}
	if len(promos.created) != 2 {
		t.Errorf("created %d promotions, the healthy groups must persist", len(promos.created))
	}
}

func TestRunDeactivatesBeforeCreating(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	items := []domain.RawScrapeItem{
		{URL: "https://shop.example/a", Name: "A", Discount: "-10%", Barcode: "1"},
		{URL: "https://shop.example/b", Name: "B", Discount: "-20%", Barcode: "2"},
	}

	from, until := window()
	if _, err := svc.Run(context.Background(), "Spar", items, from, until); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(promos.ops) < 3 || promos.ops[0] != "deactivate" {
		t.Fatalf("ops = %v, deactivation must come first", promos.ops)
	}
	for _, op := range promos.ops[1:] {
		if op == "deactivate" {
			t.Fatalf("ops = %v, deactivation must happen exactly once up front", promos.ops)
		}
	}
	if promos.deactivated[0] != "store-1" {
		t.Errorf("deactivated store = %q", promos.deactivated[0])
	}
}

func TestRunDeactivationFailureAbortsRun(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{deactivateErr: errors.New("db down")}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	items := []domain.RawScrapeItem{
		{URL: "https://shop.example/a", Name: "A", Discount: "-10%", Barcode: "1"},
	}

	from, until := window()
	_, err := svc.Run(context.Background(), "Spar", items, from, until)
	if err == nil {
		t.Fatal("expected an error when the deactivation barrier fails")
	}
	if len(promos.created) != 0 {
		t.Error("nothing may be created when the old set could not be cleared")
	}
}

func TestRunSkipsItemsWithoutURLOrDiscount(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	items := []domain.RawScrapeItem{
		{URL: "", Name: "Geen URL", Discount: "-10%", Barcode: "1"},
		{URL: "https://shop.example/x", Name: "Geen Korting", Discount: "", Barcode: "2"},
	}

	from, until := window()
	summary, err := svc.Run(context.Background(), "Jumbo", items, from, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Matched != 0 || summary.NotFound != 0 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want empty run", summary)
	}
	if len(promos.deactivated) != 0 {
		t.Error("an empty run must not deactivate the current active set")
	}
}

func TestRunRequiresStoreName(t *testing.T) {
	svc := newTestService(&fakeMatcher{}, &fakeEnricher{}, &fakeProductRepo{}, &fakePromoRepo{})

	from, until := window()
	_, err := svc.Run(context.Background(), "", nil, from, until)
	if err == nil {
		t.Fatal("expected an error for a missing store name")
	}
}

func TestRunOracleDealShapeOverride(t *testing.T) {
	matcher := &fakeMatcher{}
	multi := true
	qty := 3
	enricher := &fakeEnricher{results: []domain.EnrichmentResult{{
		Category:           domain.CategoryOther,
		PrimaryMacro:       domain.MacroNone,
		IsMeerdereArtikels: &multi,
		DealQuantity:       &qty,
	}}}
	promos := &fakePromoRepo{}
	svc := newTestService(matcher, enricher, &fakeProductRepo{}, promos)

	// The label alone parses as a plain single-unit percentage
	items := []domain.RawScrapeItem{{
		URL:      "https://shop.example/tray",
		Name:     "Tray Aanbieding",
		Discount: "-25%",
		Barcode:  "444",
	}}

	from, until := window()
	if _, err := svc.Run(context.Background(), "Colruyt", items, from, until); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	promo := promos.created[0]
	if !promo.IsMeerdereArtikels || promo.DealQuantity != 3 {
		t.Errorf("deal shape = multi=%v qty=%d, want the oracle override applied", promo.IsMeerdereArtikels, promo.DealQuantity)
	}
	if promo.EquivalentPercentage == nil || *promo.EquivalentPercentage != 25.0 {
		t.Errorf("equivalent percentage = %v, the parser value must survive the override", promo.EquivalentPercentage)
	}
}
