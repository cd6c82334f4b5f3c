package catalog

import (
	"context"
	"errors"
	"promoMarket/domain"
	"testing"
)

type fakeCatalogRepo struct {
	entries    map[string]domain.CatalogEntry
	candidates []domain.CatalogEntry
	lookups    []string
}

func (f *fakeCatalogRepo) FindByBarcode(_ context.Context, barcode string) (*domain.CatalogEntry, error) {
	f.lookups = append(f.lookups, barcode)
	if entry, ok := f.entries[barcode]; ok {
		e := entry
		return &e, nil
	}
	return nil, nil
}

func (f *fakeCatalogRepo) SearchCandidates(_ context.Context, _ string, _ []string, _ int) ([]domain.CatalogEntry, error) {
	return f.candidates, nil
}

func (f *fakeCatalogRepo) Stats(_ context.Context) (domain.CatalogStats, error) {
	return domain.CatalogStats{TotalEntries: int64(len(f.entries))}, nil
}

type fakeRemoteCatalog struct {
	entry *domain.CatalogEntry
	err   error
	calls int
}

func (f *fakeRemoteCatalog) FetchByBarcode(_ context.Context, _ string) (*domain.CatalogEntry, error) {
	f.calls++
	return f.entry, f.err
}

type fakeCache struct {
	entries map[string]*domain.CatalogEntry
	stored  int
}

func (f *fakeCache) GetEntry(_ context.Context, barcode string) (*domain.CatalogEntry, error) {
	return f.entries[barcode], nil
}

func (f *fakeCache) StoreEntry(_ context.Context, barcode string, entry *domain.CatalogEntry) error {
	if f.entries == nil {
		f.entries = make(map[string]*domain.CatalogEntry)
	}
	f.entries[barcode] = entry
	f.stored++
	return nil
}

func TestMatchByBarcodeUPCToEAN13(t *testing.T) {
	repo := &fakeCatalogRepo{entries: map[string]domain.CatalogEntry{
		"003245678901": {Barcode: "003245678901", ProductName: "Cola Zero"},
	}}
	svc := NewMatcherService(repo, &fakeRemoteCatalog{}, nil)

	// 12-digit UPC must find the catalog row stored in 13-digit EAN form
	entry, err := svc.MatchByBarcode(context.Background(), "03245678901")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected a match via zero-prefixed variant")
	}
	if entry.ProductName != "Cola Zero" {
		t.Errorf("product name = %q", entry.ProductName)
	}
	if entry.MatchScore != 100.0 {
		t.Errorf("match score = %v, want 100", entry.MatchScore)
	}
}

func TestMatchByBarcodeEAN13ToUPC(t *testing.T) {
	repo := &fakeCatalogRepo{entries: map[string]domain.CatalogEntry{
		"324567890123": {Barcode: "324567890123", ProductName: "Chips Paprika"},
	}}
	svc := NewMatcherService(repo, &fakeRemoteCatalog{}, nil)

	entry, err := svc.MatchByBarcode(context.Background(), "0324567890123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected a match via stripped variant")
	}
}

func TestMatchByBarcodeVariantOrder(t *testing.T) {
	repo := &fakeCatalogRepo{entries: map[string]domain.CatalogEntry{}}
	remote := &fakeRemoteCatalog{}
	svc := NewMatcherService(repo, remote, nil)

	_, err := svc.MatchByBarcode(context.Background(), "03245678901")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"03245678901", "3245678901", "003245678901",
		"0003245678901", "00003245678901",
	}
	if len(repo.lookups) != len(want) {
		t.Fatalf("lookups = %v, want %v", repo.lookups, want)
	}
	for i := range want {
		if repo.lookups[i] != want[i] {
			t.Errorf("lookup[%d] = %q, want %q", i, repo.lookups[i], want[i])
		}
	}
	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want 1 after local miss", remote.calls)
	}
}

func TestMatchByBarcodeRemoteFallback(t *testing.T) {
	repo := &fakeCatalogRepo{entries: map[string]domain.CatalogEntry{}}
	remote := &fakeRemoteCatalog{entry: &domain.CatalogEntry{Barcode: "5410228112345", ProductName: "Jupiler Pils"}}
	cache := &fakeCache{}
	svc := NewMatcherService(repo, remote, cache)

	entry, err := svc.MatchByBarcode(context.Background(), "5410228112345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("expected remote hit")
	}
	if entry.MatchScore != 100.0 {
		t.Errorf("remote match score = %v, want 100", entry.MatchScore)
	}
	if cache.stored != 1 {
		t.Errorf("cache stores = %d, want 1", cache.stored)
	}
}

func TestMatchByBarcodeRemoteFailureDegradesToNoMatch(t *testing.T) {
	repo := &fakeCatalogRepo{entries: map[string]domain.CatalogEntry{}}
	remote := &fakeRemoteCatalog{err: errors.New("timeout")}
	svc := NewMatcherService(repo, remote, nil)

	entry, err := svc.MatchByBarcode(context.Background(), "123")
	if err != nil {
		t.Fatalf("remote failure must not error the lookup: %v", err)
	}
	if entry != nil {
		t.Errorf("expected no match, got %+v", entry)
	}
}

func TestMatchByBarcodeEmptyInput(t *testing.T) {
	remote := &fakeRemoteCatalog{}
	svc := NewMatcherService(&fakeCatalogRepo{}, remote, nil)

	entry, err := svc.MatchByBarcode(context.Background(), "   ")
	if err != nil || entry != nil {
		t.Errorf("empty barcode: entry=%v err=%v, want nil/nil", entry, err)
	}
	if remote.calls != 0 {
		t.Error("empty barcode must not reach the remote catalog")
	}
}

func TestMatchByNameScoring(t *testing.T) {
	repo := &fakeCatalogRepo{candidates: []domain.CatalogEntry{
		{Barcode: "1", ProductName: "Danio Strawberry"},
		{Barcode: "2", ProductName: "Danio Strawberry 180g Extra"},
		{Barcode: "3", ProductName: "Strawberry Jam"},
		{Barcode: "4", ProductName: "Melk Halfvol"},
	}}
	svc := NewMatcherService(repo, &fakeRemoteCatalog{}, nil)

	// Threshold below the word-overlap score so all three scoring tiers
	// show up; only the zero-overlap candidate drops out.
	matches, err := svc.MatchByName(context.Background(), "Danio Strawberry", 5, 30.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3 (melk filtered out)", len(matches))
	}
	if matches[0].Barcode != "1" || matches[0].MatchScore != 100.0 {
		t.Errorf("best match = %q score %v, want exact match scoring 100", matches[0].Barcode, matches[0].MatchScore)
	}
	// substring containment lands in 70-90
	if matches[1].Barcode != "2" || matches[1].MatchScore <= 70.0 || matches[1].MatchScore >= 90.0 {
		t.Errorf("second match = %q score %v, want substring score in (70,90)", matches[1].Barcode, matches[1].MatchScore)
	}
	// one of two search words overlaps: 35
	if matches[2].Barcode != "3" || matches[2].MatchScore != 35.0 {
		t.Errorf("third match = %q score %v, want word-overlap score 35", matches[2].Barcode, matches[2].MatchScore)
	}
}

func TestMatchByNameMinScoreIsExclusive(t *testing.T) {
	repo := &fakeCatalogRepo{candidates: []domain.CatalogEntry{
		{Barcode: "1", ProductName: "Danio Strawberry"},
		{Barcode: "2", ProductName: "Danio Strawberry 180g Extra"},
		{Barcode: "3", ProductName: "Strawberry Jam"},
	}}
	svc := NewMatcherService(repo, &fakeRemoteCatalog{}, nil)

	// "Strawberry Jam" scores 35 on word overlap and must not survive a
	// threshold of 40
	matches, err := svc.MatchByName(context.Background(), "Danio Strawberry", 5, 40.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if m.MatchScore < 40.0 {
			t.Errorf("match %q scored %v, below the requested minimum", m.ProductName, m.MatchScore)
		}
	}
}

func TestMatchByNameMinScoreAndLimit(t *testing.T) {
	repo := &fakeCatalogRepo{candidates: []domain.CatalogEntry{
		{Barcode: "1", ProductName: "Bio Appel"},
		{Barcode: "2", ProductName: "Appel Golden"},
		{Barcode: "3", ProductName: "Appelsap"},
	}}
	svc := NewMatcherService(repo, &fakeRemoteCatalog{}, nil)

	matches, err := svc.MatchByName(context.Background(), "appel", 1, 50.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want limit of 1", len(matches))
	}
}

func TestBarcodeVariantsNoDuplicates(t *testing.T) {
	variants := barcodeVariants("5410228112345")
	if len(variants) != 2 {
		t.Errorf("13-digit barcode without leading zeros: variants = %v, want itself plus the GTIN-14 form", variants)
	}
	if variants[0] != "5410228112345" || variants[1] != "05410228112345" {
		t.Errorf("variants = %v", variants)
	}

	variants = barcodeVariants("000000000000")
	for _, v := range variants {
		if v == "" {
			t.Error("all-zero barcode produced an empty variant")
		}
	}
}
