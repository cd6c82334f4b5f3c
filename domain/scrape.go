package domain

import (
	"time"
)

// RawScrapeItem is one retailer page observation as delivered by the
// external scraper. Ephemeral: consumed once per pipeline run, never stored.
type RawScrapeItem struct {
	URL      string   `json:"url"`
	Name     string   `json:"name"`
	Discount string   `json:"discount"`
	Barcode  string   `json:"barcode"`
	Price    *float64 `json:"price"`
}

// MatchStatus is the closed outcome set of catalog resolution for one group.
type MatchStatus int

const (
	MatchStatusMatched MatchStatus = iota
	MatchStatusNotFound
	MatchStatusError
)

func (m MatchStatus) String() string {
	switch m {
	case MatchStatusMatched:
		return "matched"
	case MatchStatusNotFound:
		return "not_found"
	case MatchStatusError:
		return "error"
	}
	return "unknown"
}

// GroupError records a failure scoped to one URL group; the rest of the run
// is unaffected.
type GroupError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// ReconcileSummary is the structured result of one pipeline run. A run that
// resolved nothing still returns a summary, with everything bucketed into
// Errors.
type ReconcileSummary struct {
	Store      string       `json:"store"`
	Matched    int          `json:"matched"`
	NotFound   int          `json:"not_found"`
	Failed     int          `json:"errors"`
	ErrorList  []GroupError `json:"error_list"`
	ValidFrom  time.Time    `json:"valid_from"`
	ValidUntil time.Time    `json:"valid_until"`
}
