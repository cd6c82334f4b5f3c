package discount

import (
	"math"
	"promoMarket/domain"
	"regexp"
	"strconv"
	"strings"
)

// Label grammar in order of precedence, first match wins. Belgian retailers
// mix "2de"/"2e" spellings and "," or "." decimal separators freely.
var (
	reNthAtPercent   = regexp.MustCompile(`(?i)(\d+)\s*(?:DE|E)\s+AAN\s+-?\s*(\d+(?:[.,]\d+)?)\s*%`)
	reNthAtHalfPrice = regexp.MustCompile(`(?i)(\d+)\s*(?:DE|E)\s+AAN\s+HALVE\s+PRIJS`)
	reNthFree        = regexp.MustCompile(`(?i)(\d+)\s*(?:DE|E)\s+GRATIS`)
	reBuyNGetMFree   = regexp.MustCompile(`(?i)(\d+)\s*\+\s*(\d+)\s*GRATIS`)
	rePercentFromN   = regexp.MustCompile(`(?i)-?\s*(\d+(?:[.,]\d+)?)\s*%\s+VANAF\s+(\d+)\s*ST`)
	rePlainPercent   = regexp.MustCompile(`(?i)-?\s*(\d+(?:[.,]\d+)?)\s*%`)
)

// Parse turns a free-text discount label into a normalized DiscountRule.
// Total and deterministic: unrecognized input yields a no-discount rule,
// never an error.
func Parse(rawLabel string) domain.DiscountRule {
	rule := domain.DiscountRule{
		RawLabel:     rawLabel,
		DealQuantity: 1,
	}

	label := strings.TrimSpace(rawLabel)
	if label == "" {
		return rule
	}

	// "2de AAN -50%": one of N units discounted by X%, averaged over N
	if m := reNthAtPercent.FindStringSubmatch(label); m != nil {
		n := parseInt(m[1])
		pct, ok := parseDecimal(m[2])
		if n >= 2 && ok {
			rule.EquivalentPercentage = round2(pct / float64(n))
			rule.IsMultiUnit = true
			rule.DealQuantity = n
			return rule
		}
	}

	// "2de AAN HALVE PRIJS": one of N units at half price
	if m := reNthAtHalfPrice.FindStringSubmatch(label); m != nil {
		n := parseInt(m[1])
		if n >= 2 {
			rule.EquivalentPercentage = round2(50.0 / float64(n))
			rule.IsMultiUnit = true
			rule.DealQuantity = n
			return rule
		}
	}

	// "2de GRATIS": one of N units free
	if m := reNthFree.FindStringSubmatch(label); m != nil {
		n := parseInt(m[1])
		if n >= 2 {
			rule.EquivalentPercentage = round2(100.0 / float64(n))
			rule.IsMultiUnit = true
			rule.DealQuantity = n
			return rule
		}
	}

	// "1+1 GRATIS": pay N, receive N+M
	if m := reBuyNGetMFree.FindStringSubmatch(label); m != nil {
		n := parseInt(m[1])
		free := parseInt(m[2])
		if n >= 1 && free >= 1 {
			total := n + free
			rule.EquivalentPercentage = round2(float64(free) / float64(total) * 100.0)
			rule.IsMultiUnit = true
			rule.DealQuantity = total
			return rule
		}
	}

	// "-40% VANAF 6 ST": threshold discount, only realized at N+ units
	if m := rePercentFromN.FindStringSubmatch(label); m != nil {
		pct, ok := parseDecimal(m[1])
		n := parseInt(m[2])
		if ok && n >= 1 {
			rule.EquivalentPercentage = round2(pct)
			rule.IsMultiUnit = true
			rule.DealQuantity = n
			return rule
		}
	}

	// "-20%"
	if m := rePlainPercent.FindStringSubmatch(label); m != nil {
		if pct, ok := parseDecimal(m[1]); ok {
			rule.EquivalentPercentage = round2(pct)
			return rule
		}
	}

	return rule
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(v float64) *float64 {
	rounded := math.Round(v*100) / 100
	return &rounded
}
