package extract

import (
	"strings"

	"shoppingstore/ingest/internal/domain"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Attributes flattens classification groups into a flat attribute list. Order
// follows the source: classification order, then feature order within each
// classification. The first listed value of a feature wins; features with no
// values are skipped with a warning since the remote data legitimately contains
// such gaps. No deduplication is performed.
func Attributes(classifications []domain.Classification) []domain.ProductAttribute {
	var attributes []domain.ProductAttribute

	for _, classification := range classifications {
		for _, feature := range classification.Features {
			if len(feature.Values) == 0 {
				log.Warnf("Skipping feature %q in classification %q: no feature values", feature.Name, classification.Name)
				continue
			}

			attributes = append(attributes, domain.ProductAttribute{
				Name:  feature.Name,
				Value: feature.Values[0],
			})
		}
	}

	return attributes
}

// ConvertPrice divides amount by divisor and rounds half-up to the given number
// of fractional digits. Deterministic, no banker's rounding.
func ConvertPrice(amount decimal.Decimal, divisor int64, scale int32) decimal.Decimal {
	return amount.DivRound(decimal.NewFromInt(divisor), scale)
}

// NormalizeSKU replaces spaces and forward slashes with hyphens. Idempotent.
func NormalizeSKU(sku string) string {
	normalized := strings.ReplaceAll(sku, " ", "-")
	return strings.ReplaceAll(normalized, "/", "-")
}

// Manufacturer derives the manufacturer from the first whitespace-delimited
// token of a product name.
func Manufacturer(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
