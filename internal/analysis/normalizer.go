// Package analysis implements the publisher-normalization and cost-estimation
// pipeline: given raw work records, it resolves a single canonical publisher
// per work, estimates the APC paid, and aggregates the batch into summary
// statistics.
package analysis

import (
	"strings"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

// Normalizer reduces raw organization names to canonical publisher keys.
type Normalizer struct {
	tax *taxonomy.Taxonomy
}

// NewNormalizer creates a Normalizer backed by the given taxonomy.
func NewNormalizer(tax *taxonomy.Taxonomy) *Normalizer {
	return &Normalizer{tax: tax}
}

// Normalize maps a raw organization name to a canonical publisher key.
//
// The input is lowercased, corporate suffix tokens are stripped in a single
// pass over the suffix list, and the cleaned name is matched against the
// ordered alias table; the first pattern found as a substring wins. Names
// matching no alias return domain.UnknownPublisher: an unrecognized publisher
// is treated the same as no publisher data at all.
func (n *Normalizer) Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return domain.UnknownPublisher
	}

	// Each suffix token is tried once, in three positions: surrounded by
	// whitespace, trailing, and leading. Whitespace is collapsed after
	// each strip so a name carrying two different tokens still cleans up.
	for _, tok := range n.tax.CorporateSuffixes {
		name = strings.ReplaceAll(name, " "+tok+" ", " ")
		name = strings.TrimSuffix(name, " "+tok)
		name = strings.TrimPrefix(name, tok+" ")
		name = strings.Join(strings.Fields(name), " ")
	}
	if name == "" {
		return domain.UnknownPublisher
	}

	for _, rule := range n.tax.Aliases {
		if strings.Contains(name, rule.Pattern) {
			return rule.Canonical
		}
	}
	return domain.UnknownPublisher
}
