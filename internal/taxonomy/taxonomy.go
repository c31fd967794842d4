// Package taxonomy holds the curated publisher classification tables: the
// for-profit publisher set, the preprint-server exclusion set, corporate
// suffix tokens, the ordered alias table, and per-publisher APC estimates.
//
// Tables are plain configuration: they load from a YAML file at startup so
// curation changes never require recompilation. When no file is given the
// built-in defaults apply. A Taxonomy is immutable after Load and is injected
// by reference into the analysis components.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultEstimateKey is the mandatory fallback entry in the APC estimate map.
const DefaultEstimateKey = "default"

// AliasRule maps a substring pattern to a canonical publisher name.
// Rules are matched in declaration order; the first pattern found as a
// substring of a cleaned name wins, so overlapping patterns resolve by
// position in the table, not by specificity.
type AliasRule struct {
	Pattern   string `yaml:"pattern" validate:"required"`
	Canonical string `yaml:"canonical" validate:"required"`
}

// Taxonomy is the full set of curated classification tables.
type Taxonomy struct {
	// ForProfit lists canonical keys of commercial publishers, used for
	// cost-exposure counting.
	ForProfit []string `yaml:"for_profit" validate:"required,min=1"`

	// PreprintServers lists organization names whose works are excluded
	// from cost analysis entirely.
	PreprintServers []string `yaml:"preprint_servers" validate:"required,min=1"`

	// CorporateSuffixes lists company-suffix tokens ("ltd", "gmbh", ...)
	// stripped from raw organization names before alias matching.
	CorporateSuffixes []string `yaml:"corporate_suffixes" validate:"required,min=1"`

	// Aliases is the ordered pattern-to-canonical mapping. Order is part
	// of the contract and must be preserved, which is why this is a slice
	// and not a map.
	Aliases []AliasRule `yaml:"aliases" validate:"required,min=1,dive"`

	// APCEstimates maps canonical publishers to estimated charges in USD.
	// Must contain a "default" entry for publishers without an estimate.
	APCEstimates map[string]float64 `yaml:"apc_estimates" validate:"required,min=1"`

	forProfit map[string]struct{}
	preprint  map[string]struct{}
	aliasRank map[string]int
}

// Load reads a taxonomy from the YAML file at path, or returns the built-in
// defaults when path is empty. Malformed or incomplete tables are an error;
// the caller is expected to treat that as fatal at startup.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		t := Default()
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}

	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy file: %w", err)
	}

	if err := t.finalize(); err != nil {
		return nil, fmt.Errorf("validate taxonomy %s: %w", path, err)
	}
	return &t, nil
}

// finalize validates the tables, lowercases every entry, and builds the
// internal lookup indexes.
func (t *Taxonomy) finalize() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return err
	}

	if _, ok := t.APCEstimates[DefaultEstimateKey]; !ok {
		return fmt.Errorf("apc_estimates is missing the mandatory %q entry", DefaultEstimateKey)
	}

	for i, p := range t.ForProfit {
		t.ForProfit[i] = strings.ToLower(strings.TrimSpace(p))
	}
	for i, p := range t.PreprintServers {
		t.PreprintServers[i] = strings.ToLower(strings.TrimSpace(p))
	}
	for i, s := range t.CorporateSuffixes {
		t.CorporateSuffixes[i] = strings.ToLower(strings.TrimSpace(s))
		if t.CorporateSuffixes[i] == "" {
			return fmt.Errorf("corporate_suffixes[%d] is blank", i)
		}
	}
	for i := range t.Aliases {
		t.Aliases[i].Pattern = strings.ToLower(strings.TrimSpace(t.Aliases[i].Pattern))
		t.Aliases[i].Canonical = strings.ToLower(strings.TrimSpace(t.Aliases[i].Canonical))
	}

	t.forProfit = make(map[string]struct{}, len(t.ForProfit))
	for _, p := range t.ForProfit {
		t.forProfit[p] = struct{}{}
	}
	t.preprint = make(map[string]struct{}, len(t.PreprintServers))
	for _, p := range t.PreprintServers {
		t.preprint[p] = struct{}{}
	}

	// Rank canonical names by the position of their first alias rule.
	// Used to break multi-publisher conflicts deterministically.
	t.aliasRank = make(map[string]int, len(t.Aliases))
	for i, rule := range t.Aliases {
		if _, ok := t.aliasRank[rule.Canonical]; !ok {
			t.aliasRank[rule.Canonical] = i
		}
	}

	return nil
}

// IsForProfit reports whether the canonical key names a commercial publisher.
func (t *Taxonomy) IsForProfit(key string) bool {
	_, ok := t.forProfit[key]
	return ok
}

// IsPreprintServer reports whether the canonical key names a preprint server.
func (t *Taxonomy) IsPreprintServer(key string) bool {
	_, ok := t.preprint[key]
	return ok
}

// EstimateFor returns the APC estimate for the publisher, falling back to
// the default entry when the publisher has no specific estimate.
func (t *Taxonomy) EstimateFor(publisher string) float64 {
	if v, ok := t.APCEstimates[publisher]; ok {
		return v
	}
	return t.APCEstimates[DefaultEstimateKey]
}

// AliasRank returns the declaration-order rank of the canonical name's first
// alias rule, and whether the name appears in the alias table at all.
// Lower ranks win conflict resolution.
func (t *Taxonomy) AliasRank(canonical string) (int, bool) {
	r, ok := t.aliasRank[canonical]
	return r, ok
}
