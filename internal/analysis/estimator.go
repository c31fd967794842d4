package analysis

import (
	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

// Estimator decides the cost attributed to a work using a three-tier
// fallback: the reported APC when present, a curated per-publisher estimate
// when the work is plausibly open with an APC-carrying status, and zero
// otherwise.
type Estimator struct {
	tax *taxonomy.Taxonomy
}

// NewEstimator creates an Estimator backed by the given taxonomy.
func NewEstimator(tax *taxonomy.Taxonomy) *Estimator {
	return &Estimator{tax: tax}
}

// Estimate returns the attributed cost and open-access flag for a work
// already resolved to a publisher.
//
// A reported non-zero apc_paid value is used verbatim regardless of the
// work's open-access status: authoritative data always wins. Without a
// reported value, works that are open with a gold/hybrid/bronze/diamond
// status get the taxonomy estimate for their publisher (or the default).
// Closed-access works without a reported value cost nothing.
//
// The open-access flag is true when a cost was attributed or when the work
// is plausibly open, so a zero-cost diamond OA work is still flagged open.
func (e *Estimator) Estimate(work domain.WorkRecord, publisher string) (cost float64, isOA bool) {
	apcPlausible := work.OpenAccess.IsOA && work.OpenAccess.Status.CarriesAPC()

	switch {
	case reportedAPC(work) > 0:
		cost = reportedAPC(work)
	case apcPlausible:
		cost = e.tax.EstimateFor(publisher)
	}

	return cost, cost > 0 || apcPlausible
}

// reportedAPC returns the work's reported charge in USD, preferring the
// converted value_usd figure over the original-currency value.
func reportedAPC(work domain.WorkRecord) float64 {
	if work.APCPaid == nil {
		return 0
	}
	if work.APCPaid.ValueUSD > 0 {
		return work.APCPaid.ValueUSD
	}
	return work.APCPaid.Value
}
