package analysis

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/observability"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

// Drop reasons reported in the works_dropped metric.
const (
	dropReasonUnknown  = "unknown_publisher"
	dropReasonPreprint = "preprint"
)

// earliestDate is the sort key for works without a publication date.
var earliestDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Engine drives publisher resolution and cost estimation over an ordered
// batch of works. Each Aggregate call is a pure function of its inputs and
// the static taxonomy; no state is retained between calls.
type Engine struct {
	tax       *taxonomy.Taxonomy
	resolver  *Resolver
	estimator *Estimator
	metrics   *observability.Metrics
}

// NewEngine creates an aggregation engine. metrics may be nil.
func NewEngine(tax *taxonomy.Taxonomy, logger zerolog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		tax:       tax,
		resolver:  NewResolver(tax, logger, metrics),
		estimator: NewEstimator(tax),
		metrics:   metrics,
	}
}

// Aggregate analyzes a batch of works and returns per-work rows plus the
// batch summary.
//
// Works are sorted by publication date descending (missing dates sort
// earliest, ties keep their original order) and truncated to maxWorks when
// positive. Works resolving to an unknown publisher or a preprint server are
// dropped entirely: they appear in neither the rows nor the summary. An
// empty input yields an empty row list and a zero-valued summary.
func (e *Engine) Aggregate(works []domain.WorkRecord, maxWorks int) ([]domain.ResolvedWork, domain.AggregateSummary) {
	sorted := make([]domain.WorkRecord, len(works))
	copy(sorted, works)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortDate(sorted[i]).After(sortDate(sorted[j]))
	})

	if maxWorks > 0 && len(sorted) > maxWorks {
		sorted = sorted[:maxWorks]
	}

	rows := make([]domain.ResolvedWork, 0, len(sorted))
	summary := domain.AggregateSummary{
		CostByPublisher: make(map[string]float64),
	}

	for _, work := range sorted {
		publisher := e.resolver.Resolve(work)
		if publisher == domain.UnknownPublisher {
			e.countDrop(dropReasonUnknown)
			continue
		}
		if e.tax.IsPreprintServer(publisher) {
			e.countDrop(dropReasonPreprint)
			continue
		}

		cost, isOA := e.estimator.Estimate(work, publisher)
		forProfit := e.tax.IsForProfit(publisher) && cost > 0

		rows = append(rows, domain.ResolvedWork{
			Title:      work.Title,
			DOI:        work.DOI,
			Publisher:  publisher,
			Cost:       cost,
			OpenAccess: isOA,
			ForProfit:  forProfit,
		})

		summary.TotalWorks++
		summary.TotalCost += cost
		summary.CostByPublisher[publisher] += cost
		if forProfit {
			summary.ForProfitWorks++
		}

		if e.metrics != nil {
			e.metrics.WorksAnalyzed.Inc()
			if cost > 0 {
				tier := "estimated"
				if reportedAPC(work) > 0 {
					tier = "reported"
				}
				e.metrics.CostAttributed.WithLabelValues(tier).Add(cost)
			}
		}
	}

	if summary.TotalWorks > 0 {
		summary.ForProfitPercent = float64(summary.ForProfitWorks) / float64(summary.TotalWorks) * 100
	}

	return rows, summary
}

func (e *Engine) countDrop(reason string) {
	if e.metrics != nil {
		e.metrics.WorksDropped.WithLabelValues(reason).Inc()
	}
}

func sortDate(w domain.WorkRecord) time.Time {
	if w.PublicationDate == nil {
		return earliestDate
	}
	return *w.PublicationDate
}
