// Package report shapes analysis results for presentation: chart-ready
// cost breakdowns and CSV export of per-work rows.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pubcost/publication-cost-service/internal/domain"
)

// DefaultTopPublishers is how many publishers a chart breaks out before
// folding the remainder into a single slice.
const DefaultTopPublishers = 10

// OtherLabel names the chart slice that folds the long tail of publishers.
const OtherLabel = "other"

// ChartSlice is one publisher's share of the total attributed cost.
type ChartSlice struct {
	Publisher string  `json:"publisher"`
	Cost      float64 `json:"cost"`
}

// BuildChart turns a per-publisher cost map into an ordered breakdown:
// the topN publishers by cost descending, then a single "other" slice
// summing the rest. Publishers with zero attributed cost are omitted.
// Ties are broken by publisher name to keep the output deterministic.
func BuildChart(costByPublisher map[string]float64, topN int) []ChartSlice {
	if topN <= 0 {
		topN = DefaultTopPublishers
	}

	slices := make([]ChartSlice, 0, len(costByPublisher))
	for publisher, cost := range costByPublisher {
		if cost <= 0 {
			continue
		}
		slices = append(slices, ChartSlice{Publisher: publisher, Cost: cost})
	}

	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Cost != slices[j].Cost {
			return slices[i].Cost > slices[j].Cost
		}
		return slices[i].Publisher < slices[j].Publisher
	})

	if len(slices) <= topN {
		return slices
	}

	var other float64
	for _, s := range slices[topN:] {
		other += s.Cost
	}
	slices = slices[:topN]
	return append(slices, ChartSlice{Publisher: OtherLabel, Cost: other})
}

// csvHeader is the column layout for exported analysis rows.
var csvHeader = []string{"title", "doi", "publisher", "cost_usd", "open_access", "for_profit"}

// WriteCSV streams the analyzed rows to w as CSV, one row per work, in the
// order they were analyzed. Costs are written with two decimal places.
func WriteCSV(w io.Writer, rows []domain.ResolvedWork) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Title,
			row.DOI,
			row.Publisher,
			strconv.FormatFloat(row.Cost, 'f', 2, 64),
			strconv.FormatBool(row.OpenAccess),
			strconv.FormatBool(row.ForProfit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV output: %w", err)
	}
	return nil
}
