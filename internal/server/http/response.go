package httpserver

import (
	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/report"
)

// Response types for JSON serialization.

type authorResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ORCID       string `json:"orcid,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	WorksCount  int    `json:"works_count"`
}

type listAuthorsResponse struct {
	Authors    []authorResponse `json:"authors"`
	TotalCount int              `json:"total_count"`
}

type workRowResponse struct {
	Title      string  `json:"title"`
	DOI        string  `json:"doi,omitempty"`
	Publisher  string  `json:"publisher"`
	CostUSD    float64 `json:"cost_usd"`
	OpenAccess bool    `json:"open_access"`
	ForProfit  bool    `json:"for_profit"`
}

type summaryResponse struct {
	TotalWorks       int                `json:"total_works"`
	ForProfitWorks   int                `json:"for_profit_works"`
	ForProfitPercent float64            `json:"for_profit_percent"`
	TotalCostUSD     float64            `json:"total_cost_usd"`
	CostByPublisher  map[string]float64 `json:"cost_by_publisher"`
}

type analysisResponse struct {
	RunID       string              `json:"run_id"`
	SubjectKind string              `json:"subject_kind"`
	SubjectID   string              `json:"subject_id"`
	Works       []workRowResponse   `json:"works"`
	Summary     summaryResponse     `json:"summary"`
	Chart       []report.ChartSlice `json:"chart"`
}

// Converter functions

func profileToResponse(p domain.AuthorProfile) authorResponse {
	return authorResponse{
		ID:          p.ID,
		Name:        p.Name,
		ORCID:       p.ORCID,
		Affiliation: p.Affiliation,
		WorksCount:  p.WorksCount,
	}
}

func profilesToResponses(profiles []domain.AuthorProfile) []authorResponse {
	out := make([]authorResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileToResponse(p))
	}
	return out
}

func rowsToResponses(rows []domain.ResolvedWork) []workRowResponse {
	out := make([]workRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, workRowResponse{
			Title:      row.Title,
			DOI:        row.DOI,
			Publisher:  row.Publisher,
			CostUSD:    row.Cost,
			OpenAccess: row.OpenAccess,
			ForProfit:  row.ForProfit,
		})
	}
	return out
}

func summaryToResponse(s domain.AggregateSummary) summaryResponse {
	return summaryResponse{
		TotalWorks:       s.TotalWorks,
		ForProfitWorks:   s.ForProfitWorks,
		ForProfitPercent: s.ForProfitPercent,
		TotalCostUSD:     s.TotalCost,
		CostByPublisher:  s.CostByPublisher,
	}
}
