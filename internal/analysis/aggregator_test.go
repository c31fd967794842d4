package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/taxonomy"
)

func newTestEngine() *Engine {
	return NewEngine(taxonomy.Default(), zerolog.Nop(), nil)
}

func dateOf(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &parsed
}

func publishedWork(id, title, publisher string, date *time.Time) domain.WorkRecord {
	return domain.WorkRecord{
		ID:              id,
		Title:           title,
		PublicationDate: date,
		Locations: []domain.Location{
			{Source: &domain.Source{ID: "S-" + id, LineageNames: []string{publisher}}},
		},
	}
}

func TestEngine_Aggregate(t *testing.T) {
	e := newTestEngine()

	t.Run("empty batch", func(t *testing.T) {
		rows, summary := e.Aggregate(nil, 0)
		assert.Empty(t, rows)
		assert.Zero(t, summary.TotalWorks)
		assert.Zero(t, summary.TotalCost)
		assert.Zero(t, summary.ForProfitPercent)
		assert.Empty(t, summary.CostByPublisher)
	})

	t.Run("gold OA work gets publisher estimate", func(t *testing.T) {
		work := publishedWork("W1", "A Title", "Springer Nature", dateOf(t, "2024-01-15"))
		work.OpenAccess = domain.OpenAccess{IsOA: true, Status: domain.OAStatusGold}

		rows, summary := e.Aggregate([]domain.WorkRecord{work}, 0)
		require.Len(t, rows, 1)
		assert.Equal(t, "springer nature", rows[0].Publisher)
		assert.Equal(t, 2800.0, rows[0].Cost)
		assert.True(t, rows[0].OpenAccess)
		assert.True(t, rows[0].ForProfit)
		assert.Equal(t, 2800.0, summary.TotalCost)
		assert.Equal(t, 100.0, summary.ForProfitPercent)
	})

	t.Run("unknown publisher dropped", func(t *testing.T) {
		rows, summary := e.Aggregate([]domain.WorkRecord{
			publishedWork("W1", "Known", "Elsevier", dateOf(t, "2024-01-01")),
			publishedWork("W2", "Unknown", "Obscure Society Press", dateOf(t, "2024-02-01")),
		}, 0)
		require.Len(t, rows, 1)
		assert.Equal(t, "Known", rows[0].Title)
		assert.Equal(t, 1, summary.TotalWorks)
	})

	t.Run("preprints dropped", func(t *testing.T) {
		rows, summary := e.Aggregate([]domain.WorkRecord{
			publishedWork("W1", "Preprint", "bioRxiv (Cold Spring Harbor Laboratory)", dateOf(t, "2024-03-01")),
			publishedWork("W2", "Article", "Elsevier", dateOf(t, "2024-01-01")),
		}, 0)
		require.Len(t, rows, 1)
		assert.Equal(t, "Article", rows[0].Title)
		assert.Equal(t, 1, summary.TotalWorks)
	})

	t.Run("sorted by date descending", func(t *testing.T) {
		rows, _ := e.Aggregate([]domain.WorkRecord{
			publishedWork("W1", "Oldest", "Elsevier", dateOf(t, "2020-01-01")),
			publishedWork("W2", "Newest", "Elsevier", dateOf(t, "2024-06-01")),
			publishedWork("W3", "Middle", "Elsevier", dateOf(t, "2022-03-01")),
		}, 0)
		require.Len(t, rows, 3)
		assert.Equal(t, "Newest", rows[0].Title)
		assert.Equal(t, "Middle", rows[1].Title)
		assert.Equal(t, "Oldest", rows[2].Title)
	})

	t.Run("missing dates sort last", func(t *testing.T) {
		rows, _ := e.Aggregate([]domain.WorkRecord{
			publishedWork("W1", "Undated", "Elsevier", nil),
			publishedWork("W2", "Dated", "Elsevier", dateOf(t, "2024-06-01")),
		}, 0)
		require.Len(t, rows, 2)
		assert.Equal(t, "Dated", rows[0].Title)
		assert.Equal(t, "Undated", rows[1].Title)
	})

	t.Run("cap keeps most recent works", func(t *testing.T) {
		works := make([]domain.WorkRecord, 0, 5)
		for i := 1; i <= 5; i++ {
			works = append(works, publishedWork(
				fmt.Sprintf("W%d", i),
				fmt.Sprintf("Work %d", i),
				"Elsevier",
				dateOf(t, fmt.Sprintf("2024-01-%02d", i)),
			))
		}

		rows, summary := e.Aggregate(works, 2)
		require.Len(t, rows, 2)
		assert.Equal(t, "Work 5", rows[0].Title)
		assert.Equal(t, "Work 4", rows[1].Title)
		assert.Equal(t, 2, summary.TotalWorks)
	})

	t.Run("input slice left untouched", func(t *testing.T) {
		works := []domain.WorkRecord{
			publishedWork("W1", "Oldest", "Elsevier", dateOf(t, "2020-01-01")),
			publishedWork("W2", "Newest", "Elsevier", dateOf(t, "2024-01-01")),
		}
		e.Aggregate(works, 0)
		assert.Equal(t, "Oldest", works[0].Title)
	})

	t.Run("summary totals add up", func(t *testing.T) {
		reported := publishedWork("W1", "Reported", "Elsevier", dateOf(t, "2024-03-01"))
		reported.APCPaid = &domain.APC{ValueUSD: 1000}

		estimated := publishedWork("W2", "Estimated", "Wiley", dateOf(t, "2024-02-01"))
		estimated.OpenAccess = domain.OpenAccess{IsOA: true, Status: domain.OAStatusGold}

		free := publishedWork("W3", "Closed", "PLOS", dateOf(t, "2024-01-01"))

		rows, summary := e.Aggregate([]domain.WorkRecord{reported, estimated, free}, 0)
		require.Len(t, rows, 3)

		var rowTotal float64
		for _, row := range rows {
			assert.GreaterOrEqual(t, row.Cost, 0.0)
			rowTotal += row.Cost
		}
		assert.Equal(t, rowTotal, summary.TotalCost)
		assert.Equal(t, 3500.0, summary.TotalCost)
		assert.Equal(t, 1000.0, summary.CostByPublisher["elsevier"])
		assert.Equal(t, 2500.0, summary.CostByPublisher["wiley"])
		assert.Equal(t, 0.0, summary.CostByPublisher["plos"])

		// Both costly works are at for-profit publishers; PLOS is not
		// in the for-profit set and carries no cost anyway.
		assert.Equal(t, 2, summary.ForProfitWorks)
		assert.InDelta(t, 66.67, summary.ForProfitPercent, 0.01)
	})

	t.Run("for-profit requires attributed cost", func(t *testing.T) {
		closed := publishedWork("W1", "Closed at Elsevier", "Elsevier", dateOf(t, "2024-01-01"))

		rows, summary := e.Aggregate([]domain.WorkRecord{closed}, 0)
		require.Len(t, rows, 1)
		assert.False(t, rows[0].ForProfit)
		assert.Zero(t, summary.ForProfitWorks)
		assert.Zero(t, summary.ForProfitPercent)
	})
}

func TestEngine_Aggregate_MixedBatch(t *testing.T) {
	e := newTestEngine()

	// One recognizable article, one preprint, one unknown venue, one work
	// with no locations at all. Only the article survives.
	article := publishedWork("W1", "The Article", "Springer Nature Switzerland AG", dateOf(t, "2024-05-01"))
	article.OpenAccess = domain.OpenAccess{IsOA: true, Status: domain.OAStatusHybrid}
	article.DOI = "10.1000/example"

	preprint := publishedWork("W2", "The Preprint", "bioRxiv", dateOf(t, "2024-06-01"))
	unknown := publishedWork("W3", "The Mystery", "Mystery House", dateOf(t, "2024-04-01"))
	bare := domain.WorkRecord{ID: "W4", Title: "No Venue"}

	rows, summary := e.Aggregate([]domain.WorkRecord{article, preprint, unknown, bare}, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "The Article", rows[0].Title)
	assert.Equal(t, "10.1000/example", rows[0].DOI)
	assert.Equal(t, "springer nature", rows[0].Publisher)
	assert.Equal(t, 2800.0, rows[0].Cost)
	assert.True(t, rows[0].ForProfit)

	assert.Equal(t, 1, summary.TotalWorks)
	assert.Equal(t, 2800.0, summary.TotalCost)
	assert.Equal(t, 100.0, summary.ForProfitPercent)
}
