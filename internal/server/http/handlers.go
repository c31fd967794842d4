package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pubcost/publication-cost-service/internal/domain"
	"github.com/pubcost/publication-cost-service/internal/observability"
	"github.com/pubcost/publication-cost-service/internal/openalex"
	"github.com/pubcost/publication-cost-service/internal/report"
)

// Query validation constants.
const (
	minSearchLength = 2
	maxSearchLength = 200
)

// lookupAuthors handles GET /authors. Exactly one of the "search" or
// "orcid" query parameters selects the lookup mode.
func (s *Server) lookupAuthors(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	orcid := strings.TrimSpace(r.URL.Query().Get("orcid"))

	switch {
	case search != "" && orcid != "":
		writeError(w, http.StatusBadRequest, "search and orcid are mutually exclusive")
	case orcid != "":
		s.findAuthorByORCID(w, r, orcid)
	case search != "":
		s.searchAuthors(w, r, search)
	default:
		writeError(w, http.StatusBadRequest, "search or orcid query parameter is required")
	}
}

func (s *Server) searchAuthors(w http.ResponseWriter, r *http.Request, search string) {
	if len(search) < minSearchLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("search must be at least %d characters", minSearchLength))
		return
	}
	if len(search) > maxSearchLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("search must be at most %d characters", maxSearchLength))
		return
	}

	profiles, err := s.source.SearchAuthors(r.Context(), search)
	if err != nil {
		s.writeSourceError(w, err, "author search failed")
		return
	}

	writeJSON(w, http.StatusOK, listAuthorsResponse{
		Authors:    profilesToResponses(profiles),
		TotalCount: len(profiles),
	})
}

func (s *Server) findAuthorByORCID(w http.ResponseWriter, r *http.Request, orcid string) {
	profile, err := s.source.FindAuthorByORCID(r.Context(), orcid)
	if err != nil {
		s.writeSourceError(w, err, "ORCID lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, listAuthorsResponse{
		Authors:    []authorResponse{profileToResponse(*profile)},
		TotalCount: 1,
	})
}

// getAuthor handles GET /authors/{authorID}.
func (s *Server) getAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := openalex.CleanAuthorID(chi.URLParam(r, "authorID"))
	if authorID == "" {
		writeError(w, http.StatusBadRequest, "author ID is required")
		return
	}

	profile, err := s.source.GetAuthor(r.Context(), authorID)
	if err != nil {
		s.writeSourceError(w, err, "author fetch failed")
		return
	}

	writeJSON(w, http.StatusOK, profileToResponse(*profile))
}

// analyzeAuthor handles GET /authors/{authorID}/analysis.
func (s *Server) analyzeAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := openalex.CleanAuthorID(chi.URLParam(r, "authorID"))
	if authorID == "" {
		writeError(w, http.StatusBadRequest, "author ID is required")
		return
	}
	s.runAnalysis(w, r, openalex.Subject{Kind: openalex.SubjectAuthor, ID: authorID})
}

// analyzeInstitution handles GET /institutions/{institutionID}/analysis.
func (s *Server) analyzeInstitution(w http.ResponseWriter, r *http.Request) {
	id := openalex.CleanInstitutionID(chi.URLParam(r, "institutionID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "institution ID is required")
		return
	}
	s.runAnalysis(w, r, openalex.Subject{Kind: openalex.SubjectInstitution, ID: id})
}

// analyzeFunder handles GET /funders/{funderID}/analysis.
func (s *Server) analyzeFunder(w http.ResponseWriter, r *http.Request) {
	id := openalex.CleanFunderID(chi.URLParam(r, "funderID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "funder ID is required")
		return
	}
	s.runAnalysis(w, r, openalex.Subject{Kind: openalex.SubjectFunder, ID: id})
}

// exportAuthorAnalysis handles GET /authors/{authorID}/analysis/export,
// streaming the per-work rows as CSV.
func (s *Server) exportAuthorAnalysis(w http.ResponseWriter, r *http.Request) {
	authorID := openalex.CleanAuthorID(chi.URLParam(r, "authorID"))
	if authorID == "" {
		writeError(w, http.StatusBadRequest, "author ID is required")
		return
	}
	subject := openalex.Subject{Kind: openalex.SubjectAuthor, ID: authorID}

	maxWorks, err := s.maxWorksParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, _, err := s.analyze(w, r, subject, maxWorks)
	if err != nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "publication_costs_"+authorID+".csv"))
	if err := report.WriteCSV(w, rows); err != nil {
		// Headers already sent; log and give up on the response.
		s.logger.Error().Err(err).Msg("CSV export failed mid-stream")
	}
}

// runAnalysis fetches, analyzes and renders the JSON analysis for a subject.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, subject openalex.Subject) {
	maxWorks, err := s.maxWorksParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID := uuid.NewString()
	rows, summary, err := s.analyzeWithRunID(w, r, subject, maxWorks, runID)
	if err != nil {
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		RunID:       runID,
		SubjectKind: string(subject.Kind),
		SubjectID:   subject.ID,
		Works:       rowsToResponses(rows),
		Summary:     summaryToResponse(summary),
		Chart:       report.BuildChart(summary.CostByPublisher, s.chartTopN),
	})
}

// analyze runs one analysis pass with a fresh run ID. Errors have already
// been written to w when a non-nil error comes back.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, subject openalex.Subject, maxWorks int) ([]domain.ResolvedWork, domain.AggregateSummary, error) {
	return s.analyzeWithRunID(w, r, subject, maxWorks, uuid.NewString())
}

func (s *Server) analyzeWithRunID(w http.ResponseWriter, r *http.Request, subject openalex.Subject, maxWorks int, runID string) ([]domain.ResolvedWork, domain.AggregateSummary, error) {
	ctx := observability.ContextWithRunID(r.Context(), runID)
	logger := observability.WithAnalysisContext(s.logger, runID, string(subject.Kind), subject.ID)

	if s.metrics != nil {
		s.metrics.AnalysesStarted.Inc()
	}
	start := time.Now()

	works, err := s.source.FetchWorks(ctx, subject, maxWorks)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AnalysesFailed.Inc()
		}
		logger.Error().Err(err).Msg("fetching works failed")
		s.writeSourceError(w, err, "fetching works failed")
		return nil, domain.AggregateSummary{}, err
	}

	rows, summary := s.engine.Aggregate(works, maxWorks)

	if s.metrics != nil {
		s.metrics.AnalysesCompleted.Inc()
		s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}
	logger.Info().
		Int("works_fetched", len(works)).
		Int("works_analyzed", summary.TotalWorks).
		Float64("total_cost_usd", summary.TotalCost).
		Msg("analysis completed")

	return rows, summary, nil
}

// maxWorksParam reads the optional "max" query parameter, bounded by the
// configured cap.
func (s *Server) maxWorksParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("max")
	if raw == "" {
		return s.maxWorks, nil
	}

	max, err := strconv.Atoi(raw)
	if err != nil || max <= 0 {
		return 0, fmt.Errorf("max must be a positive integer")
	}
	if max > s.maxWorks {
		max = s.maxWorks
	}
	return max, nil
}

// writeSourceError maps metadata source failures to HTTP status codes.
func (s *Server) writeSourceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "metadata source rate limit exceeded")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		s.logger.Error().Err(err).Msg(message)
		writeError(w, http.StatusBadGateway, message)
	}
}
