package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/export"
	"gastos/internal/log"
)

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r.URL.Query(), "user_id")
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	list, err := s.summaries.ListSummaries(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, newSummaryResponse))
}

// handleUpsertSummary recomputes and stores the summary for the requested
// user and month. Calling it again replaces the same row.
func (s *Server) handleUpsertSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	sum, err := s.summaries.UpsertSummary(r.Context(), req.UserID, core.Period{Year: req.Year, Month: req.Month})
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

func (s *Server) handlePreviewSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := queryID(q, "user_id")
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	p, err := parsePeriod(q, s.now())
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}

	ctx, cancel := s.withStoreTimeout(r.Context())
	defer cancel()

	agg, err := s.summaries.Preview(ctx, userID, p)
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{
		UserID:            userID,
		Year:              p.Year,
		Month:             p.Month,
		aggregateResponse: newAggregateResponse(agg),
	})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	sum, err := s.summaries.GetSummary(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/summaries", s.summaries.DeleteSummary)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "csv", export.ContentTypeCSV, export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

// handleExport renders into a buffer first so a failure can still produce a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(w io.Writer, list []core.Summary) error) {
	userID, err := queryID(r.URL.Query(), "user_id")
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}
	list, err := s.summaries.ListSummaries(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "/summaries")
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, list); err != nil {
		writeError(w, r, fmt.Errorf("export %s: %w", ext, err), "/summaries")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Summaries exported",
		log.FieldOperation, log.OpExport,
		"format", ext,
		"rows", len(list))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"resumos_%s.%s\"", s.now().Format("20060102"), ext))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err, "/dashboard")
		return
	}

	ctx, cancel := s.withStoreTimeout(r.Context())
	defer cancel()

	d, err := s.summaries.Dashboard(ctx, p)
	if err != nil {
		writeError(w, r, err, "/dashboard")
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}
