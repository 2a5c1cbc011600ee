package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/roster-retention/internal/comparison"
	"github.com/jonathan/roster-retention/internal/export"
	"github.com/jonathan/roster-retention/internal/followup"
	"github.com/jonathan/roster-retention/internal/pipeline"
	"github.com/jonathan/roster-retention/internal/types"
)

// ExportBaseName is the file name offered for dropout exports.
const ExportBaseName = "reporte_continuidad"

// comparisonResponse is the summary of a stored comparison
type comparisonResponse struct {
	ID            uuid.UUID        `json:"id"`
	Label         string           `json:"label"`
	EarlierName   string           `json:"earlier_name"`
	CurrentName   string           `json:"current_name"`
	TotalEarlier  int              `json:"total_earlier"`
	TotalCurrent  int              `json:"total_current"`
	RetentionRate int              `json:"retention_rate"`
	Breakdown     types.Breakdown  `json:"breakdown"`
	FollowUp      types.FollowUp   `json:"follow_up"`
	Advisories    []types.Advisory `json:"advisories"`
	CreatedAt     time.Time        `json:"created_at"`
}

// dropoutResponse is a dropout row together with its contact state
type dropoutResponse struct {
	types.StudentRecord
	Contacted bool `json:"contacted"`
}

func summarizeRun(run *types.ComparisonRun) comparisonResponse {
	dropouts := run.Comparison.Dropouts
	advisories := run.Advisories
	if advisories == nil {
		advisories = []types.Advisory{}
	}
	return comparisonResponse{
		ID:            run.ID,
		Label:         run.Label,
		EarlierName:   run.EarlierName,
		CurrentName:   run.CurrentName,
		TotalEarlier:  run.Comparison.TotalEarlier,
		TotalCurrent:  run.Comparison.TotalCurrent,
		RetentionRate: run.Comparison.RetentionRate,
		Breakdown:     comparison.Summarize(dropouts),
		FollowUp:      followup.NewTracker(run.Contacted...).Metrics(len(dropouts)),
		Advisories:    advisories,
		CreatedAt:     run.CreatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUploads reads the earlier and current documents from a multipart form. A missing part
// yields an empty input, which the pipeline reports as missing.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) (earlier, current pipeline.Input, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return earlier, current, &ErrValidation{Field: "body", Message: "expected a multipart form with earlier and current files"}
	}
	if earlier, err = readUpload(r, pipeline.SideEarlier); err != nil {
		return earlier, current, err
	}
	if current, err = readUpload(r, pipeline.SideCurrent); err != nil {
		return earlier, current, err
	}
	return earlier, current, nil
}

func readUpload(r *http.Request, field string) (pipeline.Input, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return pipeline.Input{}, nil
	}
	if err != nil {
		return pipeline.Input{}, &ErrValidation{Field: field, Message: err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	name := header.Filename
	if name == "" {
		name = field
	}
	return pipeline.Input{Name: name, Data: data}, nil
}

// runComparison runs the pipeline and stores the result
func (s *Server) runComparison(ctx context.Context, earlier, current pipeline.Input, onProgress pipeline.ProgressCallback) (*types.ComparisonRun, error) {
	result, err := pipeline.Run(ctx, pipeline.Options{
		Earlier:      earlier,
		Current:      current,
		RowTolerance: s.rowTolerance,
		Opener:       s.opener,
		Logger:       s.logger,
		OnProgress:   onProgress,
	})
	if err != nil {
		return nil, err
	}

	run := result.ToRun()
	if err := s.store.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save comparison: %w", err)
	}
	return run, nil
}

func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	earlier, current, err := s.readUploads(w, r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	run, err := s.runComparison(r.Context(), earlier, current, nil)
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, summarizeRun(run))
}

// handleCreateComparisonStream runs a comparison and reports progress as Server-Sent Events
func (s *Server) handleCreateComparisonStream(w http.ResponseWriter, r *http.Request) {
	earlier, current, err := s.readUploads(w, r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	onProgress := func(event pipeline.ProgressEvent) {
		if err := stream.Send("progress", event); err != nil {
			s.logger.Debug("failed to write progress event", zap.Error(err))
		}
	}

	run, err := s.runComparison(r.Context(), earlier, current, onProgress)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			s.logger.Error("streamed comparison failed", zap.Error(err))
			message = "internal error"
		}
		if err := stream.Fail(status, message); err != nil {
			s.logger.Debug("failed to write error event", zap.Error(err))
		}
		return
	}
	if err := stream.Send("complete", summarizeRun(run)); err != nil {
		s.logger.Debug("failed to write complete event", zap.Error(err))
	}
}

func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.failResponse(w, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	out := make([]comparisonResponse, 0, len(runs))
	for i := range runs {
		out = append(out, summarizeRun(&runs[i]))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"comparisons": out, "count": len(out)})
}

// loadRun resolves the {id} path value to a stored run
func (s *Server) loadRun(r *http.Request) (*types.ComparisonRun, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "invalid comparison id"}
	}
	return s.store.GetRun(r.Context(), id)
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	run, err := s.loadRun(r)
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summarizeRun(run))
}

// dropoutQuery reads and validates the q and shift query parameters
func dropoutQuery(r *http.Request) (types.DropoutQuery, error) {
	q := types.DropoutQuery{
		Search: r.URL.Query().Get("q"),
		Shift:  r.URL.Query().Get("shift"),
	}
	if err := q.Validate(); err != nil {
		return q, &ErrValidation{Field: "query", Message: err.Error()}
	}
	return q.Normalized(), nil
}

// filteredDropouts loads a run and applies the request filters
func (s *Server) filteredDropouts(r *http.Request) ([]types.StudentRecord, *followup.Tracker, error) {
	q, err := dropoutQuery(r)
	if err != nil {
		return nil, nil, err
	}
	run, err := s.loadRun(r)
	if err != nil {
		return nil, nil, err
	}
	return comparison.Filter(run.Comparison.Dropouts, q), followup.NewTracker(run.Contacted...), nil
}

func (s *Server) handleListDropouts(w http.ResponseWriter, r *http.Request) {
	dropouts, tracker, err := s.filteredDropouts(r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	out := make([]dropoutResponse, 0, len(dropouts))
	for _, d := range dropouts {
		out = append(out, dropoutResponse{StudentRecord: d, Contacted: tracker.Contacted(d.ID)})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"dropouts": out, "count": len(out)})
}

func (s *Server) handleToggleContact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, &ErrValidation{Field: "id", Message: "invalid comparison id"})
		return
	}
	studentID := r.PathValue("student_id")

	mu := s.runLock(id)
	mu.Lock()
	defer mu.Unlock()

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.failResponse(w, err)
		return
	}
	dropouts := run.Comparison.Dropouts
	if !slices.ContainsFunc(dropouts, func(d types.StudentRecord) bool { return d.ID == studentID }) {
		s.failResponse(w, &ErrStudentNotFound{StudentID: studentID})
		return
	}

	tracker := followup.NewTracker(run.Contacted...)
	contacted := tracker.Toggle(studentID)
	if err := s.store.SetContacts(r.Context(), id, tracker.IDs()); err != nil {
		s.failResponse(w, fmt.Errorf("failed to update contacts: %w", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ContactToggleResponse{
		StudentID: studentID,
		Contacted: contacted,
		FollowUp:  tracker.Metrics(len(dropouts)),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "text/csv; charset=utf-8", "csv", export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", export.WriteXLSX)
}

// handleExport renders the filtered dropouts into a buffer first so that encoding failures
// still produce an error status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, contentType, ext string, write func(io.Writer, []export.Row) error) {
	dropouts, tracker, err := s.filteredDropouts(r)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, export.Rows(dropouts, tracker)); err != nil {
		s.failResponse(w, fmt.Errorf("failed to write %s export: %w", ext, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, ExportBaseName, ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("failed to send export", zap.Error(err))
	}
}
