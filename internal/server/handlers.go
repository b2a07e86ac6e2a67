package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/common"
	"github.com/fleetdesk/booking-intake/internal/pipeline"
	"github.com/fleetdesk/booking-intake/internal/repository"
)

// maxIntakeBody caps request bodies; OCR dumps run large but not unbounded.
const maxIntakeBody = 4 << 20

type runResponse struct {
	Run     *repository.Run  `json:"run"`
	Records []booking.Record `json:"records"`
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	var content pipeline.IntakeContent
	body := http.MaxBytesReader(w, r.Body, maxIntakeBody)
	if err := json.NewDecoder(body).Decode(&content); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if content.Text == "" && len(content.Tables) == 0 && len(content.Cells) == 0 {
		respondError(w, http.StatusBadRequest, "either text, tables, or cells is required")
		return
	}

	ctx := common.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	result := s.orchestrator.Run(ctx, content)

	if s.runs != nil {
		if err := s.runs.SaveResult(r.Context(), content.SourceType, result); err != nil {
			// the caller still gets the result; persistence is best effort here
			s.logger.Error("server.intake.save_failed", "run_id", result.RunID, "error", err)
		}
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run persistence is disabled")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("server.get_run.failed", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	records, err := s.runs.GetRecords(r.Context(), id)
	if err != nil {
		s.logger.Error("server.get_run.records_failed", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	respondJSON(w, http.StatusOK, runResponse{Run: run, Records: records})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "run persistence is disabled")
		return
	}
	runs, err := s.runs.ListRuns(r.Context(), 50)
	if err != nil {
		s.logger.Error("server.list_runs.failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondError(w, http.StatusServiceUnavailable, "export is disabled")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	raw, err := s.exporter.ExportRunXLSX(r.Context(), id)
	if err != nil {
		s.logger.Error("server.export.failed", "run_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "bookings-"+id.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		respondJSON(w, http.StatusOK, pipeline.RunStats{})
		return
	}
	respondJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "backend unhealthy: "+err.Error())
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
