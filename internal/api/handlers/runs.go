package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// RunsHandler handles import run-related HTTP requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo),
	}
}

// List handles GET /api/runs - returns recent import runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 20)

	runs, err := h.repo.ListImportRuns(limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.ImportRunListResponse{
		Runs:  make([]dto.ImportRunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toImportRunResponse(run))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/runs/{id} - returns a single import run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid run ID"))
		return
	}

	run, err := h.repo.GetImportRun(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("import run"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toImportRunResponse(*run))
}

// toImportRunResponse converts a storage ImportRun to an API response.
func toImportRunResponse(run storage.ImportRun) dto.ImportRunResponse {
	return dto.ImportRunResponse{
		ID:                 run.ID,
		Providers:          run.Providers,
		StartedAt:          run.StartedAt,
		CompletedAt:        run.CompletedAt,
		LookbackDays:       run.LookbackDays,
		DryRun:             run.DryRun,
		RecordsFetched:     run.RecordsFetched,
		RecordsSkipped:     run.RecordsSkipped,
		SuggestionsCreated: run.SuggestionsCreated,
		TransfersMatched:   run.TransfersMatched,
		Errors:             run.Errors,
		Status:             run.Status,
	}
}
