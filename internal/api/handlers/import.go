package handlers

import (
	"context"
	"net/http"

	"github.com/pennywise-app/pennywise-backend/internal/api/dto"
	"github.com/pennywise-app/pennywise-backend/internal/application/importer"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/storage"
)

// ImportRunner runs one import cycle. Implemented by importer.Orchestrator.
type ImportRunner interface {
	Run(ctx context.Context, opts importer.Options) (*importer.Result, error)
}

// ImportHandler handles import trigger HTTP requests.
type ImportHandler struct {
	*Base
	runner ImportRunner
}

// NewImportHandler creates a new import handler.
func NewImportHandler(repo storage.Repository, runner ImportRunner) *ImportHandler {
	return &ImportHandler{
		Base:   NewBase(repo),
		runner: runner,
	}
}

// Start handles POST /api/import - runs an import synchronously and returns
// the completed run. Imports over a lookback window finish in seconds, so
// there is no job queue here.
func (h *ImportHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartImportRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid request body"))
			return
		}
	}

	result, err := h.runner.Run(r.Context(), importer.Options{
		DryRun:       req.DryRun,
		LookbackDays: req.LookbackDays,
		Provider:     req.Provider,
	})
	if err != nil {
		if result == nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
			return
		}
		// The run started but failed partway; surface the recorded run.
	}

	run, repoErr := h.repo.GetImportRun(result.RunID)
	if repoErr != nil {
		h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(w, http.StatusOK, toImportRunResponse(*run))
}
