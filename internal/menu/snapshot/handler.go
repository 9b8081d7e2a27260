package snapshot

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Handler exposes on-demand snapshot generation.
type Handler struct {
	logger    *slog.Logger
	generator *Generator
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, generator *Generator) *Handler {
	return &Handler{logger: logger, generator: generator}
}

// Generate handles POST /api/menu-permissions/generate-static.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.Generate(r.Context())
	if err != nil {
		h.logger.Error("generate menu snapshots", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to generate menu snapshots")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("generated %d menu snapshot files", len(result.Files)),
		"files":   result.Files,
	})
}
