package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Handler exposes user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	admin   func(http.Handler) http.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.admin != nil {
			r.Use(h.admin)
		}
		r.Get("/", h.list)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}
