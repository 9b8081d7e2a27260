package menu

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Handler wires the menu permission REST endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	admin   func(http.Handler) http.Handler
}

// NewHandler constructs a Handler. The admin middleware gates mutations;
// the list stays open because every role's resolver reads it.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers menu permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Group(func(r chi.Router) {
		if h.admin != nil {
			r.Use(h.admin)
		}
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list menu permissions", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to load menu permissions")
		return
	}
	if perms == nil {
		perms = []Permission{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menuPermissions": perms})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var fields Fields
	if err := httpx.DecodeJSON(r, &fields); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	perm, err := h.service.Create(r.Context(), fields)
	if err != nil {
		h.logger.Error("create menu permission", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"menuPermission": perm})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid menu permission id")
		return
	}
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	perm, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.logger.Error("update menu permission", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menuPermission": perm})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid menu permission id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete menu permission", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
