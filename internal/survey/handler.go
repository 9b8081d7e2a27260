package survey

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opicamp/opicamp/internal/platform/httpx"
	"github.com/opicamp/opicamp/internal/shared"
)

// Handler exposes survey endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	admin   func(http.Handler) http.Handler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers survey routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/me", h.latest)
	r.Group(func(r chi.Router) {
		if h.admin != nil {
			r.Use(h.admin)
		}
		r.Get("/", h.list)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in to submit the survey")
		return
	}
	var sub Submission
	if err := httpx.DecodeJSON(r, &sub); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.service.Submit(r.Context(), userID, sub)
	if err != nil {
		h.logger.Error("submit survey", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"survey": res})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "sign in to view your survey")
		return
	}
	res, found, err := h.service.Latest(r.Context(), userID)
	if err != nil {
		h.logger.Error("latest survey", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !found {
		httpx.Error(w, http.StatusNotFound, "no survey submitted yet")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"survey": res})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	responses, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list surveys", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to load surveys")
		return
	}
	if responses == nil {
		responses = []Response{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"surveys": responses})
}

func currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
