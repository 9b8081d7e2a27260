package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/platform/httpx"
	"github.com/opicamp/opicamp/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Error(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10), user.Type)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user": sessionUser{
			ID:    strconv.FormatInt(user.ID, 10),
			Email: user.Email,
			Name:  user.Name,
			Type:  user.Type,
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleSession reports the authentication status the client resolvers key
// their refreshes on, plus the CSRF token mutating calls must echo back.
// Pending flash notices (stored by the guard on denial redirects) are
// delivered and consumed here.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	status, claims := access.StatusFromSession(sess)

	var csrfToken string
	var notices []shared.FlashMessage
	if sess != nil {
		csrfToken, _ = h.csrfManager.EnsureToken(r.Context(), sess)
		for {
			msg := sess.PopFlash()
			if msg == nil {
				break
			}
			notices = append(notices, *msg)
		}
	}

	body := map[string]any{
		"status":    string(status),
		"csrfToken": csrfToken,
	}
	if status == access.StatusAuthenticated {
		body["user"] = map[string]string{"id": claims.UserID, "type": claims.Type}
	}
	if len(notices) > 0 {
		body["notifications"] = notices
	}
	httpx.JSON(w, http.StatusOK, body)
}
