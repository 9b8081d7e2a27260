package media

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opicamp/opicamp/internal/platform/httpx"
	"github.com/opicamp/opicamp/internal/shared"
)

// maxUploadBytes caps a single recording upload.
const maxUploadBytes = 50 << 20

var allowedExtensions = map[string]bool{
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
}

// CleanupEnqueuer schedules a retention sweep on the background queue.
type CleanupEnqueuer interface {
	EnqueueMediaCleanup(ctx context.Context) (string, error)
}

// Handler exposes signed-URL issuance and the object endpoints they target.
type Handler struct {
	logger   *slog.Logger
	signer   *Signer
	store    *Store
	urlTTL   time.Duration
	enqueuer CleanupEnqueuer
	admin    func(http.Handler) http.Handler
	now      func() time.Time
	maxBytes int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, signer *Signer, store *Store, urlTTL time.Duration, enqueuer CleanupEnqueuer, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:   logger,
		signer:   signer,
		store:    store,
		urlTTL:   urlTTL,
		enqueuer: enqueuer,
		admin:    admin,
		now:      time.Now,
		maxBytes: maxUploadBytes,
	}
}

// WithNow overrides the clock, for tests.
func (h *Handler) WithNow(now func() time.Time) {
	h.now = now
}

// WithUploadLimit overrides the upload size cap, for tests.
func (h *Handler) WithUploadLimit(n int64) {
	h.maxBytes = n
}

// MountAPIRoutes registers the authenticated API surface.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Post("/sign", h.sign)
	r.Group(func(r chi.Router) {
		if h.admin != nil {
			r.Use(h.admin)
		}
		r.Post("/cleanup", h.cleanup)
	})
}

// MountObjectRoutes registers the signed upload/download endpoints. These
// carry their authorization in the signature, not the session.
func (h *Handler) MountObjectRoutes(r chi.Router) {
	r.Put("/{key}", h.upload)
	r.Get("/{key}", h.download)
}

type signRequest struct {
	Filename string `json:"filename"`
}

func (h *Handler) sign(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Error(w, http.StatusUnauthorized, "sign in to upload recordings")
		return
	}

	var req signRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedExtensions[ext] {
		httpx.Error(w, http.StatusBadRequest, "unsupported recording format")
		return
	}

	key := uuid.NewString() + ext
	expires := h.now().Add(h.urlTTL)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"key":         key,
		"uploadUrl":   h.signedURL(http.MethodPut, key, expires),
		"downloadUrl": h.signedURL(http.MethodGet, key, expires),
		"expiresAt":   expires.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) signedURL(method, key string, expires time.Time) string {
	sig := h.signer.Sign(method, key, expires)
	return "/media/objects/" + key + "?exp=" + strconv.FormatInt(expires.Unix(), 10) + "&sig=" + sig
}

func (h *Handler) verifyRequest(r *http.Request, method, key string) error {
	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	return h.signer.Verify(method, key, time.Unix(exp, 0), r.URL.Query().Get("sig"), h.now())
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.verifyRequest(r, http.MethodPut, key); err != nil {
		h.respondSignatureError(w, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	size, err := h.store.Save(key, body)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, "recording exceeds the upload size limit")
			return
		}
		h.logger.Error("save recording", slog.String("key", key), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to store recording")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"success": true, "key": key, "size": size})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.verifyRequest(r, http.MethodGet, key); err != nil {
		h.respondSignatureError(w, err)
		return
	}
	f, err := h.store.Open(key)
	if err != nil {
		if errors.Is(err, ErrInvalidKey) {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		httpx.Error(w, http.StatusNotFound, "recording not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to read recording")
		return
	}
	http.ServeContent(w, r, key, info.ModTime(), f)
}

func (h *Handler) respondSignatureError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrURLExpired) {
		httpx.Error(w, http.StatusForbidden, "signed url expired")
		return
	}
	httpx.Error(w, http.StatusForbidden, "invalid signature")
}

func (h *Handler) cleanup(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "cleanup queue not configured")
		return
	}
	taskID, err := h.enqueuer.EnqueueMediaCleanup(r.Context())
	if err != nil {
		h.logger.Error("enqueue media cleanup", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "failed to enqueue cleanup")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"success": true, "taskId": taskID})
}
