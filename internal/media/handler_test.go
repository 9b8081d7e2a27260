package media_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/opicamp/opicamp/internal/media"
	"github.com/opicamp/opicamp/internal/shared"
)

type stubEnqueuer struct {
	taskID string
	calls  int
}

func (s *stubEnqueuer) EnqueueMediaCleanup(ctx context.Context) (string, error) {
	s.calls++
	return s.taskID, nil
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMediaRouter(t *testing.T, enqueuer media.CleanupEnqueuer) (chi.Router, *media.Handler) {
	t.Helper()
	handler := media.NewHandler(
		noopLogger(),
		media.NewSigner("mediasecret"),
		media.NewStore(filepath.Join(t.TempDir(), "objects")),
		15*time.Minute,
		enqueuer,
		nil,
	)
	r := chi.NewRouter()
	r.Route("/api/media", handler.MountAPIRoutes)
	r.Route("/media/objects", handler.MountObjectRoutes)
	return r, handler
}

func authedContext(t *testing.T) context.Context {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("7", "user")
	return shared.ContextWithSession(context.Background(), sess)
}

type signResponse struct {
	Key         string `json:"key"`
	UploadURL   string `json:"uploadUrl"`
	DownloadURL string `json:"downloadUrl"`
}

func requestSignedURLs(t *testing.T, router chi.Router) signResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/media/sign",
		strings.NewReader(`{"filename":"answer-01.webm"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(authedContext(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body signResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, media.ValidKey(body.Key))
	return body
}

func TestSignedUploadDownloadRoundTrip(t *testing.T) {
	router, _ := newMediaRouter(t, nil)
	urls := requestSignedURLs(t, router)

	upload := httptest.NewRequest(http.MethodPut, urls.UploadURL, strings.NewReader("recording"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, upload)
	require.Equal(t, http.StatusCreated, rr.Code)

	download := httptest.NewRequest(http.MethodGet, urls.DownloadURL, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, download)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "recording", rr.Body.String())
}

func TestSignRequiresSession(t *testing.T) {
	router, _ := newMediaRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/media/sign",
		strings.NewReader(`{"filename":"answer.webm"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSignRejectsUnsupportedFormat(t *testing.T) {
	router, _ := newMediaRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/media/sign",
		strings.NewReader(`{"filename":"answer.txt"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(authedContext(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadRejectsTamperedSignature(t *testing.T) {
	router, _ := newMediaRouter(t, nil)
	urls := requestSignedURLs(t, router)

	u, err := url.Parse(urls.UploadURL)
	require.NoError(t, err)
	q := u.Query()
	q.Set("sig", q.Get("sig")+"x")
	u.RawQuery = q.Encode()

	req := httptest.NewRequest(http.MethodPut, u.String(), strings.NewReader("recording"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.JSONEq(t, `{"error":"invalid signature"}`, rr.Body.String())
}

func TestUploadURLNotValidForDownload(t *testing.T) {
	router, _ := newMediaRouter(t, nil)
	urls := requestSignedURLs(t, router)

	req := httptest.NewRequest(http.MethodGet, urls.UploadURL, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUploadRejectsOversizeBody(t *testing.T) {
	router, handler := newMediaRouter(t, nil)
	handler.WithUploadLimit(16)
	urls := requestSignedURLs(t, router)

	req := httptest.NewRequest(http.MethodPut, urls.UploadURL, strings.NewReader(strings.Repeat("a", 64)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.JSONEq(t, `{"error":"recording exceeds the upload size limit"}`, rr.Body.String())
}

func TestExpiredURLRejected(t *testing.T) {
	router, handler := newMediaRouter(t, nil)
	urls := requestSignedURLs(t, router)

	handler.WithNow(func() time.Time { return time.Now().Add(time.Hour) })

	req := httptest.NewRequest(http.MethodPut, urls.UploadURL, strings.NewReader("recording"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.JSONEq(t, `{"error":"signed url expired"}`, rr.Body.String())
}

func TestCleanupEnqueues(t *testing.T) {
	enqueuer := &stubEnqueuer{taskID: "task-123"}
	router, _ := newMediaRouter(t, enqueuer)

	req := httptest.NewRequest(http.MethodPost, "/api/media/cleanup", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, 1, enqueuer.calls)
	require.JSONEq(t, `{"success":true,"taskId":"task-123"}`, rr.Body.String())
}
