package snapshot_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opicamp/opicamp/internal/menu/snapshot"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateEndpointSuccess(t *testing.T) {
	gen := snapshot.NewGenerator(&stubStore{perms: fixtures()}, t.TempDir())
	handler := snapshot.NewHandler(noopLogger(), gen)

	rr := httptest.NewRecorder()
	handler.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/menu-permissions/generate-static", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{
		"success": true,
		"message": "generated 3 menu snapshot files",
		"files": ["admin-menu.json", "user-menu.json", "guest-menu.json"]
	}`, rr.Body.String())
}

func TestGenerateEndpointStoreFailure(t *testing.T) {
	gen := snapshot.NewGenerator(&stubStore{err: errors.New("connection refused")}, t.TempDir())
	handler := snapshot.NewHandler(noopLogger(), gen)

	rr := httptest.NewRecorder()
	handler.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/menu-permissions/generate-static", nil))

	// The body never echoes store internals.
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"error":"failed to generate menu snapshots"}`, rr.Body.String())
}
