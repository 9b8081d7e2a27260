package resolve_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/menu/resolve"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
	_ "github.com/opicamp/opicamp/internal/testing/guard"
)

// newSnapshotSite serves the three pre-partitioned role files the way the
// generator lays them out under /menu/.
func newSnapshotSite(t *testing.T) *httptest.Server {
	t.Helper()
	perms := permissionFixtures()
	mux := http.NewServeMux()
	for _, role := range snapshot.Roles {
		partition := snapshot.Partition(perms, role)
		mux.HandleFunc("GET /menu/"+snapshot.FileName(role), func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(partition)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStaticResolvesFromRoleFile(t *testing.T) {
	srv := newSnapshotSite(t)

	cases := []struct {
		name   string
		status access.SessionStatus
		claims access.Claims
		role   access.Role
		want   map[string]bool
	}{
		{
			name:   "admin file",
			status: access.StatusAuthenticated,
			claims: access.Claims{UserID: "1", Type: "admin"},
			role:   access.RoleAdmin,
			want:   map[string]bool{"home": true, "practice": true, "admin": true},
		},
		{
			name:   "user file",
			status: access.StatusAuthenticated,
			claims: access.Claims{UserID: "2", Type: "user"},
			role:   access.RoleUser,
			want:   map[string]bool{"home": true, "practice": true, "admin": false},
		},
		{
			name:   "guest file",
			status: access.StatusUnauthenticated,
			role:   access.RoleGuest,
			want:   map[string]bool{"home": true, "practice": false, "admin": false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := resolve.NewStatic(srv.Client(), srv.URL)
			r.Refresh(context.Background(), tc.status, tc.claims)
			require.Equal(t, tc.role, r.Role())
			for name, want := range tc.want {
				require.Equal(t, want, r.HasAccess(name), "menu %q", name)
			}
		})
	}
}

func TestStaticLoadingFallsBackToGuestFile(t *testing.T) {
	srv := newSnapshotSite(t)

	r := resolve.NewStatic(srv.Client(), srv.URL)
	r.Refresh(context.Background(), access.StatusLoading, access.Claims{})
	require.Equal(t, access.RoleLoading, r.Role())
	require.True(t, r.HasAccess("home"))
	require.False(t, r.HasAccess("practice"))
}

func TestStaticMissingSnapshotDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := resolve.NewStatic(srv.Client(), srv.URL)
	r.Refresh(context.Background(), access.StatusAuthenticated, access.Claims{UserID: "1", Type: "admin"})
	require.False(t, r.HasAccess("home"))
	require.Empty(t, r.AccessibleMenus())
}

func TestStaticChecksOnlyActiveFlag(t *testing.T) {
	// A hand-edited snapshot may carry rows the generator would have
	// filtered. The resolver trusts the partition and only honors is_active.
	rows := []menu.Permission{
		{ID: 9, MenuName: "stale", SortOrder: 5, IsActive: false, GuestAccess: true},
		{ID: 1, MenuName: "home", SortOrder: 10, IsActive: true},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	r := resolve.NewStatic(srv.Client(), srv.URL)
	r.Refresh(context.Background(), access.StatusUnauthenticated, access.Claims{})
	require.False(t, r.HasAccess("stale"))
	require.True(t, r.HasAccess("home"))

	menus := r.AccessibleMenus()
	require.Len(t, menus, 1)
	require.Equal(t, "home", menus[0].MenuName)
}
