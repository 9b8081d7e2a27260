package resolve

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/menu/snapshot"
)

// Static resolves access from the pre-generated role snapshot files. Any
// fetch failure degrades to an empty permission list instead of surfacing an
// error: a missing snapshot must never break the caller.
type Static struct {
	client  *http.Client
	baseURL string
	role    access.Role
	perms   []menu.Permission
}

// NewStatic constructs a Static resolver against the site at baseURL.
func NewStatic(client *http.Client, baseURL string) *Static {
	if client == nil {
		client = http.DefaultClient
	}
	return &Static{client: client, baseURL: baseURL, role: access.RoleLoading}
}

// Refresh reclassifies the role and fetches the matching snapshot file.
// A still-loading session reads the guest file.
func (s *Static) Refresh(ctx context.Context, status access.SessionStatus, claims access.Claims) {
	s.role = access.Classify(status, claims)
	s.perms = s.fetch(ctx, snapshotRole(s.role))
}

func snapshotRole(role access.Role) access.Role {
	if role == access.RoleLoading {
		return access.RoleGuest
	}
	return role
}

func (s *Static) fetch(ctx context.Context, role access.Role) []menu.Permission {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/menu/"+snapshot.FileName(role), nil)
	if err != nil {
		return nil
	}
	res, err := s.client.Do(req)
	if err != nil {
		return nil
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil
	}
	var perms []menu.Permission
	if err := json.NewDecoder(res.Body).Decode(&perms); err != nil {
		return nil
	}
	return perms
}

// Role returns the role resolved by the last Refresh.
func (s *Static) Role() access.Role {
	return s.role
}

// HasAccess checks only the active flag: the snapshot is already filtered
// for the role, so no per-role flag check remains.
func (s *Static) HasAccess(menuName string) bool {
	for _, p := range s.perms {
		if p.MenuName == menuName {
			return p.IsActive
		}
	}
	return false
}

// AccessibleMenus returns the active subset sorted by sort order.
func (s *Static) AccessibleMenus() []menu.Permission {
	out := make([]menu.Permission, 0, len(s.perms))
	for _, p := range s.perms {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}
