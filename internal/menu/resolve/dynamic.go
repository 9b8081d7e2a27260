// Package resolve answers "can role R see menu M?" on behalf of one client
// session, either from the live permission API or from a static snapshot.
// Resolvers hold per-session state and are not safe for concurrent use.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/menu"
)

// Dynamic resolves access from the live permission list endpoint.
type Dynamic struct {
	client  *http.Client
	baseURL string
	role    access.Role
	perms   []menu.Permission
	loaded  bool
}

// NewDynamic constructs a Dynamic resolver against the API at baseURL.
func NewDynamic(client *http.Client, baseURL string) *Dynamic {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dynamic{client: client, baseURL: baseURL, role: access.RoleLoading}
}

type listEnvelope struct {
	MenuPermissions []menu.Permission `json:"menuPermissions"`
}

// Refresh reclassifies the role and refetches the permission list. It is
// called whenever the session status changes. While the session is still
// loading nothing is fetched and every access check answers false.
func (d *Dynamic) Refresh(ctx context.Context, status access.SessionStatus, claims access.Claims) error {
	d.role = access.Classify(status, claims)
	if d.role == access.RoleLoading {
		d.perms = nil
		d.loaded = false
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/menu-permissions", nil)
	if err != nil {
		return err
	}
	res, err := d.client.Do(req)
	if err != nil {
		d.perms = nil
		d.loaded = false
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		d.perms = nil
		d.loaded = false
		return fmt.Errorf("resolve: permission list returned %d", res.StatusCode)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		d.perms = nil
		d.loaded = false
		return err
	}
	d.perms = envelope.MenuPermissions
	d.loaded = true
	return nil
}

// Role returns the role resolved by the last Refresh.
func (d *Dynamic) Role() access.Role {
	return d.role
}

// HasAccess reports whether an active entry with the given internal name is
// visible to the resolved role. False until the list has loaded.
func (d *Dynamic) HasAccess(menuName string) bool {
	if !d.loaded {
		return false
	}
	for _, p := range d.perms {
		if p.MenuName == menuName {
			return p.AccessibleBy(d.role)
		}
	}
	return false
}

// AccessibleMenus returns the active entries visible to the resolved role,
// sorted by sort order.
func (d *Dynamic) AccessibleMenus() []menu.Permission {
	out := make([]menu.Permission, 0, len(d.perms))
	for _, p := range d.perms {
		if p.AccessibleBy(d.role) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}
