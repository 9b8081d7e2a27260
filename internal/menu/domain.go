// Package menu holds the navigation permission table and its CRUD surface.
package menu

import (
	"time"

	"github.com/opicamp/opicamp/internal/access"
)

// Permission is one navigation entry with per-role visibility flags.
type Permission struct {
	ID          int64     `json:"id"`
	MenuName    string    `json:"menu_name"`
	MenuLabel   string    `json:"menu_label"`
	MenuPath    string    `json:"menu_path"`
	IconName    string    `json:"icon_name"`
	IsActive    bool      `json:"is_active"`
	AdminAccess bool      `json:"admin_access"`
	UserAccess  bool      `json:"user_access"`
	GuestAccess bool      `json:"guest_access"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccessibleBy reports whether the entry is visible to the given role.
// Inactive entries are never visible, regardless of flags.
func (p Permission) AccessibleBy(role access.Role) bool {
	if !p.IsActive {
		return false
	}
	switch role {
	case access.RoleAdmin:
		return p.AdminAccess
	case access.RoleUser:
		return p.UserAccess
	case access.RoleGuest:
		return p.GuestAccess
	default:
		return false
	}
}

// Fields carries the writable attributes for create operations.
type Fields struct {
	MenuName    string `json:"menu_name" validate:"required"`
	MenuLabel   string `json:"menu_label" validate:"required"`
	MenuPath    string `json:"menu_path" validate:"required"`
	IconName    string `json:"icon_name"`
	IsActive    *bool  `json:"is_active"`
	AdminAccess bool   `json:"admin_access"`
	UserAccess  bool   `json:"user_access"`
	GuestAccess bool   `json:"guest_access"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
}

// Patch carries the writable attributes for updates. A nil field keeps the
// stored value, so a partial payload never resets flags it does not mention.
type Patch struct {
	MenuName    *string `json:"menu_name"`
	MenuLabel   *string `json:"menu_label"`
	MenuPath    *string `json:"menu_path"`
	IconName    *string `json:"icon_name"`
	IsActive    *bool   `json:"is_active"`
	AdminAccess *bool   `json:"admin_access"`
	UserAccess  *bool   `json:"user_access"`
	GuestAccess *bool   `json:"guest_access"`
	SortOrder   *int    `json:"sort_order"`
}

// Apply overlays the set patch fields onto base.
func (p Patch) Apply(base *Fields) {
	if p.MenuName != nil {
		base.MenuName = *p.MenuName
	}
	if p.MenuLabel != nil {
		base.MenuLabel = *p.MenuLabel
	}
	if p.MenuPath != nil {
		base.MenuPath = *p.MenuPath
	}
	if p.IconName != nil {
		base.IconName = *p.IconName
	}
	if p.IsActive != nil {
		base.IsActive = p.IsActive
	}
	if p.AdminAccess != nil {
		base.AdminAccess = *p.AdminAccess
	}
	if p.UserAccess != nil {
		base.UserAccess = *p.UserAccess
	}
	if p.GuestAccess != nil {
		base.GuestAccess = *p.GuestAccess
	}
	if p.SortOrder != nil {
		base.SortOrder = *p.SortOrder
	}
}
