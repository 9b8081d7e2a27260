// Package snapshot renders the permission table into role-partitioned JSON
// files consumed by the static resolver.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opicamp/opicamp/internal/access"
	"github.com/opicamp/opicamp/internal/menu"
)

// FileName returns the snapshot file for a role.
func FileName(role access.Role) string {
	return string(role) + "-menu.json"
}

// Roles lists the partitions a generation run produces, in write order.
var Roles = []access.Role{access.RoleAdmin, access.RoleUser, access.RoleGuest}

// Store is the read side of the permission table.
type Store interface {
	List(ctx context.Context) ([]menu.Permission, error)
}

// Result reports what a generation run wrote.
type Result struct {
	Files []string `json:"files"`
}

// Generator rebuilds the three role snapshots wholesale on each run.
type Generator struct {
	store Store
	dir   string
}

// NewGenerator constructs a Generator writing into dir.
func NewGenerator(store Store, dir string) *Generator {
	return &Generator{store: store, dir: dir}
}

// Dir returns the target directory snapshots are written to.
func (g *Generator) Dir() string {
	return g.dir
}

// Generate reads the full store and writes one JSON array per role. A store
// read failure aborts before any file is written. Writes are not atomic
// across the three files: a failure midway leaves earlier partitions in
// place, which is acceptable because each partition is consumed on its own.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	perms, err := g.store.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: read permission store: %w", err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("snapshot: create target dir: %w", err)
	}

	result := Result{Files: make([]string, 0, len(Roles))}
	for _, role := range Roles {
		name := FileName(role)
		data, err := json.MarshalIndent(Partition(perms, role), "", "  ")
		if err != nil {
			return result, fmt.Errorf("snapshot: encode %s: %w", name, err)
		}
		data = append(data, '\n')
		if err := os.WriteFile(filepath.Join(g.dir, name), data, 0o644); err != nil {
			return result, fmt.Errorf("snapshot: write %s: %w", name, err)
		}
		result.Files = append(result.Files, name)
	}
	return result, nil
}

// Partition selects the active rows visible to role, keeping store order
// (sort_order ascending).
func Partition(perms []menu.Permission, role access.Role) []menu.Permission {
	out := make([]menu.Permission, 0, len(perms))
	for _, p := range perms {
		if p.AccessibleBy(role) {
			out = append(out, p)
		}
	}
	return out
}
