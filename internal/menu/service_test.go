package menu_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opicamp/opicamp/internal/menu"
	"github.com/opicamp/opicamp/internal/platform/httpx"
	_ "github.com/opicamp/opicamp/internal/testing/guard"
)

type stubRepo struct {
	perms   []menu.Permission
	listErr error
	created menu.Permission
	updated menu.Permission
	delErr  error
	lastID  int64
	last    menu.Fields
}

func (s *stubRepo) List(ctx context.Context) ([]menu.Permission, error) {
	return s.perms, s.listErr
}

func (s *stubRepo) Get(ctx context.Context, id int64) (menu.Permission, error) {
	for _, p := range s.perms {
		if p.ID == id {
			return p, nil
		}
	}
	return menu.Permission{}, httpx.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, fields menu.Fields) (menu.Permission, error) {
	s.last = fields
	return s.created, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, fields menu.Fields) (menu.Permission, error) {
	s.lastID = id
	s.last = fields
	if s.updated.ID == 0 {
		return menu.Permission{}, httpx.ErrNotFound
	}
	return s.updated, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	s.lastID = id
	return s.delErr
}

func boolPtr(b bool) *bool { return &b }

func intPtr(n int) *int { return &n }

func validFields() menu.Fields {
	return menu.Fields{
		MenuName:   "practice",
		MenuLabel:  "Practice Test",
		MenuPath:   "/practice",
		IconName:   "mic",
		UserAccess: true,
		SortOrder:  20,
	}
}

func TestCreateRejectsMissingName(t *testing.T) {
	svc := menu.NewService(&stubRepo{})
	fields := validFields()
	fields.MenuName = "   "
	_, err := svc.Create(context.Background(), fields)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateTrimsFields(t *testing.T) {
	repo := &stubRepo{created: menu.Permission{ID: 1, MenuName: "practice"}}
	svc := menu.NewService(repo)
	fields := validFields()
	fields.MenuName = "  practice  "
	fields.MenuLabel = " Practice Test "

	_, err := svc.Create(context.Background(), fields)
	require.NoError(t, err)
	require.Equal(t, "practice", repo.last.MenuName)
	require.Equal(t, "Practice Test", repo.last.MenuLabel)
}

func TestCreateRejectsNegativeSortOrder(t *testing.T) {
	svc := menu.NewService(&stubRepo{})
	fields := validFields()
	fields.SortOrder = -1
	_, err := svc.Create(context.Background(), fields)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRejectsInvalidID(t *testing.T) {
	svc := menu.NewService(&stubRepo{})
	_, err := svc.Update(context.Background(), 0, menu.Patch{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateSurfacesNotFound(t *testing.T) {
	svc := menu.NewService(&stubRepo{})
	_, err := svc.Update(context.Background(), 42, menu.Patch{})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdatePartialPatchKeepsStoredFields(t *testing.T) {
	repo := &stubRepo{
		perms: []menu.Permission{{
			ID:         3,
			MenuName:   "practice",
			MenuLabel:  "Practice Test",
			MenuPath:   "/practice",
			IsActive:   false,
			UserAccess: true,
			SortOrder:  20,
		}},
		updated: menu.Permission{ID: 3},
	}
	svc := menu.NewService(repo)

	_, err := svc.Update(context.Background(), 3, menu.Patch{SortOrder: intPtr(5)})
	require.NoError(t, err)
	require.Equal(t, "practice", repo.last.MenuName)
	require.Equal(t, "Practice Test", repo.last.MenuLabel)
	require.Equal(t, 5, repo.last.SortOrder)
	require.True(t, repo.last.UserAccess)
	// An omitted is_active keeps the stored value: an inactive row must not
	// come back to life because of an unrelated edit.
	require.NotNil(t, repo.last.IsActive)
	require.False(t, *repo.last.IsActive)
}

func TestUpdateValidatesMergedRow(t *testing.T) {
	repo := &stubRepo{
		perms:   []menu.Permission{{ID: 3, MenuName: "practice", MenuLabel: "Practice Test", MenuPath: "/practice", IsActive: true}},
		updated: menu.Permission{ID: 3},
	}
	svc := menu.NewService(repo)

	blank := "   "
	_, err := svc.Update(context.Background(), 3, menu.Patch{MenuName: &blank})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteSurfacesRepositoryError(t *testing.T) {
	repo := &stubRepo{delErr: errors.New("connection refused")}
	svc := menu.NewService(repo)
	err := svc.Delete(context.Background(), 3)
	require.Error(t, err)
	require.Equal(t, int64(3), repo.lastID)
}

func TestInactiveDefaultsToActive(t *testing.T) {
	repo := &stubRepo{created: menu.Permission{ID: 1}}
	svc := menu.NewService(repo)
	fields := validFields()
	fields.IsActive = nil
	_, err := svc.Create(context.Background(), fields)
	require.NoError(t, err)
	require.Nil(t, repo.last.IsActive)

	fields.IsActive = boolPtr(false)
	_, err = svc.Create(context.Background(), fields)
	require.NoError(t, err)
	require.False(t, *repo.last.IsActive)
}
