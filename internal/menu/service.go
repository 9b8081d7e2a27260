package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Service handles menu permission business logic.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns all permission rows ordered by sort order.
func (s *Service) List(ctx context.Context) ([]Permission, error) {
	return s.repo.List(ctx)
}

// Get fetches a single row by identifier.
func (s *Service) Get(ctx context.Context, id int64) (Permission, error) {
	if id <= 0 {
		return Permission{}, fmt.Errorf("%w: invalid menu permission id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create inserts a new navigation entry.
func (s *Service) Create(ctx context.Context, fields Fields) (Permission, error) {
	normalize(&fields)
	if err := s.validate.Struct(fields); err != nil {
		return Permission{}, fmt.Errorf("%w: %s", httpx.ErrValidation, validationDetail(err))
	}
	return s.repo.Create(ctx, fields)
}

// Update patches an existing entry by identifier. The patch is merged with
// the stored row before validation, so partial payloads keep the fields they
// omit, is_active included.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Permission, error) {
	if id <= 0 {
		return Permission{}, fmt.Errorf("%w: invalid menu permission id", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	fields := fieldsOf(current)
	patch.Apply(&fields)
	normalize(&fields)
	if err := s.validate.Struct(fields); err != nil {
		return Permission{}, fmt.Errorf("%w: %s", httpx.ErrValidation, validationDetail(err))
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes an entry by identifier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid menu permission id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func fieldsOf(p Permission) Fields {
	active := p.IsActive
	return Fields{
		MenuName:    p.MenuName,
		MenuLabel:   p.MenuLabel,
		MenuPath:    p.MenuPath,
		IconName:    p.IconName,
		IsActive:    &active,
		AdminAccess: p.AdminAccess,
		UserAccess:  p.UserAccess,
		GuestAccess: p.GuestAccess,
		SortOrder:   p.SortOrder,
	}
}

func normalize(fields *Fields) {
	fields.MenuName = strings.TrimSpace(fields.MenuName)
	fields.MenuLabel = strings.TrimSpace(fields.MenuLabel)
	fields.MenuPath = strings.TrimSpace(fields.MenuPath)
	fields.IconName = strings.TrimSpace(fields.IconName)
}

func validationDetail(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
	}
	return "invalid fields " + strings.Join(fields, ", ")
}
