package survey

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/opicamp/opicamp/internal/platform/httpx"
)

// Service handles survey submission logic.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Submit validates and stores a survey response for the user.
func (s *Service) Submit(ctx context.Context, userID int64, sub Submission) (Response, error) {
	if userID <= 0 {
		return Response{}, fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	sub.Occupation = strings.TrimSpace(sub.Occupation)
	sub.Residence = strings.TrimSpace(sub.Residence)
	for i, t := range sub.Topics {
		sub.Topics[i] = strings.TrimSpace(t)
	}
	if err := s.validate.Struct(sub); err != nil {
		return Response{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return s.repo.Create(ctx, userID, sub)
}

// List returns all responses, newest first.
func (s *Service) List(ctx context.Context) ([]Response, error) {
	return s.repo.List(ctx)
}

// Latest returns the user's most recent response, if any.
func (s *Service) Latest(ctx context.Context, userID int64) (Response, bool, error) {
	if userID <= 0 {
		return Response{}, false, fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	return s.repo.LatestByUser(ctx, userID)
}
