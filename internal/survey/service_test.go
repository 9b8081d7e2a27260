package survey_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opicamp/opicamp/internal/platform/httpx"
	"github.com/opicamp/opicamp/internal/survey"
	_ "github.com/opicamp/opicamp/internal/testing/guard"
)

type stubRepo struct {
	created []survey.Response
	nextID  int64
}

func (s *stubRepo) Create(ctx context.Context, userID int64, sub survey.Submission) (survey.Response, error) {
	s.nextID++
	resp := survey.Response{
		ID:             s.nextID,
		UserID:         userID,
		Occupation:     sub.Occupation,
		Residence:      sub.Residence,
		Topics:         sub.Topics,
		SelfAssessment: sub.SelfAssessment,
		CreatedAt:      time.Now(),
	}
	s.created = append(s.created, resp)
	return resp, nil
}

func (s *stubRepo) List(ctx context.Context) ([]survey.Response, error) {
	return s.created, nil
}

func (s *stubRepo) LatestByUser(ctx context.Context, userID int64) (survey.Response, bool, error) {
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].UserID == userID {
			return s.created[i], true, nil
		}
	}
	return survey.Response{}, false, nil
}

func validSubmission() survey.Submission {
	return survey.Submission{
		Occupation:     "student",
		Residence:      "living alone",
		Topics:         []string{"movies", "travel", "music"},
		SelfAssessment: 4,
	}
}

func TestSubmitStoresResponse(t *testing.T) {
	repo := &stubRepo{}
	svc := survey.NewService(repo)

	resp, err := svc.Submit(context.Background(), 7, validSubmission())
	require.NoError(t, err)
	require.EqualValues(t, 7, resp.UserID)
	require.Len(t, repo.created, 1)
}

func TestSubmitTrimsWhitespace(t *testing.T) {
	repo := &stubRepo{}
	svc := survey.NewService(repo)

	sub := validSubmission()
	sub.Occupation = "  student  "
	sub.Topics = []string{" movies ", "travel"}
	resp, err := svc.Submit(context.Background(), 7, sub)
	require.NoError(t, err)
	require.Equal(t, "student", resp.Occupation)
	require.Equal(t, []string{"movies", "travel"}, resp.Topics)
}

func TestSubmitValidation(t *testing.T) {
	svc := survey.NewService(&stubRepo{})

	cases := []struct {
		name   string
		mutate func(*survey.Submission)
	}{
		{"missing occupation", func(s *survey.Submission) { s.Occupation = "" }},
		{"missing residence", func(s *survey.Submission) { s.Residence = "  " }},
		{"no topics", func(s *survey.Submission) { s.Topics = nil }},
		{"blank topic", func(s *survey.Submission) { s.Topics = []string{"movies", "  "} }},
		{"self assessment too low", func(s *survey.Submission) { s.SelfAssessment = 0 }},
		{"self assessment too high", func(s *survey.Submission) { s.SelfAssessment = 7 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			_, err := svc.Submit(context.Background(), 7, sub)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestSubmitRejectsInvalidUser(t *testing.T) {
	svc := survey.NewService(&stubRepo{})
	_, err := svc.Submit(context.Background(), 0, validSubmission())
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLatestReturnsNewest(t *testing.T) {
	repo := &stubRepo{}
	svc := survey.NewService(repo)

	first := validSubmission()
	_, err := svc.Submit(context.Background(), 7, first)
	require.NoError(t, err)

	second := validSubmission()
	second.SelfAssessment = 5
	_, err = svc.Submit(context.Background(), 7, second)
	require.NoError(t, err)

	latest, ok, err := svc.Latest(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, latest.SelfAssessment)
}

func TestLatestNoResponse(t *testing.T) {
	svc := survey.NewService(&stubRepo{})
	_, ok, err := svc.Latest(context.Background(), 9)
	require.NoError(t, err)
	require.False(t, ok)
}
