package survey

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for survey responses.
type Repository interface {
	Create(ctx context.Context, userID int64, sub Submission) (Response, error)
	List(ctx context.Context) ([]Response, error)
	LatestByUser(ctx context.Context, userID int64) (Response, bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, userID int64, sub Submission) (Response, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO survey_responses (user_id, occupation, residence, topics, self_assessment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, occupation, residence, topics, self_assessment, created_at`,
		userID, sub.Occupation, sub.Residence, sub.Topics, sub.SelfAssessment,
		pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	)
	return scanResponse(row)
}

func (r *repository) List(ctx context.Context) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, occupation, residence, topics, self_assessment, created_at
		FROM survey_responses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []Response
	for rows.Next() {
		res, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, res)
	}
	return responses, rows.Err()
}

func (r *repository) LatestByUser(ctx context.Context, userID int64) (Response, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, occupation, residence, topics, self_assessment, created_at
		FROM survey_responses WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT 1`, userID)
	if err != nil {
		return Response{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return Response{}, false, rows.Err()
	}
	res, err := scanResponse(rows)
	if err != nil {
		return Response{}, false, err
	}
	return res, true, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResponse(row scannable) (Response, error) {
	var res Response
	var createdAt pgtype.Timestamptz
	err := row.Scan(&res.ID, &res.UserID, &res.Occupation, &res.Residence, &res.Topics, &res.SelfAssessment, &createdAt)
	if err != nil {
		return Response{}, err
	}
	res.CreatedAt = createdAt.Time
	return res, nil
}
