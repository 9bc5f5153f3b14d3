package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siyabongaprospersithole/support-ticket-system/internal/domain"
)

// ActivityFilter captures feed query parameters.
type ActivityFilter struct {
	Type       *domain.ActivityType
	SearchTerm *string
	Limit      int
	Offset     int
}

// ActivityRepository stores append-only ledger entries. There is no update
// or delete: corrections are new records.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	ListWithFilter(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	CountWithFilter(ctx context.Context, filter ActivityFilter) (int, error)
	ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	props, err := domain.EncodeProperties(activity.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	const query = `
        INSERT INTO activities (subject_type, subject_id, type, description, properties, causer_id, causer_type)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		activity.SubjectType,
		activity.SubjectID,
		activity.Type,
		activity.Description,
		props,
		activity.CauserID,
		activity.CauserType,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *activityRepository) ListWithFilter(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error) {
	clauses, args := activityFilterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, subject_type, subject_id, type, description, properties, causer_id, causer_type, created_at
        FROM activities WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (r *activityRepository) CountWithFilter(ctx context.Context, filter ActivityFilter) (int, error) {
	clauses, args := activityFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM activities WHERE %s`, strings.Join(clauses, " AND "))

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepository) ListBySubject(ctx context.Context, subjectType domain.SubjectType, subjectID string) ([]domain.Activity, error) {
	const query = `
        SELECT id, subject_type, subject_id, type, description, properties, causer_id, causer_type, created_at
        FROM activities WHERE subject_type=$1 AND subject_id=$2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func activityFilterClauses(filter ActivityFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(description) LIKE $%d", len(args)))
	}
	return clauses, args
}

func scanActivities(rows pgx.Rows) ([]domain.Activity, error) {
	var result []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		var raw []byte
		if err := rows.Scan(
			&activity.ID,
			&activity.SubjectType,
			&activity.SubjectID,
			&activity.Type,
			&activity.Description,
			&raw,
			&activity.CauserID,
			&activity.CauserType,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		props, err := domain.DecodeProperties(activity.Type, raw)
		if err != nil {
			return nil, err
		}
		activity.Properties = props
		result = append(result, activity)
	}
	return result, rows.Err()
}
