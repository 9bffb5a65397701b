package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type reviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) repository.ReviewRepository {
	return &reviewRepository{pool: pool}
}

var _ repository.ReviewRepository = (*reviewRepository)(nil)

const reviewColumns = `
	id,
	restaurant_id,
	author,
	rating,
	body,
	language,
	ai_response,
	created_at
`

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	if review.Language == "" {
		review.Language = "English"
	}

	query := `
		INSERT INTO reviews (
			id, restaurant_id, author, rating, body, language, ai_response, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(
		ctx,
		query,
		review.ID,
		review.RestaurantID,
		review.Author,
		review.Rating,
		review.Body,
		review.Language,
		review.AIResponse,
		review.CreatedAt,
	)
	return err
}

func (r *reviewRepository) SetAIResponse(ctx context.Context, id uuid.UUID, response string) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE reviews SET ai_response = $2 WHERE id = $1`,
		id,
		response,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *reviewRepository) List(ctx context.Context, filter repository.ReviewListFilter) ([]*model.Review, error) {
	limit, offset := normalizePagination(filter.Pagination)

	args := make([]any, 0, 4)
	conditions := buildReviewListConditions(filter, &args)

	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(reviewColumns)
	builder.WriteString(" FROM reviews WHERE ")
	builder.WriteString(strings.Join(conditions, " AND "))

	args = append(args, limit, offset)
	_, _ = fmt.Fprintf(&builder, " ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]*model.Review, 0, limit)
	for rows.Next() {
		item, scanErr := scanReview(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		reviews = append(reviews, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepository) Count(ctx context.Context, filter repository.ReviewListFilter) (int64, error) {
	args := make([]any, 0, 2)
	conditions := buildReviewListConditions(filter, &args)

	query := "SELECT COUNT(*) FROM reviews WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func buildReviewListConditions(filter repository.ReviewListFilter, args *[]any) []string {
	conditions := make([]string, 0, 2)

	*args = append(*args, filter.RestaurantID)
	conditions = append(conditions, fmt.Sprintf("restaurant_id = $%d", len(*args)))

	if filter.MinRating != nil {
		*args = append(*args, *filter.MinRating)
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", len(*args)))
	}

	return conditions
}

func scanReview(src scanTarget) (*model.Review, error) {
	review := &model.Review{}
	err := src.Scan(
		&review.ID,
		&review.RestaurantID,
		&review.Author,
		&review.Rating,
		&review.Body,
		&review.Language,
		&review.AIResponse,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return review, nil
}
