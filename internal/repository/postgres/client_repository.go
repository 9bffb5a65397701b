package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stampjoy/internal/model"
	"stampjoy/internal/repository"
)

type clientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return &clientRepository{pool: pool}
}

var _ repository.ClientRepository = (*clientRepository)(nil)

const clientColumns = `
	id,
	name,
	contact,
	created_at,
	updated_at
`

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}

	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = client.CreatedAt
	}

	query := `
		INSERT INTO clients (id, name, contact, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, client.ID, client.Name, client.Contact, client.CreatedAt, client.UpdatedAt)
	return err
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	client.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE clients
		SET name = $2,
			contact = $3,
			updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, client.ID, client.Name, client.Contact, client.UpdatedAt)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func scanClient(src scanTarget) (*model.Client, error) {
	client := &model.Client{}
	err := src.Scan(
		&client.ID,
		&client.Name,
		&client.Contact,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}
