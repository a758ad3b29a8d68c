package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/researcher-directory/internal/domain"
)

// ResearcherRepository defines persistence access for directory members.
type ResearcherRepository interface {
	Create(ctx context.Context, r *domain.Researcher) error
	Update(ctx context.Context, r *domain.Researcher) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Researcher, error)
	GetByEmail(ctx context.Context, email string) (*domain.Researcher, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Researcher, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Researcher, error)
}

type researcherRepository struct {
	pool *pgxpool.Pool
}

// NewResearcherRepository returns a Postgres-backed implementation.
func NewResearcherRepository(pool *pgxpool.Pool) ResearcherRepository {
	return &researcherRepository{pool: pool}
}

const researcherColumns = `id, email, username, password_hash, role, first_name, last_name,
        institution, field_of_research, profile_picture, image_key, status, created_at, updated_at`

func (r *researcherRepository) Create(ctx context.Context, res *domain.Researcher) error {
	const query = `
        INSERT INTO researchers
            (email, username, password_hash, role, first_name, last_name,
             institution, field_of_research, profile_picture, image_key, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		res.Email,
		res.Username,
		res.PasswordHash,
		res.Role,
		res.FirstName,
		res.LastName,
		res.Institution,
		res.FieldOfResearch,
		res.ProfilePicture,
		res.ImageKey,
		res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *researcherRepository) Update(ctx context.Context, res *domain.Researcher) error {
	const query = `
        UPDATE researchers SET
            email=$1, username=$2, password_hash=$3, role=$4, first_name=$5, last_name=$6,
            institution=$7, field_of_research=$8, profile_picture=$9, image_key=$10, status=$11,
            updated_at=NOW()
        WHERE id=$12`

	cmd, err := r.pool.Exec(ctx, query,
		res.Email,
		res.Username,
		res.PasswordHash,
		res.Role,
		res.FirstName,
		res.LastName,
		res.Institution,
		res.FieldOfResearch,
		res.ProfilePicture,
		res.ImageKey,
		res.Status,
		res.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *researcherRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM researchers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *researcherRepository) GetByID(ctx context.Context, id string) (*domain.Researcher, error) {
	return r.getBy(ctx, "id", id)
}

func (r *researcherRepository) GetByEmail(ctx context.Context, email string) (*domain.Researcher, error) {
	return r.getBy(ctx, "email", email)
}

func (r *researcherRepository) getBy(ctx context.Context, column, value string) (*domain.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE ` + column + `=$1`

	var res domain.Researcher
	if err := scanResearcher(r.pool.QueryRow(ctx, query, value), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *researcherRepository) List(ctx context.Context, limit, offset int) ([]*domain.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers ORDER BY last_name, first_name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResearchers(rows)
}

func (r *researcherRepository) Search(ctx context.Context, q string, limit int) ([]*domain.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers
        WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR username ILIKE $1
           OR institution ILIKE $1 OR field_of_research ILIKE $1
        ORDER BY last_name, first_name LIMIT $2`

	rows, err := r.pool.Query(ctx, query, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResearchers(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResearcher(row rowScanner, res *domain.Researcher) error {
	return row.Scan(
		&res.ID,
		&res.Email,
		&res.Username,
		&res.PasswordHash,
		&res.Role,
		&res.FirstName,
		&res.LastName,
		&res.Institution,
		&res.FieldOfResearch,
		&res.ProfilePicture,
		&res.ImageKey,
		&res.Status,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
}

func collectResearchers(rows pgx.Rows) ([]*domain.Researcher, error) {
	var out []*domain.Researcher
	for rows.Next() {
		var res domain.Researcher
		if err := scanResearcher(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
