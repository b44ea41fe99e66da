package db

import (
	"database/sql"
	"fmt"

	"coursegen/models"

	_ "github.com/lib/pq"
)

type UserRepository interface {
	UpsertUser(user *models.User) error
	GetUserBySub(googleSub string) (*models.User, error)
	Close() error
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(databaseURL string) (*PostgresUserRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresUserRepository{db: db}, nil
}

func (r *PostgresUserRepository) UpsertUser(user *models.User) error {
	query := `
		INSERT INTO coursegen.users (google_sub, email, name, study_level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (google_sub)
		DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, study_level = EXCLUDED.study_level
		RETURNING created_at`

	row := r.db.QueryRow(query, user.GoogleSub, user.Email, user.Name, user.StudyLevel)

	if err := row.Scan(&user.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *PostgresUserRepository) GetUserBySub(googleSub string) (*models.User, error) {
	query := `
		SELECT google_sub, email, name, study_level, created_at
		FROM coursegen.users
		WHERE google_sub = $1`

	user := &models.User{}
	row := r.db.QueryRow(query, googleSub)

	err := row.Scan(&user.GoogleSub, &user.Email, &user.Name, &user.StudyLevel, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s not found", googleSub)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *PostgresUserRepository) Close() error {
	return r.db.Close()
}
