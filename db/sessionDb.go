package db

import (
	"database/sql"
	"fmt"

	"coursegen/models"

	_ "github.com/lib/pq"
)

type SessionRepository interface {
	CreateSession(session *models.SessionTitle) error
	GetSessionByID(sessionID string) (*models.SessionTitle, error)
	GetSessionsByUser(googleSub string) ([]*models.SessionTitle, error)
	RenameSession(sessionID string, title string) error
	DeleteSession(sessionID string) error
	Close() error
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(databaseURL string) (*PostgresSessionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSessionRepository{db: db}, nil
}

func (r *PostgresSessionRepository) CreateSession(session *models.SessionTitle) error {
	query := `
		INSERT INTO coursegen.session_titles (session_id, google_sub, title, is_deepcourse)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	row := r.db.QueryRow(query, session.SessionID, session.GoogleSub, session.Title, session.IsDeepCourse)

	if err := row.Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *PostgresSessionRepository) GetSessionByID(sessionID string) (*models.SessionTitle, error) {
	query := `
		SELECT session_id, google_sub, title, is_deepcourse, created_at
		FROM coursegen.session_titles
		WHERE session_id = $1`

	session := &models.SessionTitle{}
	row := r.db.QueryRow(query, sessionID)

	err := row.Scan(&session.SessionID, &session.GoogleSub, &session.Title, &session.IsDeepCourse, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session with id %s not found", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (r *PostgresSessionRepository) GetSessionsByUser(googleSub string) ([]*models.SessionTitle, error) {
	query := `
		SELECT session_id, google_sub, title, is_deepcourse, created_at
		FROM coursegen.session_titles
		WHERE google_sub = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, googleSub)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.SessionTitle, 0)
	for rows.Next() {
		session := &models.SessionTitle{}
		err := rows.Scan(&session.SessionID, &session.GoogleSub, &session.Title, &session.IsDeepCourse, &session.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sessions: %w", err)
	}

	return sessions, nil
}

func (r *PostgresSessionRepository) RenameSession(sessionID string, title string) error {
	return r.execExpectingRow(
		"UPDATE coursegen.session_titles SET title = $2 WHERE session_id = $1",
		fmt.Sprintf("session with id %s not found", sessionID),
		sessionID, title,
	)
}

func (r *PostgresSessionRepository) DeleteSession(sessionID string) error {
	return r.execExpectingRow(
		"DELETE FROM coursegen.session_titles WHERE session_id = $1",
		fmt.Sprintf("session with id %s not found", sessionID),
		sessionID,
	)
}

func (r *PostgresSessionRepository) execExpectingRow(query string, notFoundMsg string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute session update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s", notFoundMsg)
	}

	return nil
}

func (r *PostgresSessionRepository) Close() error {
	return r.db.Close()
}
