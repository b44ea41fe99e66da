package db

import (
	"database/sql"
	"fmt"

	"coursegen/models"

	_ "github.com/lib/pq"
)

type DeepCourseRepository interface {
	CreateDeepCourse(deepCourse *models.DeepCourseRow) error
	GetDeepCourseByID(id string) (*models.DeepCourseRow, error)
	GetDeepCoursesByUser(googleSub string) ([]*models.DeepCourseRow, error)
	SetDeepCourseComplete(id string, complete bool) error
	DeleteDeepCourse(id string) error
	Close() error
}

type PostgresDeepCourseRepository struct {
	db *sql.DB
}

func NewPostgresDeepCourseRepository(databaseURL string) (*PostgresDeepCourseRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDeepCourseRepository{db: db}, nil
}

func (r *PostgresDeepCourseRepository) CreateDeepCourse(deepCourse *models.DeepCourseRow) error {
	query := `
		INSERT INTO coursegen.deepcourses (id, google_sub, title, is_complete)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	row := r.db.QueryRow(query, deepCourse.ID, deepCourse.GoogleSub, deepCourse.Title, deepCourse.IsComplete)

	if err := row.Scan(&deepCourse.CreatedAt); err != nil {
		return fmt.Errorf("failed to create deep course: %w", err)
	}

	return nil
}

func (r *PostgresDeepCourseRepository) GetDeepCourseByID(id string) (*models.DeepCourseRow, error) {
	query := `
		SELECT id, google_sub, title, is_complete, created_at
		FROM coursegen.deepcourses
		WHERE id = $1`

	deepCourse := &models.DeepCourseRow{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&deepCourse.ID, &deepCourse.GoogleSub, &deepCourse.Title, &deepCourse.IsComplete, &deepCourse.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("deep course with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get deep course: %w", err)
	}

	return deepCourse, nil
}

func (r *PostgresDeepCourseRepository) GetDeepCoursesByUser(googleSub string) ([]*models.DeepCourseRow, error) {
	query := `
		SELECT id, google_sub, title, is_complete, created_at
		FROM coursegen.deepcourses
		WHERE google_sub = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, googleSub)
	if err != nil {
		return nil, fmt.Errorf("failed to query deep courses: %w", err)
	}
	defer rows.Close()

	deepCourses := make([]*models.DeepCourseRow, 0)
	for rows.Next() {
		deepCourse := &models.DeepCourseRow{}
		err := rows.Scan(&deepCourse.ID, &deepCourse.GoogleSub, &deepCourse.Title, &deepCourse.IsComplete, &deepCourse.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deep course: %w", err)
		}
		deepCourses = append(deepCourses, deepCourse)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over deep courses: %w", err)
	}

	return deepCourses, nil
}

func (r *PostgresDeepCourseRepository) SetDeepCourseComplete(id string, complete bool) error {
	result, err := r.db.Exec("UPDATE coursegen.deepcourses SET is_complete = $2 WHERE id = $1", id, complete)
	if err != nil {
		return fmt.Errorf("failed to update deep course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("deep course with id %s not found", id)
	}

	return nil
}

func (r *PostgresDeepCourseRepository) DeleteDeepCourse(id string) error {
	result, err := r.db.Exec("DELETE FROM coursegen.deepcourses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete deep course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("deep course with id %s not found", id)
	}

	return nil
}

func (r *PostgresDeepCourseRepository) Close() error {
	return r.db.Close()
}
