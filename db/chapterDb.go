package db

import (
	"database/sql"
	"fmt"

	"coursegen/models"

	_ "github.com/lib/pq"
)

type ChapterRepository interface {
	CreateChapter(chapter *models.ChapterRow) error
	GetChapterByID(id string) (*models.ChapterRow, error)
	GetChaptersByDeepCourseID(deepCourseID string) ([]*models.ChapterRow, error)
	RenameChapter(id string, title string) error
	SetChapterComplete(id string, complete bool) error
	DeleteChapter(id string) error
	Close() error
}

type PostgresChapterRepository struct {
	db *sql.DB
}

func NewPostgresChapterRepository(databaseURL string) (*PostgresChapterRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresChapterRepository{db: db}, nil
}

func (r *PostgresChapterRepository) CreateChapter(chapter *models.ChapterRow) error {
	query := `
		INSERT INTO coursegen.chapters (id, deepcourse_id, title, position, is_complete)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(query, chapter.ID, chapter.DeepCourseID, chapter.Title, chapter.Position, chapter.IsComplete); err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	return nil
}

func (r *PostgresChapterRepository) GetChapterByID(id string) (*models.ChapterRow, error) {
	query := `
		SELECT id, deepcourse_id, title, position, is_complete
		FROM coursegen.chapters
		WHERE id = $1`

	chapter := &models.ChapterRow{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&chapter.ID, &chapter.DeepCourseID, &chapter.Title, &chapter.Position, &chapter.IsComplete)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("chapter with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	return chapter, nil
}

func (r *PostgresChapterRepository) GetChaptersByDeepCourseID(deepCourseID string) ([]*models.ChapterRow, error) {
	query := `
		SELECT id, deepcourse_id, title, position, is_complete
		FROM coursegen.chapters
		WHERE deepcourse_id = $1
		ORDER BY position ASC`

	rows, err := r.db.Query(query, deepCourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	chapters := make([]*models.ChapterRow, 0)
	for rows.Next() {
		chapter := &models.ChapterRow{}
		err := rows.Scan(&chapter.ID, &chapter.DeepCourseID, &chapter.Title, &chapter.Position, &chapter.IsComplete)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over chapters: %w", err)
	}

	return chapters, nil
}

func (r *PostgresChapterRepository) RenameChapter(id string, title string) error {
	return r.execExpectingRow(
		"UPDATE coursegen.chapters SET title = $2 WHERE id = $1",
		fmt.Sprintf("chapter with id %s not found", id),
		id, title,
	)
}

func (r *PostgresChapterRepository) SetChapterComplete(id string, complete bool) error {
	return r.execExpectingRow(
		"UPDATE coursegen.chapters SET is_complete = $2 WHERE id = $1",
		fmt.Sprintf("chapter with id %s not found", id),
		id, complete,
	)
}

func (r *PostgresChapterRepository) DeleteChapter(id string) error {
	return r.execExpectingRow(
		"DELETE FROM coursegen.chapters WHERE id = $1",
		fmt.Sprintf("chapter with id %s not found", id),
		id,
	)
}

func (r *PostgresChapterRepository) execExpectingRow(query string, notFoundMsg string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute chapter update: %w", err)
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

func (r *PostgresChapterRepository) Close() error {
	return r.db.Close()
}
