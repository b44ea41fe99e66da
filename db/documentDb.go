package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"coursegen/models"

	_ "github.com/lib/pq"
)

type DocumentRepository interface {
	CreateDocument(doc *models.Document) error
	GetDocumentByID(id string) (*models.Document, error)
	GetDocumentBySessionID(sessionID string) (*models.Document, error)
	GetDocumentsByChapterID(chapterID string) ([]*models.Document, error)
	UpdateDocumentContent(id string, contenu json.RawMessage) error
	DeleteDocument(id string) error
	Close() error
}

type PostgresDocumentRepository struct {
	db *sql.DB
}

func NewPostgresDocumentRepository(databaseURL string) (*PostgresDocumentRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDocumentRepository{db: db}, nil
}

func (r *PostgresDocumentRepository) CreateDocument(doc *models.Document) error {
	query := `
		INSERT INTO coursegen.documents (id, google_sub, session_id, chapter_id, document_type, contenu)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(query, doc.ID, doc.GoogleSub, doc.SessionID, doc.ChapterID, doc.DocumentType, []byte(doc.Contenu))

	if err := row.Scan(&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *PostgresDocumentRepository) GetDocumentByID(id string) (*models.Document, error) {
	query := `
		SELECT id, google_sub, session_id, chapter_id, document_type, contenu, created_at, updated_at
		FROM coursegen.documents
		WHERE id = $1`

	return r.scanDocument(r.db.QueryRow(query, id), fmt.Sprintf("document with id %s not found", id))
}

func (r *PostgresDocumentRepository) GetDocumentBySessionID(sessionID string) (*models.Document, error) {
	query := `
		SELECT id, google_sub, session_id, chapter_id, document_type, contenu, created_at, updated_at
		FROM coursegen.documents
		WHERE session_id = $1`

	return r.scanDocument(r.db.QueryRow(query, sessionID), fmt.Sprintf("no document for session %s", sessionID))
}

func (r *PostgresDocumentRepository) GetDocumentsByChapterID(chapterID string) ([]*models.Document, error) {
	query := `
		SELECT id, google_sub, session_id, chapter_id, document_type, contenu, created_at, updated_at
		FROM coursegen.documents
		WHERE chapter_id = $1
		ORDER BY document_type`

	rows, err := r.db.Query(query, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapter documents: %w", err)
	}
	defer rows.Close()

	documents := make([]*models.Document, 0)
	for rows.Next() {
		doc := &models.Document{}
		var contenu []byte
		err := rows.Scan(&doc.ID, &doc.GoogleSub, &doc.SessionID, &doc.ChapterID,
			&doc.DocumentType, &contenu, &doc.CreatedAt, &doc.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Contenu = contenu
		documents = append(documents, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over documents: %w", err)
	}

	return documents, nil
}

func (r *PostgresDocumentRepository) UpdateDocumentContent(id string, contenu json.RawMessage) error {
	query := `
		UPDATE coursegen.documents
		SET contenu = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(query, id, []byte(contenu))
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("document with id %s not found", id)
	}

	return nil
}

func (r *PostgresDocumentRepository) DeleteDocument(id string) error {
	query := "DELETE FROM coursegen.documents WHERE id = $1"

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("document with id %s not found", id)
	}

	return nil
}

func (r *PostgresDocumentRepository) scanDocument(row *sql.Row, notFoundMsg string) (*models.Document, error) {
	doc := &models.Document{}
	var contenu []byte

	err := row.Scan(&doc.ID, &doc.GoogleSub, &doc.SessionID, &doc.ChapterID,
		&doc.DocumentType, &contenu, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s", notFoundMsg)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Contenu = contenu
	return doc, nil
}

func (r *PostgresDocumentRepository) Close() error {
	return r.db.Close()
}
