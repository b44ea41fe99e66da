package models

import (
	"encoding/json"
	"time"
)

const (
	DocumentTypeCourse   = "course"
	DocumentTypeExercise = "exercise"
	DocumentTypeEval     = "eval"
)

// Document is a persisted generated artifact. Contenu holds the serialized
// ExerciseOutput or CourseOutput.
type Document struct {
	ID           string          `json:"id" db:"id"`
	GoogleSub    string          `json:"google_sub" db:"google_sub"`
	SessionID    string          `json:"session_id" db:"session_id"`
	ChapterID    *string         `json:"chapter_id,omitempty" db:"chapter_id"`
	DocumentType string          `json:"document_type" db:"document_type"`
	Contenu      json.RawMessage `json:"contenu" db:"contenu"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// SessionTitle joins a session id to its human title.
type SessionTitle struct {
	SessionID    string    `json:"session_id" db:"session_id"`
	GoogleSub    string    `json:"google_sub" db:"google_sub"`
	Title        string    `json:"title" db:"title"`
	IsDeepCourse bool      `json:"is_deepcourse" db:"is_deepcourse"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ChapterRow is the stored form of a deep-course chapter.
type ChapterRow struct {
	ID           string `json:"id" db:"id"`
	DeepCourseID string `json:"deepcourse_id" db:"deepcourse_id"`
	Title        string `json:"title" db:"title"`
	Position     int    `json:"position" db:"position"`
	IsComplete   bool   `json:"is_complete" db:"is_complete"`
}

// DeepCourseRow is the stored header of a deep course.
type DeepCourseRow struct {
	ID         string    `json:"id" db:"id"`
	GoogleSub  string    `json:"google_sub" db:"google_sub"`
	Title      string    `json:"title" db:"title"`
	IsComplete bool      `json:"is_complete" db:"is_complete"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// User is keyed by the OAuth subject.
type User struct {
	GoogleSub  string    `json:"google_sub" db:"google_sub"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	StudyLevel string    `json:"study_level" db:"study_level"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
