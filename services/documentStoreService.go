package services

import (
	"encoding/json"
	"fmt"
	"log"

	"coursegen/db"
	"coursegen/models"

	"github.com/google/uuid"
)

// DocumentStoreService persists generated artifacts. Every document lives in
// its own session; user-driven state (answers, selections, correction flags)
// is mutated through the dedicated operations below, never by rewriting the
// artifact wholesale.
type DocumentStoreService struct {
	documentRepo db.DocumentRepository
	sessionRepo  db.SessionRepository
}

func NewDocumentStoreService(documentRepo db.DocumentRepository, sessionRepo db.SessionRepository) *DocumentStoreService {
	return &DocumentStoreService{
		documentRepo: documentRepo,
		sessionRepo:  sessionRepo,
	}
}

// PersistArtifact creates a fresh session owned by googleSub and stores the
// serialized artifact as its single document. Returns the new session id,
// which the chat layer hands back as the redirect id.
func (s *DocumentStoreService) PersistArtifact(googleSub string, title string, documentType string, chapterID *string, artifact any) (sessionID string, documentID string, err error) {
	contenu, err := json.Marshal(artifact)
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize artifact: %w", err)
	}

	sessionID = uuid.NewString()
	session := &models.SessionTitle{
		SessionID: sessionID,
		GoogleSub: googleSub,
		Title:     title,
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return "", "", fmt.Errorf("failed to create session for artifact: %w", err)
	}

	doc := &models.Document{
		ID:           uuid.NewString(),
		GoogleSub:    googleSub,
		SessionID:    sessionID,
		ChapterID:    chapterID,
		DocumentType: documentType,
		Contenu:      contenu,
	}
	if err := s.documentRepo.CreateDocument(doc); err != nil {
		return "", "", fmt.Errorf("failed to persist document: %w", err)
	}

	log.Printf("[INFO] Persisted %s document %s in session %s", documentType, doc.ID, sessionID)
	return sessionID, doc.ID, nil
}

func (s *DocumentStoreService) GetDocumentByID(id string) (*models.Document, error) {
	return s.documentRepo.GetDocumentByID(id)
}

func (s *DocumentStoreService) GetDocumentBySessionID(sessionID string) (*models.Document, error) {
	return s.documentRepo.GetDocumentBySessionID(sessionID)
}

func (s *DocumentStoreService) GetDocumentsByChapterID(chapterID string) ([]*models.Document, error) {
	return s.documentRepo.GetDocumentsByChapterID(chapterID)
}

// GetChapterDocument returns the chapter document of the requested type.
func (s *DocumentStoreService) GetChapterDocument(chapterID string, documentType string) (*models.Document, error) {
	documents, err := s.documentRepo.GetDocumentsByChapterID(chapterID)
	if err != nil {
		return nil, err
	}
	for _, doc := range documents {
		if doc.DocumentType == documentType {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("chapter %s has no %s document", chapterID, documentType)
}

// SaveOpenAnswer records the user's answer text on an open question.
func (s *DocumentStoreService) SaveOpenAnswer(documentID string, blockID string, questionID string, answer string) error {
	return s.mutateExercise(documentID, func(output *models.ExerciseOutput) error {
		question, err := findOpenQuestion(output, blockID, questionID)
		if err != nil {
			return err
		}
		question.Answers = answer
		return nil
	})
}

// GradeOpenQuestion stores the grading verdict on an open question.
func (s *DocumentStoreService) GradeOpenQuestion(documentID string, blockID string, questionID string, isCorrect bool) error {
	return s.mutateExercise(documentID, func(output *models.ExerciseOutput) error {
		question, err := findOpenQuestion(output, blockID, questionID)
		if err != nil {
			return err
		}
		question.IsCorrect = isCorrect
		question.IsCorrected = true
		return nil
	})
}

// SetQCMSelection stores which answers the user picked on a QCM question.
func (s *DocumentStoreService) SetQCMSelection(documentID string, blockID string, questionID string, selected []int) error {
	return s.mutateExercise(documentID, func(output *models.ExerciseOutput) error {
		question, err := findQCMQuestion(output, blockID, questionID)
		if err != nil {
			return err
		}
		picked := make(map[int]bool, len(selected))
		for _, idx := range selected {
			if idx < 0 || idx >= len(question.Answers) {
				return fmt.Errorf("answer index %d out of range for question %s", idx, questionID)
			}
			picked[idx] = true
		}
		for i := range question.Answers {
			question.Answers[i].IsSelected = picked[i]
		}
		return nil
	})
}

// MarkQCMCorrected flags a QCM question as corrected. Repeating the call is a
// no-op.
func (s *DocumentStoreService) MarkQCMCorrected(documentID string, blockID string, questionID string) error {
	return s.mutateExercise(documentID, func(output *models.ExerciseOutput) error {
		question, err := findQCMQuestion(output, blockID, questionID)
		if err != nil {
			return err
		}
		question.IsCorrected = true
		return nil
	})
}

func (s *DocumentStoreService) mutateExercise(documentID string, mutate func(*models.ExerciseOutput) error) error {
	doc, err := s.documentRepo.GetDocumentByID(documentID)
	if err != nil {
		return err
	}
	if doc.DocumentType != models.DocumentTypeExercise && doc.DocumentType != models.DocumentTypeEval {
		return fmt.Errorf("document %s is a %s, not an exercise", documentID, doc.DocumentType)
	}

	var output models.ExerciseOutput
	if err := json.Unmarshal(doc.Contenu, &output); err != nil {
		return fmt.Errorf("failed to parse stored exercise: %w", err)
	}

	if err := mutate(&output); err != nil {
		return err
	}

	contenu, err := json.Marshal(&output)
	if err != nil {
		return fmt.Errorf("failed to serialize exercise: %w", err)
	}

	return s.documentRepo.UpdateDocumentContent(documentID, contenu)
}

func findOpenQuestion(output *models.ExerciseOutput, blockID string, questionID string) (*models.OpenQuestion, error) {
	for i := range output.Exercises {
		block := output.Exercises[i].Open
		if block == nil || block.ID != blockID {
			continue
		}
		for j := range block.Questions {
			if block.Questions[j].ID == questionID {
				return &block.Questions[j], nil
			}
		}
	}
	return nil, fmt.Errorf("open question %s not found in block %s", questionID, blockID)
}

func findQCMQuestion(output *models.ExerciseOutput, blockID string, questionID string) (*models.QCMQuestion, error) {
	for i := range output.Exercises {
		block := output.Exercises[i].QCM
		if block == nil || block.ID != blockID {
			continue
		}
		for j := range block.Questions {
			if block.Questions[j].ID == questionID {
				return &block.Questions[j], nil
			}
		}
	}
	return nil, fmt.Errorf("qcm question %s not found in block %s", questionID, blockID)
}
