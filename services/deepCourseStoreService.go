package services

import (
	"fmt"
	"log"

	"coursegen/db"
	"coursegen/models"
)

// DeepCourseStoreService persists a generated deep course as a tree of store
// rows: one deep-course header, one chapter row per chapter, and three
// documents (course, practice exercise, evaluation) per chapter, each in its
// own session.
type DeepCourseStoreService struct {
	deepCourseRepo db.DeepCourseRepository
	chapterRepo    db.ChapterRepository
	documentStore  *DocumentStoreService
}

func NewDeepCourseStoreService(deepCourseRepo db.DeepCourseRepository, chapterRepo db.ChapterRepository, documentStore *DocumentStoreService) *DeepCourseStoreService {
	return &DeepCourseStoreService{
		deepCourseRepo: deepCourseRepo,
		chapterRepo:    chapterRepo,
		documentStore:  documentStore,
	}
}

// PersistDeepCourse stores the whole deep-course tree and returns the session
// id of the first chapter's course document, which the UI opens first.
func (s *DeepCourseStoreService) PersistDeepCourse(googleSub string, output *models.DeepCourseOutput) (redirectID string, err error) {
	row := &models.DeepCourseRow{
		ID:        output.ID,
		GoogleSub: googleSub,
		Title:     output.Title,
	}
	if err := s.deepCourseRepo.CreateDeepCourse(row); err != nil {
		return "", fmt.Errorf("failed to persist deep course: %w", err)
	}

	for i := range output.Chapters {
		sessionID, err := s.PersistChapter(googleSub, output.ID, i, &output.Chapters[i])
		if err != nil {
			return "", err
		}
		if i == 0 {
			redirectID = sessionID
		}
	}

	log.Printf("[INFO] Persisted deep course %s with %d chapters", output.ID, len(output.Chapters))
	return redirectID, nil
}

// PersistChapter stores one chapter row plus its three documents. Returns the
// session id of the chapter's course document.
func (s *DeepCourseStoreService) PersistChapter(googleSub string, deepCourseID string, position int, chapter *models.Chapter) (string, error) {
	row := &models.ChapterRow{
		ID:           chapter.IDChapter,
		DeepCourseID: deepCourseID,
		Title:        chapter.Title,
		Position:     position,
	}
	if err := s.chapterRepo.CreateChapter(row); err != nil {
		return "", fmt.Errorf("failed to persist chapter %q: %w", chapter.Title, err)
	}

	chapterID := chapter.IDChapter
	courseSession, _, err := s.documentStore.PersistArtifact(googleSub, chapter.Title, models.DocumentTypeCourse, &chapterID, chapter.Course)
	if err != nil {
		return "", fmt.Errorf("failed to persist chapter course: %w", err)
	}
	if _, _, err := s.documentStore.PersistArtifact(googleSub, chapter.Title+" - exercices", models.DocumentTypeExercise, &chapterID, chapter.Exercise); err != nil {
		return "", fmt.Errorf("failed to persist chapter exercise: %w", err)
	}
	if _, _, err := s.documentStore.PersistArtifact(googleSub, chapter.Title+" - évaluation", models.DocumentTypeEval, &chapterID, chapter.Evaluation); err != nil {
		return "", fmt.Errorf("failed to persist chapter evaluation: %w", err)
	}

	return courseSession, nil
}

func (s *DeepCourseStoreService) GetDeepCourseByID(id string) (*models.DeepCourseRow, error) {
	return s.deepCourseRepo.GetDeepCourseByID(id)
}

func (s *DeepCourseStoreService) GetDeepCoursesByUser(googleSub string) ([]*models.DeepCourseRow, error) {
	return s.deepCourseRepo.GetDeepCoursesByUser(googleSub)
}

func (s *DeepCourseStoreService) GetChapterByID(id string) (*models.ChapterRow, error) {
	return s.chapterRepo.GetChapterByID(id)
}

func (s *DeepCourseStoreService) GetChaptersByDeepCourseID(deepCourseID string) ([]*models.ChapterRow, error) {
	return s.chapterRepo.GetChaptersByDeepCourseID(deepCourseID)
}

// NextChapterPosition returns the position index a newly appended chapter
// should take.
func (s *DeepCourseStoreService) NextChapterPosition(deepCourseID string) (int, error) {
	chapters, err := s.chapterRepo.GetChaptersByDeepCourseID(deepCourseID)
	if err != nil {
		return 0, err
	}
	return len(chapters), nil
}

func (s *DeepCourseStoreService) RenameChapter(id string, title string) error {
	return s.chapterRepo.RenameChapter(id, title)
}

func (s *DeepCourseStoreService) SetChapterComplete(id string, complete bool) error {
	return s.chapterRepo.SetChapterComplete(id, complete)
}

func (s *DeepCourseStoreService) DeleteChapter(id string) error {
	return s.chapterRepo.DeleteChapter(id)
}

func (s *DeepCourseStoreService) DeleteDeepCourse(id string) error {
	return s.deepCourseRepo.DeleteDeepCourse(id)
}
