package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"coursegen/models"
)

type fakeDocumentRepo struct {
	documents map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[string]*models.Document)}
}

func (f *fakeDocumentRepo) CreateDocument(doc *models.Document) error {
	f.documents[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepo) GetDocumentByID(id string) (*models.Document, error) {
	if doc, ok := f.documents[id]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("document with id %s not found", id)
}

func (f *fakeDocumentRepo) GetDocumentBySessionID(sessionID string) (*models.Document, error) {
	for _, doc := range f.documents {
		if doc.SessionID == sessionID {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document for session %s not found", sessionID)
}

func (f *fakeDocumentRepo) GetDocumentsByChapterID(chapterID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, doc := range f.documents {
		if doc.ChapterID != nil && *doc.ChapterID == chapterID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) UpdateDocumentContent(id string, contenu json.RawMessage) error {
	doc, ok := f.documents[id]
	if !ok {
		return fmt.Errorf("document with id %s not found", id)
	}
	doc.Contenu = contenu
	return nil
}

func (f *fakeDocumentRepo) DeleteDocument(id string) error {
	delete(f.documents, id)
	return nil
}

func (f *fakeDocumentRepo) Close() error { return nil }

type fakeSessionRepo struct {
	sessions map[string]*models.SessionTitle
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.SessionTitle)}
}

func (f *fakeSessionRepo) CreateSession(session *models.SessionTitle) error {
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessionRepo) GetSessionByID(sessionID string) (*models.SessionTitle, error) {
	if session, ok := f.sessions[sessionID]; ok {
		return session, nil
	}
	return nil, fmt.Errorf("session with id %s not found", sessionID)
}

func (f *fakeSessionRepo) GetSessionsByUser(googleSub string) ([]*models.SessionTitle, error) {
	var out []*models.SessionTitle
	for _, session := range f.sessions {
		if session.GoogleSub == googleSub {
			out = append(out, session)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) RenameSession(sessionID string, title string) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session with id %s not found", sessionID)
	}
	session.Title = title
	return nil
}

func (f *fakeSessionRepo) DeleteSession(sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionRepo) Close() error { return nil }

func exerciseArtifact() *models.ExerciseOutput {
	return &models.ExerciseOutput{
		ID:    "e1",
		Title: "Fractions",
		Exercises: []models.ExerciseBlock{
			{QCM: &models.QCMBlock{
				ID:    "b-qcm",
				Type:  models.ExerciseTypeQCM,
				Topic: "fractions",
				Questions: []models.QCMQuestion{{
					ID:       "q1",
					Question: "Que vaut 1/2 + 1/2 ?",
					Answers: []models.QCMAnswer{
						{Text: "1", IsCorrect: true},
						{Text: "2"},
						{Text: "1/4"},
					},
					Explanation: "Somme de deux moitiés.",
				}},
			}},
			{Open: &models.OpenBlock{
				ID:    "b-open",
				Type:  models.ExerciseTypeOpen,
				Topic: "fractions",
				Questions: []models.OpenQuestion{{
					ID:          "q2",
					Question:    "Expliquez la simplification de fraction.",
					Explanation: "Diviser par le PGCD.",
				}},
			}},
		},
	}
}

func newStoreWithExercise(t *testing.T) (*DocumentStoreService, string) {
	t.Helper()
	store := NewDocumentStoreService(newFakeDocumentRepo(), newFakeSessionRepo())
	_, documentID, err := store.PersistArtifact("user-1", "Fractions", models.DocumentTypeExercise, nil, exerciseArtifact())
	if err != nil {
		t.Fatalf("PersistArtifact: %v", err)
	}
	return store, documentID
}

func loadExercise(t *testing.T, store *DocumentStoreService, documentID string) *models.ExerciseOutput {
	t.Helper()
	doc, err := store.GetDocumentByID(documentID)
	if err != nil {
		t.Fatalf("GetDocumentByID: %v", err)
	}
	var output models.ExerciseOutput
	if err := json.Unmarshal(doc.Contenu, &output); err != nil {
		t.Fatalf("unmarshal stored exercise: %v", err)
	}
	return &output
}

func TestPersistArtifactCreatesOwnSession(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	store := NewDocumentStoreService(newFakeDocumentRepo(), sessionRepo)

	sessionID, documentID, err := store.PersistArtifact("user-1", "Fractions", models.DocumentTypeExercise, nil, exerciseArtifact())
	if err != nil {
		t.Fatalf("PersistArtifact: %v", err)
	}
	if sessionID == "" || documentID == "" {
		t.Fatal("ids must be assigned")
	}

	session, err := sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		t.Fatalf("session not created: %v", err)
	}
	if session.GoogleSub != "user-1" || session.Title != "Fractions" {
		t.Errorf("session = %+v", session)
	}

	doc, err := store.GetDocumentBySessionID(sessionID)
	if err != nil {
		t.Fatalf("document not bound to session: %v", err)
	}
	if doc.ID != documentID || doc.DocumentType != models.DocumentTypeExercise {
		t.Errorf("document = %+v", doc)
	}
}

func TestSaveOpenAnswerAndGrade(t *testing.T) {
	store, documentID := newStoreWithExercise(t)

	if err := store.SaveOpenAnswer(documentID, "b-open", "q2", "On divise par le PGCD."); err != nil {
		t.Fatalf("SaveOpenAnswer: %v", err)
	}
	if err := store.GradeOpenQuestion(documentID, "b-open", "q2", true); err != nil {
		t.Fatalf("GradeOpenQuestion: %v", err)
	}

	output := loadExercise(t, store, documentID)
	question := output.Exercises[1].Open.Questions[0]
	if question.Answers != "On divise par le PGCD." {
		t.Errorf("answer = %q", question.Answers)
	}
	if !question.IsCorrect || !question.IsCorrected {
		t.Errorf("grading flags not set: %+v", question)
	}
}

func TestSetQCMSelectionReplacesPreviousPick(t *testing.T) {
	store, documentID := newStoreWithExercise(t)

	if err := store.SetQCMSelection(documentID, "b-qcm", "q1", []int{1}); err != nil {
		t.Fatalf("SetQCMSelection: %v", err)
	}
	if err := store.SetQCMSelection(documentID, "b-qcm", "q1", []int{0}); err != nil {
		t.Fatalf("SetQCMSelection: %v", err)
	}

	answers := loadExercise(t, store, documentID).Exercises[0].QCM.Questions[0].Answers
	if !answers[0].IsSelected || answers[1].IsSelected || answers[2].IsSelected {
		t.Errorf("selection not replaced: %+v", answers)
	}

	if err := store.SetQCMSelection(documentID, "b-qcm", "q1", []int{5}); err == nil {
		t.Error("out-of-range index should fail")
	}
}

func TestMarkQCMCorrectedIsIdempotent(t *testing.T) {
	store, documentID := newStoreWithExercise(t)

	for i := 0; i < 2; i++ {
		if err := store.MarkQCMCorrected(documentID, "b-qcm", "q1"); err != nil {
			t.Fatalf("MarkQCMCorrected call %d: %v", i+1, err)
		}
	}

	question := loadExercise(t, store, documentID).Exercises[0].QCM.Questions[0]
	if !question.IsCorrected {
		t.Error("question should be flagged corrected")
	}
}

func TestMutationsRejectNonExerciseDocuments(t *testing.T) {
	store := NewDocumentStoreService(newFakeDocumentRepo(), newFakeSessionRepo())
	_, documentID, err := store.PersistArtifact("user-1", "Cours", models.DocumentTypeCourse, nil, &models.CourseOutput{
		ID:    "c1",
		Title: "Cours",
		Parts: []models.CoursePart{{Title: "t", Content: "c"}},
	})
	if err != nil {
		t.Fatalf("PersistArtifact: %v", err)
	}

	if err := store.MarkQCMCorrected(documentID, "b", "q"); err == nil {
		t.Error("mutating a course document should fail")
	}
}

func TestGetChapterDocumentSelectsType(t *testing.T) {
	store := NewDocumentStoreService(newFakeDocumentRepo(), newFakeSessionRepo())
	chapterID := "ch-1"

	if _, _, err := store.PersistArtifact("user-1", "Cours", models.DocumentTypeCourse, &chapterID, &models.CourseOutput{
		ID: "c1", Title: "Cours", Parts: []models.CoursePart{{Title: "t", Content: "c"}},
	}); err != nil {
		t.Fatalf("PersistArtifact course: %v", err)
	}
	if _, _, err := store.PersistArtifact("user-1", "Éval", models.DocumentTypeEval, &chapterID, exerciseArtifact()); err != nil {
		t.Fatalf("PersistArtifact eval: %v", err)
	}

	doc, err := store.GetChapterDocument(chapterID, models.DocumentTypeEval)
	if err != nil {
		t.Fatalf("GetChapterDocument: %v", err)
	}
	if doc.DocumentType != models.DocumentTypeEval {
		t.Errorf("document type = %q", doc.DocumentType)
	}

	if _, err := store.GetChapterDocument(chapterID, models.DocumentTypeExercise); err == nil {
		t.Error("missing type should fail")
	}
}
