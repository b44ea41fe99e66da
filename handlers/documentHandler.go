package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"coursegen/models"
	"coursegen/services"

	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	documentStore *services.DocumentStoreService
	grading       *services.GradingService
}

func NewDocumentHandler(documentStore *services.DocumentStoreService, grading *services.GradingService) *DocumentHandler {
	return &DocumentHandler{documentStore: documentStore, grading: grading}
}

func (h *DocumentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/document/fetchexercise/{session_id}", h.FetchExercise).Methods("GET")
	router.HandleFunc("/document/fetchcourse/{session_id}", h.FetchCourse).Methods("GET")
	router.HandleFunc("/document/fetchchapterdocument/{chapter_id}/{type}", h.FetchChapterDocument).Methods("GET")
	router.HandleFunc("/document/{id}/qcm/selection", h.SetQCMSelection).Methods("POST")
	router.HandleFunc("/document/{id}/qcm/correct", h.MarkQCMCorrected).Methods("POST")
	router.HandleFunc("/document/{id}/open/grade", h.GradeOpenAnswer).Methods("POST")
}

func (h *DocumentHandler) FetchExercise(w http.ResponseWriter, r *http.Request) {
	h.fetchBySession(w, mux.Vars(r)["session_id"], models.DocumentTypeExercise)
}

func (h *DocumentHandler) FetchCourse(w http.ResponseWriter, r *http.Request) {
	h.fetchBySession(w, mux.Vars(r)["session_id"], models.DocumentTypeCourse)
}

func (h *DocumentHandler) fetchBySession(w http.ResponseWriter, sessionID string, documentType string) {
	document, err := h.documentStore.GetDocumentBySessionID(sessionID)
	if err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve document")
		}
		return
	}
	if document.DocumentType != documentType {
		h.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("no %s document for session %s", documentType, sessionID))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, document)
}

func (h *DocumentHandler) FetchChapterDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	documentType := vars["type"]
	switch documentType {
	case models.DocumentTypeCourse, models.DocumentTypeExercise, models.DocumentTypeEval:
	default:
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid document type")
		return
	}

	document, err := h.documentStore.GetChapterDocument(vars["chapter_id"], documentType)
	if err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve document")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, document)
}

func (h *DocumentHandler) SetQCMSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlockID    string `json:"block_id"`
		QuestionID string `json:"question_id"`
		Selected   []int  `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.documentStore.SetQCMSelection(mux.Vars(r)["id"], req.BlockID, req.QuestionID, req.Selected); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to save selection")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) MarkQCMCorrected(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlockID    string `json:"block_id"`
		QuestionID string `json:"question_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.documentStore.MarkQCMCorrected(mux.Vars(r)["id"], req.BlockID, req.QuestionID); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to mark question corrected")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GradeOpenAnswer saves the user's answer, has the LLM grade it against the
// question and its explanation, and persists the verdict.
func (h *DocumentHandler) GradeOpenAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlockID    string `json:"block_id"`
		QuestionID string `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	documentID := mux.Vars(r)["id"]
	if err := h.documentStore.SaveOpenAnswer(documentID, req.BlockID, req.QuestionID, req.Answer); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to save answer")
		}
		return
	}

	question, err := h.findOpenQuestion(documentID, req.BlockID, req.QuestionID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load question")
		return
	}

	verdict, err := h.grading.GradeAnswer(r.Context(), question.Question, question.Explanation, req.Answer)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to grade answer")
		return
	}

	if err := h.documentStore.GradeOpenQuestion(documentID, req.BlockID, req.QuestionID, verdict.IsCorrect); err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to save grade")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, verdict)
}

func (h *DocumentHandler) findOpenQuestion(documentID string, blockID string, questionID string) (*models.OpenQuestion, error) {
	document, err := h.documentStore.GetDocumentByID(documentID)
	if err != nil {
		return nil, err
	}

	var output models.ExerciseOutput
	if err := json.Unmarshal(document.Contenu, &output); err != nil {
		return nil, fmt.Errorf("document %s does not hold exercises: %w", documentID, err)
	}

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
	return nil, fmt.Errorf("open question %s not found in document %s", questionID, documentID)
}

func (h *DocumentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *DocumentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
