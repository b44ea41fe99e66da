package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"coursegen/services"

	"github.com/gorilla/mux"
)

type ChapterHandler struct {
	store *services.DeepCourseStoreService
}

func NewChapterHandler(store *services.DeepCourseStoreService) *ChapterHandler {
	return &ChapterHandler{store: store}
}

func (h *ChapterHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/deepcourse/fetchall/{user}", h.GetDeepCoursesByUser).Methods("GET")
	router.HandleFunc("/deepcourse/{id}", h.GetDeepCourse).Methods("GET")
	router.HandleFunc("/deepcourse/{id}", h.DeleteDeepCourse).Methods("DELETE")
	router.HandleFunc("/chapter/fetch/{deepcourse_id}", h.GetChapters).Methods("GET")
	router.HandleFunc("/chapter/rename/{id}", h.RenameChapter).Methods("PUT")
	router.HandleFunc("/chapter/delete/{id}", h.DeleteChapter).Methods("DELETE")
	router.HandleFunc("/chapter/complete/{id}", h.CompleteChapter).Methods("PUT")
	router.HandleFunc("/chapter/uncomplete/{id}", h.UncompleteChapter).Methods("PUT")
}

func (h *ChapterHandler) GetDeepCoursesByUser(w http.ResponseWriter, r *http.Request) {
	courses, err := h.store.GetDeepCoursesByUser(mux.Vars(r)["user"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve deep courses")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, courses)
}

func (h *ChapterHandler) GetDeepCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.store.GetDeepCourseByID(mux.Vars(r)["id"])
	if err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve deep course")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, course)
}

func (h *ChapterHandler) DeleteDeepCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDeepCourse(mux.Vars(r)["id"]); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete deep course")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChapterHandler) GetChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.store.GetChaptersByDeepCourseID(mux.Vars(r)["deepcourse_id"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve chapters")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, chapters)
}

func (h *ChapterHandler) RenameChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}

	if err := h.store.RenameChapter(mux.Vars(r)["id"], req.Title); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to rename chapter")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChapterHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteChapter(mux.Vars(r)["id"]); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete chapter")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChapterHandler) CompleteChapter(w http.ResponseWriter, r *http.Request) {
	h.setComplete(w, mux.Vars(r)["id"], true)
}

func (h *ChapterHandler) UncompleteChapter(w http.ResponseWriter, r *http.Request) {
	h.setComplete(w, mux.Vars(r)["id"], false)
}

func (h *ChapterHandler) setComplete(w http.ResponseWriter, id string, complete bool) {
	if err := h.store.SetChapterComplete(id, complete); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to update chapter")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChapterHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChapterHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
