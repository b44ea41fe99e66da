package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"coursegen/services"

	"github.com/gorilla/mux"
)

type SessionHandler struct {
	service *services.SessionService
}

func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/session/fetchallchats/{user}", h.GetSessionsByUser).Methods("GET")
	router.HandleFunc("/session/fetchchat/{id}", h.GetSessionByID).Methods("GET")
	router.HandleFunc("/session/search/{user}", h.SearchSessions).Methods("GET")
	router.HandleFunc("/session/rename/{id}", h.RenameSession).Methods("PUT")
	router.HandleFunc("/session/delete/{id}", h.DeleteSession).Methods("DELETE")
}

func (h *SessionHandler) GetSessionsByUser(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.GetSessionsByUser(mux.Vars(r)["user"])
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, sessions)
}

func (h *SessionHandler) GetSessionByID(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSessionByID(mux.Vars(r)["id"])
	if err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve session")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, session)
}

func (h *SessionHandler) SearchSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	sessions, err := h.service.SearchSessionsByTitle(mux.Vars(r)["user"], query)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to search sessions")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, sessions)
}

func (h *SessionHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RenameSession(mux.Vars(r)["id"], req.Title); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to rename session")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(mux.Vars(r)["id"]); err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete session")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *SessionHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func containsNotFound(message string) bool {
	return strings.Contains(message, "not found")
}
