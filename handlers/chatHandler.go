package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"coursegen/models"
	"coursegen/services/chat"

	"github.com/gorilla/mux"
)

// maxChatUploadBytes bounds one multipart chat request.
const maxChatUploadBytes = 32 << 20

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat", h.Chat).Methods("POST")
	router.HandleFunc("/chat/{session_id}/files", h.PurgeFiles).Methods("DELETE")
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxChatUploadBytes); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	req := &models.ChatRequest{
		UserID:       r.FormValue("user_id"),
		Message:      r.FormValue("message"),
		SessionID:    r.FormValue("session_id"),
		DeepCourseID: r.FormValue("deep_course_id"),
		DocumentID:   r.FormValue("document_id"),
	}

	if raw := r.FormValue("message_context"); raw != "" {
		var mc models.MessageContext
		if err := json.Unmarshal([]byte(raw), &mc); err != nil {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid message_context payload")
			return
		}
		req.MessageContext = &mc
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files[]"] {
			file, err := header.Open()
			if err != nil {
				h.writeErrorResponse(w, http.StatusBadRequest, "Failed to read uploaded file")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				h.writeErrorResponse(w, http.StatusBadRequest, "Failed to read uploaded file")
				return
			}
			req.Files = append(req.Files, models.SessionFile{
				Name:     header.Filename,
				MimeType: header.Header.Get("Content-Type"),
				Data:     data,
			})
		}
	}

	response, err := h.service.Chat(r.Context(), req)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *ChatHandler) PurgeFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	h.service.PurgeFiles(sessionID)
	log.Printf("[INFO] Purged files for session %s", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
