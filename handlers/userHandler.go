package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"coursegen/models"
	"coursegen/services"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/user/signup", h.Signup).Methods("POST")
	router.HandleFunc("/user/login", h.Login).Methods("POST")
	router.HandleFunc("/user/{sub}", h.GetUser).Methods("GET")
}

// Signup and Login share the same upsert contract: the OAuth layer in front
// of this API has already authenticated the subject.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.upsert(w, r)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.upsert(w, r)
}

func (h *UserHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(user.GoogleSub) == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "google_sub is required")
		return
	}

	if err := h.service.RegisterUser(&user); err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserBySub(mux.Vars(r)["sub"])
	if err != nil {
		if containsNotFound(err.Error()) {
			h.writeErrorResponse(w, http.StatusNotFound, err.Error())
		} else {
			h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve user")
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, user)
}

func (h *UserHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *UserHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
