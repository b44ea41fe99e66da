package services

import (
	"fmt"
	"log"
	"strings"

	"coursegen/db"
	"coursegen/models"
)

type UserService struct {
	repo db.UserRepository
}

func NewUserService(repo db.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// RegisterUser upserts the user row keyed by the OAuth subject. Signup and
// login share this path: identity verification itself happens upstream.
func (s *UserService) RegisterUser(user *models.User) error {
	if strings.TrimSpace(user.GoogleSub) == "" {
		return fmt.Errorf("user subject is required")
	}

	if err := s.repo.UpsertUser(user); err != nil {
		log.Printf("[ERROR] Failed to register user %s: %v", user.GoogleSub, err)
		return err
	}

	log.Printf("[INFO] Registered user %s", user.GoogleSub)
	return nil
}

func (s *UserService) GetUserBySub(googleSub string) (*models.User, error) {
	return s.repo.GetUserBySub(googleSub)
}
