package services

import (
	"fmt"
	"log"
	"strings"

	"coursegen/db"
	"coursegen/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// SessionService manages persisted session titles.
type SessionService struct {
	repo db.SessionRepository
}

func NewSessionService(repo db.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) CreateSession(session *models.SessionTitle) error {
	if strings.TrimSpace(session.SessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(session.GoogleSub) == "" {
		return fmt.Errorf("session owner is required")
	}
	if err := s.repo.CreateSession(session); err != nil {
		log.Printf("[ERROR] Failed to create session %s: %v", session.SessionID, err)
		return err
	}
	return nil
}

func (s *SessionService) GetSessionByID(sessionID string) (*models.SessionTitle, error) {
	return s.repo.GetSessionByID(sessionID)
}

func (s *SessionService) GetSessionsByUser(googleSub string) ([]*models.SessionTitle, error) {
	sessions, err := s.repo.GetSessionsByUser(googleSub)
	if err != nil {
		log.Printf("[ERROR] Failed to list sessions for user %s: %v", googleSub, err)
		return nil, err
	}
	return sessions, nil
}

// SearchSessionsByTitle filters a user's sessions with fuzzy title matching,
// so minor typos in the query still find the conversation.
func (s *SessionService) SearchSessionsByTitle(googleSub string, query string) ([]*models.SessionTitle, error) {
	sessions, err := s.repo.GetSessionsByUser(googleSub)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return sessions, nil
	}

	matched := lo.Filter(sessions, func(session *models.SessionTitle, _ int) bool {
		return sessionTitleMatches(session.Title, query)
	})

	log.Printf("[INFO] Session search %q matched %d of %d sessions", query, len(matched), len(sessions))
	return matched, nil
}

func sessionTitleMatches(title string, query string) bool {
	if fuzzy.MatchNormalizedFold(query, title) {
		return true
	}
	for _, word := range strings.Fields(title) {
		if fuzzy.RankMatchNormalizedFold(query, word) >= 0 {
			return true
		}
	}
	return false
}

func (s *SessionService) RenameSession(sessionID string, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("session title cannot be empty")
	}
	return s.repo.RenameSession(sessionID, title)
}

func (s *SessionService) DeleteSession(sessionID string) error {
	return s.repo.DeleteSession(sessionID)
}
