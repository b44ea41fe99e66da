package services

import (
	"testing"

	"coursegen/models"
)

func seedSessions(repo *fakeSessionRepo, titles ...string) {
	for _, title := range titles {
		repo.sessions[title] = &models.SessionTitle{
			SessionID: title,
			GoogleSub: "user-1",
			Title:     title,
		}
	}
}

func TestCreateSessionValidation(t *testing.T) {
	service := NewSessionService(newFakeSessionRepo())

	if err := service.CreateSession(&models.SessionTitle{GoogleSub: "user-1"}); err == nil {
		t.Error("missing session id should fail")
	}
	if err := service.CreateSession(&models.SessionTitle{SessionID: "s1"}); err == nil {
		t.Error("missing owner should fail")
	}
	if err := service.CreateSession(&models.SessionTitle{SessionID: "s1", GoogleSub: "user-1", Title: "Fractions"}); err != nil {
		t.Errorf("valid session rejected: %v", err)
	}
}

func TestSearchSessionsByTitle(t *testing.T) {
	repo := newFakeSessionRepo()
	seedSessions(repo,
		"Exercices sur les fractions",
		"Cours de photosynthèse",
		"Révisions bac histoire",
	)
	service := NewSessionService(repo)

	tests := []struct {
		query string
		want  int
	}{
		{"fractions", 1},
		{"FRACTIONS", 1},
		{"fractons", 1},
		{"photosynthese", 1},
		{"guitare", 0},
		{"", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matched, err := service.SearchSessionsByTitle("user-1", tt.query)
			if err != nil {
				t.Fatalf("SearchSessionsByTitle: %v", err)
			}
			if len(matched) != tt.want {
				t.Errorf("query %q matched %d sessions, want %d", tt.query, len(matched), tt.want)
			}
		})
	}
}

func TestRenameSessionRejectsEmptyTitle(t *testing.T) {
	repo := newFakeSessionRepo()
	seedSessions(repo, "Ancien titre")
	service := NewSessionService(repo)

	if err := service.RenameSession("Ancien titre", "  "); err == nil {
		t.Error("blank title should fail")
	}
	if err := service.RenameSession("Ancien titre", "Nouveau titre"); err != nil {
		t.Errorf("rename failed: %v", err)
	}
	if repo.sessions["Ancien titre"].Title != "Nouveau titre" {
		t.Errorf("title not updated: %+v", repo.sessions["Ancien titre"])
	}
}
