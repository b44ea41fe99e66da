package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"coursegen/models"
	"coursegen/services"
	"coursegen/services/agent"

	"github.com/google/uuid"
)

// sessionState is the in-memory side of a chat session: the transcript and
// the agent the conversation currently sits on. Persistent sessions only
// store the title row; the transcript lives here for the process lifetime.
type sessionState struct {
	messages     []models.AgentMessage
	agent        string
	firstMessage bool
}

// AgentRunner is what the chat boundary needs from the agent service.
type AgentRunner interface {
	Run(ctx context.Context, startAgent string, messages []models.AgentMessage) (*agent.RunResult, error)
}

// Service is the chat entry point. It resolves sessions, binds the request
// context, runs the agent tree and shapes the response.
type Service struct {
	agents   AgentRunner
	sessions *services.SessionService

	mu     sync.Mutex
	states map[string]*sessionState

	filesMu sync.Mutex
	files   map[string][]models.SessionFile
}

func NewService(agents AgentRunner, sessions *services.SessionService) *Service {
	return &Service{
		agents:   agents,
		sessions: sessions,
		states:   make(map[string]*sessionState),
		files:    make(map[string][]models.SessionFile),
	}
}

// Chat processes one user turn and returns the assistant answer plus the
// redirect information when a generation tool ran.
func (s *Service) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(req.Message) == "" && len(req.Files) == 0 {
		return nil, fmt.Errorf("message is required")
	}

	sessionID, state := s.resolveSession(req.SessionID)
	log.Printf("[INFO] Chat turn for user %s on session %s (first: %v)", req.UserID, sessionID, state.firstMessage)

	if len(req.Files) > 0 {
		s.AttachFiles(sessionID, req.Files)
	}

	message := req.Message
	if state.firstMessage {
		message = prefixMessageContext(message, req.MessageContext)
	}
	if attachments := describeFiles(req.Files); attachments != "" {
		message = message + "\n\n" + attachments
	}

	startAgent := state.agent
	if startAgent == "" && req.MessageContext != nil {
		startAgent = req.MessageContext.Agent
	}

	ctx = agent.WithRequestContext(ctx, agent.RequestContext{
		UserID:       req.UserID,
		SessionID:    sessionID,
		DocumentID:   req.DocumentID,
		DeepCourseID: req.DeepCourseID,
	})

	messages := append(append([]models.AgentMessage{}, state.messages...), models.AgentMessage{
		Role:    "user",
		Content: message,
	})

	result, err := s.agents.Run(ctx, startAgent, messages)
	if err != nil {
		log.Printf("[ERROR] Agent run failed for session %s: %v", sessionID, err)
		return &models.ChatResponse{
			SessionID: sessionID,
			Answer:    "Une erreur est survenue, merci de réessayer.",
		}, nil
	}

	s.mu.Lock()
	state.messages = result.Messages
	state.agent = result.Agent
	state.firstMessage = false
	s.mu.Unlock()

	response := &models.ChatResponse{
		SessionID: sessionID,
		Answer:    result.Answer,
	}
	if result.Generated != nil {
		response.Agent = result.Generated.Agent
		response.RedirectID = result.Generated.RedirectID
	}

	return response, nil
}

// resolveSession finds or creates the session state: in-memory first, then
// the persistent store, else a fresh session.
func (s *Service) resolveSession(sessionID string) (string, *sessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if state, ok := s.states[sessionID]; ok {
			return sessionID, state
		}
		if s.sessions != nil {
			if _, err := s.sessions.GetSessionByID(sessionID); err == nil {
				// Known persisted session with no in-memory transcript yet
				// (typically a copilot conversation on a stored artifact).
				state := &sessionState{firstMessage: true}
				s.states[sessionID] = state
				return sessionID, state
			}
		}
		log.Printf("[WARN] Unknown session %s, starting a fresh one", sessionID)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	state := &sessionState{firstMessage: true}
	s.states[sessionID] = state
	return sessionID, state
}

// prefixMessageContext enriches the first message of a session with the
// routing hint and user profile so the agent opens in the right register.
func prefixMessageContext(message string, mc *models.MessageContext) string {
	if mc == nil {
		return message
	}
	var parts []string
	if mc.Agent != "" {
		parts = append(parts, "conversation scope: "+mc.Agent)
	}
	if mc.UserName != "" {
		parts = append(parts, "user name: "+mc.UserName)
	}
	if mc.StudyLevel != "" {
		parts = append(parts, "study level: "+mc.StudyLevel)
	}
	if len(parts) == 0 {
		return message
	}
	return "[Context: " + strings.Join(parts, ", ") + "]\n\n" + message
}

// AttachFiles appends uploads to the session's file list. The list is
// append-only; it only shrinks through PurgeFiles.
func (s *Service) AttachFiles(sessionID string, files []models.SessionFile) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	s.files[sessionID] = append(s.files[sessionID], files...)
	log.Printf("[INFO] Session %s now carries %d attached files", sessionID, len(s.files[sessionID]))
}

// SessionFiles returns the files currently attached to a session.
func (s *Service) SessionFiles(sessionID string) []models.SessionFile {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	files := make([]models.SessionFile, len(s.files[sessionID]))
	copy(files, s.files[sessionID])
	return files
}

// PurgeFiles drops every file attached to a session.
func (s *Service) PurgeFiles(sessionID string) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	delete(s.files, sessionID)
	log.Printf("[INFO] Purged attached files for session %s", sessionID)
}

// describeFiles renders the turn's attachments for the LLM context.
// Textual files are inlined, binary ones listed by name.
func describeFiles(files []models.SessionFile) string {
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Attached files:")
	for _, file := range files {
		b.WriteString("\n- " + file.Name + " (" + file.MimeType + ")")
		if strings.HasPrefix(file.MimeType, "text/") && len(file.Data) > 0 {
			b.WriteString("\n```\n" + string(file.Data) + "\n```")
		}
	}
	return b.String()
}
