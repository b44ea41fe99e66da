package models

// AgentMessage is one turn of an agent conversation, including any tool
// calls made by the assistant and their results.
type AgentMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// MessageContext is the optional routing/profile hint attached to the first
// message of a session.
type MessageContext struct {
	Agent      string `json:"agent,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	StudyLevel string `json:"study_level,omitempty"`
}

// SessionFile is a user upload attached to a chat session for the duration
// of the conversation.
type SessionFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// ChatRequest is the composed input of one chat turn.
type ChatRequest struct {
	UserID         string          `json:"user_id"`
	Message        string          `json:"message"`
	SessionID      string          `json:"session_id,omitempty"`
	DeepCourseID   string          `json:"deep_course_id,omitempty"`
	DocumentID     string          `json:"document_id,omitempty"`
	MessageContext *MessageContext `json:"message_context,omitempty"`
	Files          []SessionFile   `json:"-"`
}

// ChatResponse carries the assistant reply plus the redirect information
// extracted from an intercepted generation tool, when one ran.
type ChatResponse struct {
	SessionID  string `json:"session_id"`
	Answer     string `json:"answer"`
	Agent      string `json:"agent,omitempty"`
	RedirectID string `json:"redirect_id,omitempty"`
}
