package exercise

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"coursegen/models"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel routes prompts to canned responses based on which pipeline stage
// the prompt belongs to.
type fakeModel struct {
	mu        sync.Mutex
	calls     []string
	planFunc  func(call int) (string, error)
	qcmFunc   func(topic string) (string, error)
	openFunc  func(topic string) (string, error)
	itemDelay time.Duration
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	prompt := promptText(messages)

	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	planCalls := 0
	for _, c := range f.calls {
		if strings.Contains(c, "exercise planner") {
			planCalls++
		}
	}
	f.mu.Unlock()

	if f.itemDelay > 0 && !strings.Contains(prompt, "exercise planner") {
		select {
		case <-time.After(f.itemDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var content string
	var err error
	switch {
	case strings.Contains(prompt, "exercise planner"):
		content, err = f.planFunc(planCalls)
	case strings.Contains(prompt, "multiple-choice"):
		content, err = f.qcmFunc(extractTopic(prompt))
	case strings.Contains(prompt, "open-question"):
		content, err = f.openFunc(extractTopic(prompt))
	default:
		err = fmt.Errorf("unexpected prompt: %s", prompt)
	}
	if err != nil {
		return nil, err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func promptText(messages []llms.MessageContent) string {
	var sb strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
}

func extractTopic(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Topic: ") {
			return strings.TrimPrefix(line, "Topic: ")
		}
	}
	return ""
}

func validQCMJSON(topic string) string {
	return fmt.Sprintf(`{"type": "qcm", "topic": %q, "questions": [
		{"question": "Q sur %s ?", "answers": [
			{"text": "bonne", "is_correct": true, "is_selected": false},
			{"text": "mauvaise", "is_correct": false, "is_selected": false}
		], "explanation": "parce que", "multi_answers": false, "is_corrected": false}
	]}`, topic, topic)
}

func validOpenJSON(topic string) string {
	return fmt.Sprintf(`{"type": "open", "topic": %q, "questions": [
		{"question": "Expliquez %s", "answers": "", "is_correct": false, "is_corrected": false, "explanation": "points attendus"}
	]}`, topic, topic)
}

func testSynthesis(count int, exerciseType string) *models.ExerciseSynthesis {
	return &models.ExerciseSynthesis{
		Description:       "Les variables en Python",
		Title:             "Python basics",
		Difficulty:        "Débutant",
		NumberOfExercises: count,
		ExerciseType:      exerciseType,
	}
}

func newTestService(model llms.Model) *Service {
	s := NewService(model, nil)
	s.planBackoff = time.Millisecond
	return s
}

func TestGenerateBothTypes(t *testing.T) {
	model := &fakeModel{
		planFunc: func(int) (string, error) {
			return `{"difficulty": "Débutant", "exercises": [
				{"type": "qcm", "topic": "déclaration de variables"},
				{"type": "open", "topic": "portée des variables"},
				{"type": "qcm", "topic": "types de base"}
			]}`, nil
		},
		qcmFunc:  func(topic string) (string, error) { return validQCMJSON(topic), nil },
		openFunc: func(topic string) (string, error) { return validOpenJSON(topic), nil },
	}

	output, err := newTestService(model).Generate(context.Background(), testSynthesis(3, models.ExerciseTypeBoth))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if output.ID == "" {
		t.Error("output id should be set")
	}
	if output.Title != "Python basics" {
		t.Errorf("output title = %q, want %q", output.Title, "Python basics")
	}
	if len(output.Exercises) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(output.Exercises))
	}

	wantTypes := []string{models.ExerciseTypeQCM, models.ExerciseTypeOpen, models.ExerciseTypeQCM}
	for i, want := range wantTypes {
		if got := output.Exercises[i].Type(); got != want {
			t.Errorf("block %d type = %q, want %q", i, got, want)
		}
	}

	if err := output.Validate(); err != nil {
		t.Errorf("output failed validation: %v", err)
	}

	for i, block := range output.Exercises {
		switch {
		case block.QCM != nil:
			if block.QCM.ID == "" {
				t.Errorf("block %d: missing qcm block id", i)
			}
			for _, q := range block.QCM.Questions {
				if q.ID == "" {
					t.Errorf("block %d: missing question id", i)
				}
			}
		case block.Open != nil:
			if block.Open.ID == "" {
				t.Errorf("block %d: missing open block id", i)
			}
			for _, q := range block.Open.Questions {
				if q.Answers != "" {
					t.Errorf("block %d: answer slot must be empty at generation time", i)
				}
			}
		}
	}
}

func TestGenerateDropsFailedItems(t *testing.T) {
	model := &fakeModel{
		planFunc: func(int) (string, error) {
			return `{"difficulty": "Débutant", "exercises": [
				{"type": "qcm", "topic": "sujet a"},
				{"type": "qcm", "topic": "sujet b"},
				{"type": "open", "topic": "sujet c"}
			]}`, nil
		},
		qcmFunc: func(topic string) (string, error) {
			if topic == "sujet b" {
				return `{"topic": "sujet b"}`, nil // missing type discriminator
			}
			return validQCMJSON(topic), nil
		},
		openFunc: func(topic string) (string, error) { return validOpenJSON(topic), nil },
	}

	output, err := newTestService(model).Generate(context.Background(), testSynthesis(3, models.ExerciseTypeBoth))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(output.Exercises) != 2 {
		t.Fatalf("expected 2 blocks after dropping, got %d", len(output.Exercises))
	}
	if output.Exercises[0].QCM == nil || output.Exercises[0].QCM.Topic != "sujet a" {
		t.Error("first surviving block should be the qcm on 'sujet a'")
	}
	if output.Exercises[1].Open == nil || output.Exercises[1].Open.Topic != "sujet c" {
		t.Error("second surviving block should be the open block on 'sujet c'")
	}
}

func TestGenerateFailsWhenAllItemsDropped(t *testing.T) {
	model := &fakeModel{
		planFunc: func(int) (string, error) {
			return `{"difficulty": "Débutant", "exercises": [{"type": "qcm", "topic": "sujet a"}]}`, nil
		},
		qcmFunc: func(string) (string, error) { return "", fmt.Errorf("provider error") },
	}

	if _, err := newTestService(model).Generate(context.Background(), testSynthesis(1, models.ExerciseTypeQCM)); err == nil {
		t.Fatal("Generate should fail when every item is dropped")
	}
}

func TestPlanningRetriesThenSucceeds(t *testing.T) {
	model := &fakeModel{
		planFunc: func(call int) (string, error) {
			if call < 3 {
				return "", fmt.Errorf("transient provider error")
			}
			return `{"difficulty": "Débutant", "exercises": [{"type": "qcm", "topic": "sujet a"}]}`, nil
		},
		qcmFunc: func(topic string) (string, error) { return validQCMJSON(topic), nil },
	}

	output, err := newTestService(model).Generate(context.Background(), testSynthesis(1, models.ExerciseTypeQCM))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(output.Exercises) != 1 {
		t.Errorf("expected 1 block, got %d", len(output.Exercises))
	}
}

func TestPlanningExhaustion(t *testing.T) {
	planCalls := 0
	model := &fakeModel{
		planFunc: func(call int) (string, error) {
			planCalls = call
			return "", fmt.Errorf("provider down")
		},
	}

	if _, err := newTestService(model).Generate(context.Background(), testSynthesis(2, models.ExerciseTypeQCM)); err == nil {
		t.Fatal("Generate should fail when planning is exhausted")
	}
	if planCalls != 3 {
		t.Errorf("expected 3 planning attempts, got %d", planCalls)
	}
}

func TestPlanTypeMixEnforced(t *testing.T) {
	// A qcm-only request planned with an open item must be rejected and
	// retried; with every attempt wrong, planning fails.
	model := &fakeModel{
		planFunc: func(int) (string, error) {
			return `{"difficulty": "Débutant", "exercises": [
				{"type": "qcm", "topic": "sujet a"},
				{"type": "open", "topic": "sujet b"}
			]}`, nil
		},
	}

	if _, err := newTestService(model).Generate(context.Background(), testSynthesis(2, models.ExerciseTypeQCM)); err == nil {
		t.Fatal("Generate should reject a plan that violates the requested type")
	}
}

func TestItemsGenerateConcurrently(t *testing.T) {
	const itemDelay = 100 * time.Millisecond
	model := &fakeModel{
		planFunc: func(int) (string, error) {
			return `{"difficulty": "Débutant", "exercises": [
				{"type": "qcm", "topic": "sujet a"},
				{"type": "qcm", "topic": "sujet b"},
				{"type": "qcm", "topic": "sujet c"},
				{"type": "qcm", "topic": "sujet d"}
			]}`, nil
		},
		qcmFunc:   func(topic string) (string, error) { return validQCMJSON(topic), nil },
		itemDelay: itemDelay,
	}

	start := time.Now()
	output, err := newTestService(model).Generate(context.Background(), testSynthesis(4, models.ExerciseTypeQCM))
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(output.Exercises) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(output.Exercises))
	}
	// Four sequential items would take at least 400ms.
	if elapsed > 3*itemDelay {
		t.Errorf("items did not run concurrently: took %v", elapsed)
	}
}

func TestGenerateForAgentIncompleteOnFailure(t *testing.T) {
	model := &fakeModel{
		planFunc: func(int) (string, error) { return "", fmt.Errorf("provider down") },
	}

	result, err := newTestService(model).GenerateForAgent(context.Background(), "user-1", testSynthesis(1, models.ExerciseTypeQCM))
	if err != nil {
		t.Fatalf("GenerateForAgent returned error: %v", err)
	}
	if result.Completed {
		t.Error("result should report completed=false")
	}
	if result.Agent != models.AgentTagExercise {
		t.Errorf("agent tag = %q, want %q", result.Agent, models.AgentTagExercise)
	}
	if result.RedirectID != "" {
		t.Errorf("redirect id should be empty on failure, got %q", result.RedirectID)
	}
}
