package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tmc/langchaingo/llms"
)

const gradingSystemPrompt = `You are a strict but fair grader for open-ended study questions. You receive the question, the reference explanation written when the question was generated, and the student's answer.

Judge whether the student's answer demonstrates a correct understanding. Minor wording differences, spelling mistakes and incomplete sentences are acceptable as long as the core idea is right. Answer in the same language as the question.

Always call the grade_answer function with your verdict.`

var gradingTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "grade_answer",
			Description: "Record the grading verdict for the student's answer",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"is_correct": map[string]any{
						"type":        "boolean",
						"description": "Whether the student's answer is correct",
					},
					"feedback": map[string]any{
						"type":        "string",
						"description": "Short feedback explaining the verdict, in the language of the question",
					},
				},
				"required": []string{"is_correct", "feedback"},
			},
		},
	},
}

type GradeAnswerParams struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

// GradingService evaluates a user's free-text answer to an open question.
type GradingService struct {
	llm llms.Model
}

func NewGradingService(llm llms.Model) *GradingService {
	return &GradingService{llm: llm}
}

func (s *GradingService) GradeAnswer(ctx context.Context, question string, explanation string, userAnswer string) (*GradeAnswerParams, error) {
	log.Printf("[INFO] Grading open answer")

	prompt := fmt.Sprintf("Question:\n%s\n\nReference explanation:\n%s\n\nStudent's answer:\n%s",
		question, explanation, userAnswer)

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, gradingSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(gradingTools),
		llms.WithTemperature(0.2),
		llms.WithToolChoice("required"))
	if err != nil {
		log.Printf("[ERROR] Failed to grade answer: %v", err)
		return nil, fmt.Errorf("failed to grade answer: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no grading verdict in LLM response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "grade_answer" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params GradeAnswerParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse grading verdict: %w", err)
	}

	log.Printf("[INFO] Graded answer: is_correct=%v", params.IsCorrect)
	return &params, nil
}
