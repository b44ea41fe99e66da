package course

import (
	"context"
	"fmt"
	"log"
	"sync"

	"coursegen/models"
	"coursegen/services"
	"coursegen/services/diagram"
	"coursegen/services/llmjson"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// Service generates course artifacts: one LLM call produces the full content
// with inline diagram source, then every part's diagram renders in parallel.
// A failed rendering leaves the part without an image, nothing more.
type Service struct {
	llm           llms.Model
	diagrams      *diagram.Service
	documentStore *services.DocumentStoreService
}

func NewService(llm llms.Model, diagrams *diagram.Service, documentStore *services.DocumentStoreService) *Service {
	return &Service{
		llm:           llm,
		diagrams:      diagrams,
		documentStore: documentStore,
	}
}

func (s *Service) Generate(ctx context.Context, synthesis *models.CourseSynthesis) (*models.CourseOutput, error) {
	if err := synthesis.Validate(); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(coursePrompt, synthesis.Description, synthesis.Difficulty, synthesis.LevelDetail)

	log.Printf("[INFO] Calling LLM for course generation (%s)", synthesis.LevelDetail)
	output, err := llmjson.Complete[models.CourseOutput](ctx, s.llm, prompt)
	if err != nil {
		return nil, fmt.Errorf("course generation failed: %w", err)
	}

	output.ID = uuid.NewString()
	for i := range output.Parts {
		if output.Parts[i].IDPart == "" {
			output.Parts[i].IDPart = uuid.NewString()
		}
		if output.Parts[i].MermaidSyntax != "" && output.Parts[i].IDSchema == "" {
			output.Parts[i].IDSchema = uuid.NewString()
		}
	}

	if err := output.Validate(); err != nil {
		return nil, fmt.Errorf("course generation produced an invalid course: %w", err)
	}
	if err := output.ValidatePartCount(synthesis.LevelDetail); err != nil {
		return nil, err
	}

	s.renderDiagrams(ctx, &output)

	log.Printf("[INFO] Generated course %s with %d parts", output.ID, len(output.Parts))
	return &output, nil
}

// GenerateForAgent persists the generated course in a fresh session and
// reports the outcome for the chat layer.
func (s *Service) GenerateForAgent(ctx context.Context, googleSub string, synthesis *models.CourseSynthesis) (*models.GenerativeToolOutput, error) {
	output, err := s.Generate(ctx, synthesis)
	if err != nil {
		log.Printf("[WARN] Agent-invoked course generation failed: %v", err)
		return &models.GenerativeToolOutput{Agent: models.AgentTagCourse, Completed: false}, nil
	}

	sessionID, _, err := s.documentStore.PersistArtifact(googleSub, output.Title, models.DocumentTypeCourse, nil, output)
	if err != nil {
		return nil, err
	}

	return &models.GenerativeToolOutput{
		Agent:      models.AgentTagCourse,
		RedirectID: sessionID,
		Completed:  true,
	}, nil
}

// renderDiagrams dispatches one rendering task per part with diagram source.
// Each task fails independently: the part keeps its content and simply
// carries no image.
func (s *Service) renderDiagrams(ctx context.Context, output *models.CourseOutput) {
	var wg sync.WaitGroup
	rendered := 0

	for i := range output.Parts {
		if output.Parts[i].MermaidSyntax == "" {
			continue
		}
		rendered++
		wg.Add(1)
		go func(part *models.CoursePart) {
			defer wg.Done()

			img, err := s.diagrams.Render(ctx, part.MermaidSyntax)
			if err != nil {
				log.Printf("[WARN] Diagram rendering failed for part %q: %v", part.Title, err)
				return
			}
			part.ImgBase64 = img
		}(&output.Parts[i])
	}
	wg.Wait()

	log.Printf("[INFO] Dispatched %d diagram renderings for course", rendered)
}
