package exercise

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"coursegen/models"
	"coursegen/services"
	"coursegen/services/llmjson"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
)

const (
	planAttempts       = 3
	planAttemptTimeout = 30 * time.Second
	planBackoffInitial = 2 * time.Second
)

// Service generates exercise artifacts: an LLM planning call followed by one
// concurrent generation task per planned item.
type Service struct {
	llm           llms.Model
	documentStore *services.DocumentStoreService

	// planBackoff is the initial retry delay; shortened in tests.
	planBackoff time.Duration
}

func NewService(llm llms.Model, documentStore *services.DocumentStoreService) *Service {
	return &Service{
		llm:           llm,
		documentStore: documentStore,
		planBackoff:   planBackoffInitial,
	}
}

// Generate runs the full pipeline and returns the assembled artifact. It
// fails when planning is exhausted or when every planned item was dropped.
func (s *Service) Generate(ctx context.Context, synthesis *models.ExerciseSynthesis) (*models.ExerciseOutput, error) {
	if err := synthesis.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.planExercises(ctx, synthesis)
	if err != nil {
		return nil, err
	}

	blocks := s.generateItems(ctx, synthesis, plan)
	if len(blocks) == 0 {
		return nil, fmt.Errorf("all %d planned exercises failed to generate", len(plan.Exercises))
	}

	output := &models.ExerciseOutput{
		ID:        uuid.NewString(),
		Title:     synthesis.Title,
		Exercises: blocks,
	}

	log.Printf("[INFO] Generated exercise output %s with %d of %d planned blocks",
		output.ID, len(blocks), len(plan.Exercises))
	return output, nil
}

// GenerateForAgent runs Generate, persists the artifact in a fresh session
// owned by googleSub, and reports the outcome as a GenerativeToolOutput.
// Generation failures become completed=false; only persistence errors
// propagate.
func (s *Service) GenerateForAgent(ctx context.Context, googleSub string, synthesis *models.ExerciseSynthesis) (*models.GenerativeToolOutput, error) {
	output, err := s.Generate(ctx, synthesis)
	if err != nil {
		log.Printf("[WARN] Agent-invoked exercise generation failed: %v", err)
		return &models.GenerativeToolOutput{Agent: models.AgentTagExercise, Completed: false}, nil
	}

	sessionID, _, err := s.documentStore.PersistArtifact(googleSub, output.Title, models.DocumentTypeExercise, nil, output)
	if err != nil {
		return nil, err
	}

	return &models.GenerativeToolOutput{
		Agent:      models.AgentTagExercise,
		RedirectID: sessionID,
		Completed:  true,
	}, nil
}

// planExercises asks the LLM for an ExercisePlan, retrying transient
// failures with exponential backoff (3 attempts, 30s each, 2s then 4s
// between).
func (s *Service) planExercises(ctx context.Context, synthesis *models.ExerciseSynthesis) (*models.ExercisePlan, error) {
	prompt := fmt.Sprintf(planPrompt,
		synthesis.Description, synthesis.Difficulty, synthesis.NumberOfExercises,
		synthesis.ExerciseType, synthesis.NumberOfExercises)

	var plan models.ExercisePlan
	attempt := 0
	operation := func() error {
		attempt++
		log.Printf("[INFO] Exercise planning attempt %d/%d", attempt, planAttempts)

		attemptCtx, cancel := context.WithTimeout(ctx, planAttemptTimeout)
		defer cancel()

		p, err := llmjson.Complete[models.ExercisePlan](attemptCtx, s.llm, prompt)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if err := p.MatchesRequestedType(synthesis.ExerciseType); err != nil {
			return err
		}

		plan = p
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.planBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, planAttempts-1), ctx))
	if err != nil {
		log.Printf("[ERROR] Exercise planning exhausted after %d attempts: %v", attempt, err)
		return nil, fmt.Errorf("exercise planning failed: %w", err)
	}

	log.Printf("[INFO] Planned %d exercise items", len(plan.Exercises))
	return &plan, nil
}

// generateItems dispatches one generation task per plan item. Items that
// fail or come back structurally invalid are dropped with a warning; the
// survivors keep their plan order.
func (s *Service) generateItems(ctx context.Context, synthesis *models.ExerciseSynthesis, plan *models.ExercisePlan) []models.ExerciseBlock {
	results := make([]*models.ExerciseBlock, len(plan.Exercises))

	var wg sync.WaitGroup
	for i, item := range plan.Exercises {
		wg.Add(1)
		go func(idx int, item models.ExercisePlanItem) {
			defer wg.Done()

			block, err := s.generateItem(ctx, synthesis, item)
			if err != nil {
				log.Printf("[WARN] Dropping exercise item %d (%s %q): %v", idx, item.Type, item.Topic, err)
				return
			}
			results[idx] = block
		}(i, item)
	}
	wg.Wait()

	kept := lo.Filter(results, func(block *models.ExerciseBlock, _ int) bool {
		return block != nil
	})
	return lo.Map(kept, func(block *models.ExerciseBlock, _ int) models.ExerciseBlock {
		return *block
	})
}

func (s *Service) generateItem(ctx context.Context, synthesis *models.ExerciseSynthesis, item models.ExercisePlanItem) (*models.ExerciseBlock, error) {
	var block models.ExerciseBlock

	switch item.Type {
	case models.ExerciseTypeQCM:
		prompt := fmt.Sprintf(qcmPrompt, item.Topic, synthesis.Description, synthesis.Difficulty, item.Topic)
		qcm, err := llmjson.Complete[models.QCMBlock](ctx, s.llm, prompt)
		if err != nil {
			return nil, err
		}
		qcm.ID = uuid.NewString()
		qcm.Type = models.ExerciseTypeQCM
		if qcm.Topic == "" {
			qcm.Topic = item.Topic
		}
		for i := range qcm.Questions {
			qcm.Questions[i].ID = uuid.NewString()
		}
		block.QCM = &qcm

	case models.ExerciseTypeOpen:
		prompt := fmt.Sprintf(openPrompt, item.Topic, synthesis.Description, synthesis.Difficulty, item.Topic)
		open, err := llmjson.Complete[models.OpenBlock](ctx, s.llm, prompt)
		if err != nil {
			return nil, err
		}
		open.ID = uuid.NewString()
		open.Type = models.ExerciseTypeOpen
		if open.Topic == "" {
			open.Topic = item.Topic
		}
		for i := range open.Questions {
			open.Questions[i].ID = uuid.NewString()
			open.Questions[i].Answers = ""
			open.Questions[i].IsCorrect = false
			open.Questions[i].IsCorrected = false
		}
		block.Open = &open

	default:
		return nil, fmt.Errorf("unknown plan item type %q", item.Type)
	}

	if err := block.Validate(); err != nil {
		return nil, err
	}
	return &block, nil
}
