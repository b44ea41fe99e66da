package deepcourse

import (
	"context"
	"fmt"
	"log"
	"strings"

	"coursegen/models"
	"coursegen/services/llmjson"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// GenerateNewChapter extends an existing deep course: the LLM plans one new
// chapter from the course's current table of contents and the user's
// request, then the usual three-task fan-out generates it.
func (s *Service) GenerateNewChapter(ctx context.Context, deepCourseID string, userDescription string) (*models.Chapter, error) {
	row, err := s.store.GetDeepCourseByID(deepCourseID)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.GetChaptersByDeepCourseID(deepCourseID)
	if err != nil {
		return nil, err
	}

	existingTitles := lo.Map(existing, func(chapter *models.ChapterRow, _ int) string {
		return chapter.Title
	})

	synthesis, err := s.planNewChapter(ctx, row.Title, existingTitles, userDescription)
	if err != nil {
		return nil, err
	}

	var slots chapterSlots
	g, gctx := errgroup.WithContext(ctx)
	s.addChapterTasks(g, gctx, synthesis, &slots)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("new chapter generation failed: %w", err)
	}

	chapter := &models.Chapter{
		IDChapter:  uuid.NewString(),
		Title:      synthesis.ChapterTitle,
		Course:     slots.course,
		Exercise:   slots.practice,
		Evaluation: slots.evaluation,
	}
	if err := chapter.Validate(); err != nil {
		return nil, fmt.Errorf("new chapter generation produced an invalid result: %w", err)
	}

	log.Printf("[INFO] Generated new chapter %q for deep course %s", chapter.Title, deepCourseID)
	return chapter, nil
}

func (s *Service) planNewChapter(ctx context.Context, courseTitle string, existingTitles []string, userDescription string) (*models.ChapterSynthesis, error) {
	titleList := "- " + strings.Join(existingTitles, "\n- ")
	if len(existingTitles) == 0 {
		titleList = "(none yet)"
	}

	prompt := fmt.Sprintf(newChapterPrompt, courseTitle, titleList, userDescription)
	synthesis, err := llmjson.Complete[models.ChapterSynthesis](ctx, s.llm, prompt)
	if err != nil {
		return nil, fmt.Errorf("new chapter planning failed: %w", err)
	}

	synthesis.NormalizeEvaluation()
	if err := synthesis.Validate(); err != nil {
		return nil, fmt.Errorf("new chapter planning produced an invalid plan: %w", err)
	}

	if dup, found := findDuplicateTitle(synthesis.ChapterTitle, existingTitles); found {
		return nil, fmt.Errorf("new chapter %q duplicates existing chapter %q", synthesis.ChapterTitle, dup)
	}

	return &synthesis, nil
}

// findDuplicateTitle flags titles that equal or fuzzily contain each other,
// so "Les boucles" and "les boucles en Python" count as the same topic.
func findDuplicateTitle(title string, existingTitles []string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, existing := range existingTitles {
		other := strings.ToLower(strings.TrimSpace(existing))
		if normalized == other {
			return existing, true
		}
		if fuzzy.MatchNormalizedFold(normalized, other) || fuzzy.MatchNormalizedFold(other, normalized) {
			return existing, true
		}
	}
	return "", false
}

// GenerateNewChapterForAgent appends the generated chapter to the stored
// deep course and reports the outcome. The redirect points at the new
// chapter's course session.
func (s *Service) GenerateNewChapterForAgent(ctx context.Context, googleSub string, deepCourseID string, userDescription string) (*models.GenerativeToolOutput, error) {
	chapter, err := s.GenerateNewChapter(ctx, deepCourseID, userDescription)
	if err != nil {
		log.Printf("[WARN] Agent-invoked new chapter generation failed: %v", err)
		return &models.GenerativeToolOutput{Agent: models.AgentTagNewChapter, Completed: false}, nil
	}

	position, err := s.store.NextChapterPosition(deepCourseID)
	if err != nil {
		return nil, err
	}
	redirectID, err := s.store.PersistChapter(googleSub, deepCourseID, position, chapter)
	if err != nil {
		return nil, err
	}

	return &models.GenerativeToolOutput{
		Agent:      models.AgentTagNewChapter,
		RedirectID: redirectID,
		Completed:  true,
	}, nil
}
