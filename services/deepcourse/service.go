package deepcourse

import (
	"context"
	"fmt"
	"log"

	"coursegen/models"
	"coursegen/services"
	"coursegen/services/course"
	"coursegen/services/exercise"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"
)

// Service orchestrates deep-course generation: three tasks per chapter
// (practice exercises, course, evaluation), all awaited in one fan-out
// across every chapter. A deep course either completes with all chapters
// populated or fails as a whole.
type Service struct {
	llm       llms.Model
	exercises *exercise.Service
	courses   *course.Service
	store     *services.DeepCourseStoreService
}

func NewService(llm llms.Model, exercises *exercise.Service, courses *course.Service, store *services.DeepCourseStoreService) *Service {
	return &Service{
		llm:       llm,
		exercises: exercises,
		courses:   courses,
		store:     store,
	}
}

// chapterSlots receives the three sub-results of one chapter.
type chapterSlots struct {
	course     *models.CourseOutput
	practice   *models.ExerciseOutput
	evaluation *models.ExerciseOutput
}

func (s *Service) Generate(ctx context.Context, synthesis *models.DeepCourseSynthesis) (*models.DeepCourseOutput, error) {
	for i := range synthesis.SynthesisChapters {
		synthesis.SynthesisChapters[i].NormalizeEvaluation()
	}
	if err := synthesis.Validate(); err != nil {
		return nil, err
	}

	n := len(synthesis.SynthesisChapters)
	slots := make([]chapterSlots, n)

	log.Printf("[INFO] Generating deep course %q: %d chapters, %d concurrent tasks", synthesis.Title, n, 3*n)

	g, gctx := errgroup.WithContext(ctx)
	for i := range synthesis.SynthesisChapters {
		s.addChapterTasks(g, gctx, &synthesis.SynthesisChapters[i], &slots[i])
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("deep course generation failed: %w", err)
	}

	output := &models.DeepCourseOutput{
		ID:       uuid.NewString(),
		Title:    synthesis.Title,
		Chapters: make([]models.Chapter, n),
	}
	for i := range synthesis.SynthesisChapters {
		output.Chapters[i] = models.Chapter{
			IDChapter:  uuid.NewString(),
			Title:      synthesis.SynthesisChapters[i].ChapterTitle,
			Course:     slots[i].course,
			Exercise:   slots[i].practice,
			Evaluation: slots[i].evaluation,
		}
	}

	if err := output.Validate(); err != nil {
		return nil, fmt.Errorf("deep course generation produced an invalid result: %w", err)
	}

	log.Printf("[INFO] Generated deep course %s with %d chapters", output.ID, n)
	return output, nil
}

// addChapterTasks registers the chapter's three generation tasks on the
// shared errgroup. Any failing task fails the whole deep course.
func (s *Service) addChapterTasks(g *errgroup.Group, ctx context.Context, chapter *models.ChapterSynthesis, slots *chapterSlots) {
	g.Go(func() error {
		practice, err := s.exercises.Generate(ctx, &chapter.SynthesisExercise)
		if err != nil {
			return fmt.Errorf("chapter %q practice: %w", chapter.ChapterTitle, err)
		}
		slots.practice = practice
		return nil
	})
	g.Go(func() error {
		courseOutput, err := s.courses.Generate(ctx, &chapter.SynthesisCourse)
		if err != nil {
			return fmt.Errorf("chapter %q course: %w", chapter.ChapterTitle, err)
		}
		slots.course = courseOutput
		return nil
	})
	g.Go(func() error {
		evaluation, err := s.exercises.Generate(ctx, &chapter.SynthesisEvaluation)
		if err != nil {
			return fmt.Errorf("chapter %q evaluation: %w", chapter.ChapterTitle, err)
		}
		slots.evaluation = evaluation
		return nil
	})
}

// GenerateForAgent persists the deep-course tree and reports the outcome.
// The redirect points at the first chapter's course session.
func (s *Service) GenerateForAgent(ctx context.Context, googleSub string, synthesis *models.DeepCourseSynthesis) (*models.GenerativeToolOutput, error) {
	output, err := s.Generate(ctx, synthesis)
	if err != nil {
		log.Printf("[WARN] Agent-invoked deep course generation failed: %v", err)
		return &models.GenerativeToolOutput{Agent: models.AgentTagDeepCourse, Completed: false}, nil
	}

	redirectID, err := s.store.PersistDeepCourse(googleSub, output)
	if err != nil {
		return nil, err
	}

	return &models.GenerativeToolOutput{
		Agent:      models.AgentTagDeepCourse,
		RedirectID: redirectID,
		Completed:  true,
	}, nil
}
