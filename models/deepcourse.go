package models

import (
	"fmt"
	"strings"
)

// Chapter is one fully generated deep-course chapter: its course, the
// practice exercise and the evaluation, all non-nil.
type Chapter struct {
	IDChapter  string          `json:"id_chapter"`
	Title      string          `json:"title"`
	Course     *CourseOutput   `json:"course"`
	Exercise   *ExerciseOutput `json:"exercise"`
	Evaluation *ExerciseOutput `json:"evaluation"`
}

func (c *Chapter) Validate() error {
	if strings.TrimSpace(c.IDChapter) == "" {
		return fmt.Errorf("chapter: missing id")
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("chapter: missing title")
	}
	if c.Course == nil {
		return fmt.Errorf("chapter %q: missing course", c.Title)
	}
	if c.Exercise == nil {
		return fmt.Errorf("chapter %q: missing practice exercise", c.Title)
	}
	if c.Evaluation == nil {
		return fmt.Errorf("chapter %q: missing evaluation", c.Title)
	}
	if err := c.Course.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.Title, err)
	}
	if err := c.Exercise.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.Title, err)
	}
	if err := c.Evaluation.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.Title, err)
	}
	if err := validateEvaluationBlocks(c.Evaluation); err != nil {
		return fmt.Errorf("chapter %q: %w", c.Title, err)
	}
	return nil
}

// validateEvaluationBlocks rejects evaluations where item generation dropped
// blocks: a chapter evaluation carries exactly EvaluationExerciseCount blocks
// with both exercise kinds present.
func validateEvaluationBlocks(evaluation *ExerciseOutput) error {
	if len(evaluation.Exercises) != EvaluationExerciseCount {
		return fmt.Errorf("evaluation: expected %d blocks, got %d", EvaluationExerciseCount, len(evaluation.Exercises))
	}
	var hasQCM, hasOpen bool
	for i := range evaluation.Exercises {
		switch evaluation.Exercises[i].Type() {
		case ExerciseTypeQCM:
			hasQCM = true
		case ExerciseTypeOpen:
			hasOpen = true
		}
	}
	if !hasQCM || !hasOpen {
		return fmt.Errorf("evaluation: blocks must mix qcm and open questions")
	}
	return nil
}

// DeepCourseOutput is the final deep-course artifact, chapters in synthesis
// order.
type DeepCourseOutput struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

func (o *DeepCourseOutput) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("deep course output: missing id")
	}
	if len(o.Chapters) < 1 || len(o.Chapters) > MaxDeepCourseChapters {
		return fmt.Errorf("deep course output: chapter count must be between 1 and %d, got %d",
			MaxDeepCourseChapters, len(o.Chapters))
	}
	for i := range o.Chapters {
		if err := o.Chapters[i].Validate(); err != nil {
			return fmt.Errorf("deep course output chapter %d: %w", i, err)
		}
	}
	return nil
}

// Agent tags carried on GenerativeToolOutput, consumed by the UI to decide
// where to redirect after a generation.
const (
	AgentTagExercise   = "exercise"
	AgentTagCourse     = "course"
	AgentTagDeepCourse = "deepcourse"
	AgentTagNewChapter = "new_chapter"
)

// GenerativeToolOutput is what a generation tool returns when invoked by an
// agent: the agent tag, the session holding the stored artifact, and whether
// the generation produced anything usable.
type GenerativeToolOutput struct {
	Agent      string `json:"agent"`
	RedirectID string `json:"redirect_id"`
	Completed  bool   `json:"completed"`
}
