package models

import (
	"fmt"
	"strings"
)

const (
	ExerciseTypeQCM  = "qcm"
	ExerciseTypeOpen = "open"
	ExerciseTypeBoth = "both"
)

const (
	LevelDetailFlash    = "flash"
	LevelDetailStandard = "standard"
	LevelDetailDetailed = "detailed"
)

const (
	MinExercisesPerRequest  = 1
	MaxExercisesPerRequest  = 20
	EvaluationExerciseCount = 10
)

// ExerciseSynthesis is the fully clarified request handed to the exercise
// generation pipeline. All fields must be populated before generation.
type ExerciseSynthesis struct {
	Description       string `json:"description" jsonschema:"required,description=What the exercises should cover"`
	Title             string `json:"title" jsonschema:"required,description=Title of the exercise set"`
	Difficulty        string `json:"difficulty" jsonschema:"required,description=Target difficulty or school level"`
	NumberOfExercises int    `json:"number_of_exercises" jsonschema:"required,minimum=1,maximum=20,description=How many exercise blocks to generate"`
	ExerciseType      string `json:"exercise_type" jsonschema:"required,enum=qcm,enum=open,enum=both,description=Kind of exercises wanted"`
}

func (s *ExerciseSynthesis) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("exercise synthesis: description is required")
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("exercise synthesis: title is required")
	}
	if strings.TrimSpace(s.Difficulty) == "" {
		return fmt.Errorf("exercise synthesis: difficulty is required")
	}
	if s.NumberOfExercises < MinExercisesPerRequest || s.NumberOfExercises > MaxExercisesPerRequest {
		return fmt.Errorf("exercise synthesis: number_of_exercises must be between %d and %d, got %d",
			MinExercisesPerRequest, MaxExercisesPerRequest, s.NumberOfExercises)
	}
	switch s.ExerciseType {
	case ExerciseTypeQCM, ExerciseTypeOpen, ExerciseTypeBoth:
	default:
		return fmt.Errorf("exercise synthesis: invalid exercise_type %q", s.ExerciseType)
	}
	return nil
}

// CourseSynthesis is the clarified request for a single course generation.
type CourseSynthesis struct {
	Description string `json:"description" jsonschema:"required,description=What the course should cover"`
	Difficulty  string `json:"difficulty" jsonschema:"required,description=Target difficulty or school level"`
	LevelDetail string `json:"level_detail" jsonschema:"required,enum=flash,enum=standard,enum=detailed,description=How detailed the course should be"`
}

func (s *CourseSynthesis) Validate() error {
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("course synthesis: description is required")
	}
	if strings.TrimSpace(s.Difficulty) == "" {
		return fmt.Errorf("course synthesis: difficulty is required")
	}
	switch s.LevelDetail {
	case LevelDetailFlash, LevelDetailStandard, LevelDetailDetailed:
	default:
		return fmt.Errorf("course synthesis: invalid level_detail %q", s.LevelDetail)
	}
	return nil
}

// PartCountBounds returns the allowed part-count band for a level of detail.
// The detailed band is open-ended upwards.
func PartCountBounds(levelDetail string) (min int, max int) {
	switch levelDetail {
	case LevelDetailFlash:
		return 1, 2
	case LevelDetailStandard:
		return 3, 5
	case LevelDetailDetailed:
		return 6, 0
	default:
		return 1, 0
	}
}

// ChapterSynthesis bundles the three generation requests of one deep-course
// chapter. The evaluation is always normalized to 10 mixed exercises.
type ChapterSynthesis struct {
	ChapterTitle        string            `json:"chapter_title" jsonschema:"required,description=Title of the chapter"`
	ChapterDescription  string            `json:"chapter_description" jsonschema:"required,description=What the chapter covers"`
	SynthesisExercise   ExerciseSynthesis `json:"synthesis_exercise" jsonschema:"required,description=Practice exercise request for the chapter"`
	SynthesisCourse     CourseSynthesis   `json:"synthesis_course" jsonschema:"required,description=Course request for the chapter"`
	SynthesisEvaluation ExerciseSynthesis `json:"synthesis_evaluation" jsonschema:"required,description=Evaluation request for the chapter"`
}

// NormalizeEvaluation forces the evaluation invariant: exactly 10 exercises,
// mixed QCM and open questions.
func (c *ChapterSynthesis) NormalizeEvaluation() {
	c.SynthesisEvaluation.NumberOfExercises = EvaluationExerciseCount
	c.SynthesisEvaluation.ExerciseType = ExerciseTypeBoth
	if strings.TrimSpace(c.SynthesisEvaluation.Title) == "" {
		c.SynthesisEvaluation.Title = "Évaluation - " + c.ChapterTitle
	}
	if strings.TrimSpace(c.SynthesisEvaluation.Description) == "" {
		c.SynthesisEvaluation.Description = c.ChapterDescription
	}
	if strings.TrimSpace(c.SynthesisEvaluation.Difficulty) == "" {
		c.SynthesisEvaluation.Difficulty = c.SynthesisCourse.Difficulty
	}
}

func (c *ChapterSynthesis) Validate() error {
	if strings.TrimSpace(c.ChapterTitle) == "" {
		return fmt.Errorf("chapter synthesis: chapter_title is required")
	}
	if strings.TrimSpace(c.ChapterDescription) == "" {
		return fmt.Errorf("chapter synthesis: chapter_description is required")
	}
	if err := c.SynthesisExercise.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.ChapterTitle, err)
	}
	if err := c.SynthesisCourse.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.ChapterTitle, err)
	}
	if err := c.SynthesisEvaluation.Validate(); err != nil {
		return fmt.Errorf("chapter %q: %w", c.ChapterTitle, err)
	}
	if c.SynthesisEvaluation.NumberOfExercises != EvaluationExerciseCount {
		return fmt.Errorf("chapter %q: evaluation must request exactly %d exercises", c.ChapterTitle, EvaluationExerciseCount)
	}
	if c.SynthesisEvaluation.ExerciseType != ExerciseTypeBoth {
		return fmt.Errorf("chapter %q: evaluation must mix qcm and open questions", c.ChapterTitle)
	}
	return nil
}

const MaxDeepCourseChapters = 16

// DeepCourseSynthesis is the validated plan for a multi-chapter deep course.
type DeepCourseSynthesis struct {
	Title             string             `json:"title" jsonschema:"required,description=Title of the deep course"`
	SynthesisChapters []ChapterSynthesis `json:"synthesis_chapters" jsonschema:"required,description=Ordered chapter plans"`
}

func (s *DeepCourseSynthesis) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("deep course synthesis: title is required")
	}
	if len(s.SynthesisChapters) < 1 || len(s.SynthesisChapters) > MaxDeepCourseChapters {
		return fmt.Errorf("deep course synthesis: chapter count must be between 1 and %d, got %d",
			MaxDeepCourseChapters, len(s.SynthesisChapters))
	}
	seen := make(map[string]bool, len(s.SynthesisChapters))
	for i := range s.SynthesisChapters {
		if err := s.SynthesisChapters[i].Validate(); err != nil {
			return err
		}
		title := strings.ToLower(strings.TrimSpace(s.SynthesisChapters[i].ChapterTitle))
		if seen[title] {
			return fmt.Errorf("deep course synthesis: duplicate chapter title %q", s.SynthesisChapters[i].ChapterTitle)
		}
		seen[title] = true
	}
	return nil
}
