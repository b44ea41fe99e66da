package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExercisePlanItem is one planned exercise block: its kind and its topic.
type ExercisePlanItem struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// ExercisePlan is the LLM planning result consumed by the per-item generators.
type ExercisePlan struct {
	Difficulty string             `json:"difficulty"`
	Exercises  []ExercisePlanItem `json:"exercises"`
}

func (p *ExercisePlan) Validate() error {
	if len(p.Exercises) < MinExercisesPerRequest || len(p.Exercises) > MaxExercisesPerRequest {
		return fmt.Errorf("exercise plan: item count must be between %d and %d, got %d",
			MinExercisesPerRequest, MaxExercisesPerRequest, len(p.Exercises))
	}
	seen := make(map[string]bool, len(p.Exercises))
	for i, item := range p.Exercises {
		if item.Type != ExerciseTypeQCM && item.Type != ExerciseTypeOpen {
			return fmt.Errorf("exercise plan: item %d has invalid type %q", i, item.Type)
		}
		topic := strings.ToLower(strings.TrimSpace(item.Topic))
		if topic == "" {
			return fmt.Errorf("exercise plan: item %d has an empty topic", i)
		}
		if seen[topic] {
			return fmt.Errorf("exercise plan: duplicate topic %q", item.Topic)
		}
		seen[topic] = true
	}
	return nil
}

// MatchesRequestedType checks the plan's type mix against the synthesis:
// single-kind requests must yield only that kind, "both" must yield both
// (when at least two items were requested).
func (p *ExercisePlan) MatchesRequestedType(exerciseType string) error {
	hasQCM, hasOpen := false, false
	for _, item := range p.Exercises {
		switch item.Type {
		case ExerciseTypeQCM:
			hasQCM = true
		case ExerciseTypeOpen:
			hasOpen = true
		}
	}
	switch exerciseType {
	case ExerciseTypeQCM:
		if hasOpen {
			return fmt.Errorf("exercise plan: open question planned for a qcm-only request")
		}
	case ExerciseTypeOpen:
		if hasQCM {
			return fmt.Errorf("exercise plan: qcm planned for an open-only request")
		}
	case ExerciseTypeBoth:
		if len(p.Exercises) >= 2 && (!hasQCM || !hasOpen) {
			return fmt.Errorf("exercise plan: a mixed request must plan both qcm and open items")
		}
	}
	return nil
}

type QCMAnswer struct {
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	IsSelected bool   `json:"is_selected"`
}

type QCMQuestion struct {
	ID           string      `json:"id"`
	Question     string      `json:"question"`
	Answers      []QCMAnswer `json:"answers"`
	Explanation  string      `json:"explanation"`
	MultiAnswers bool        `json:"multi_answers"`
	IsCorrected  bool        `json:"is_corrected"`
}

func (q *QCMQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("qcm question: empty question text")
	}
	if len(q.Answers) < 2 || len(q.Answers) > 5 {
		return fmt.Errorf("qcm question: answer count must be between 2 and 5, got %d", len(q.Answers))
	}
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return fmt.Errorf("qcm question: at least one answer must be correct")
	}
	if q.MultiAnswers != (correct >= 2) {
		return fmt.Errorf("qcm question: multi_answers=%v inconsistent with %d correct answers", q.MultiAnswers, correct)
	}
	return nil
}

type OpenQuestion struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Answers     string `json:"answers"`
	IsCorrect   bool   `json:"is_correct"`
	IsCorrected bool   `json:"is_corrected"`
	Explanation string `json:"explanation"`
}

func (q *OpenQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("open question: empty question text")
	}
	return nil
}

type QCMBlock struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Topic     string        `json:"topic"`
	Questions []QCMQuestion `json:"questions"`
}

func (b *QCMBlock) Validate() error {
	if len(b.Questions) < 1 || len(b.Questions) > 5 {
		return fmt.Errorf("qcm block: question count must be between 1 and 5, got %d", len(b.Questions))
	}
	for i := range b.Questions {
		if err := b.Questions[i].Validate(); err != nil {
			return fmt.Errorf("qcm block question %d: %w", i, err)
		}
	}
	return nil
}

type OpenBlock struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Topic     string         `json:"topic"`
	Questions []OpenQuestion `json:"questions"`
}

func (b *OpenBlock) Validate() error {
	if len(b.Questions) < 1 || len(b.Questions) > 3 {
		return fmt.Errorf("open block: question count must be between 1 and 3, got %d", len(b.Questions))
	}
	for i := range b.Questions {
		if err := b.Questions[i].Validate(); err != nil {
			return fmt.Errorf("open block question %d: %w", i, err)
		}
	}
	return nil
}

// ExerciseBlock is the tagged union of QCM and open-question blocks.
// The "type" field of the raw JSON selects the variant.
type ExerciseBlock struct {
	QCM  *QCMBlock
	Open *OpenBlock
}

func (b ExerciseBlock) Type() string {
	switch {
	case b.QCM != nil:
		return ExerciseTypeQCM
	case b.Open != nil:
		return ExerciseTypeOpen
	default:
		return ""
	}
}

func (b ExerciseBlock) MarshalJSON() ([]byte, error) {
	switch {
	case b.QCM != nil:
		return json.Marshal(b.QCM)
	case b.Open != nil:
		return json.Marshal(b.Open)
	default:
		return nil, fmt.Errorf("exercise block: no variant set")
	}
}

func (b *ExerciseBlock) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case ExerciseTypeQCM:
		var qcm QCMBlock
		if err := json.Unmarshal(data, &qcm); err != nil {
			return err
		}
		b.QCM = &qcm
		b.Open = nil
	case ExerciseTypeOpen:
		var open OpenBlock
		if err := json.Unmarshal(data, &open); err != nil {
			return err
		}
		b.Open = &open
		b.QCM = nil
	default:
		return fmt.Errorf("exercise block: unknown type %q", tag.Type)
	}
	return nil
}

func (b *ExerciseBlock) Validate() error {
	switch {
	case b.QCM != nil:
		return b.QCM.Validate()
	case b.Open != nil:
		return b.Open.Validate()
	default:
		return fmt.Errorf("exercise block: missing type discriminator")
	}
}

// ExerciseOutput is the final generated exercise artifact.
type ExerciseOutput struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Exercises []ExerciseBlock `json:"exercises"`
}

func (o *ExerciseOutput) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("exercise output: missing id")
	}
	if len(o.Exercises) == 0 {
		return fmt.Errorf("exercise output: at least one exercise block is required")
	}
	for i := range o.Exercises {
		if err := o.Exercises[i].Validate(); err != nil {
			return fmt.Errorf("exercise output block %d: %w", i, err)
		}
	}
	return nil
}
