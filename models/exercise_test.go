package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func validQCMQuestion() QCMQuestion {
	return QCMQuestion{
		ID:       "q1",
		Question: "Que vaut 2+2 ?",
		Answers: []QCMAnswer{
			{Text: "4", IsCorrect: true},
			{Text: "5"},
		},
		Explanation: "Addition simple.",
	}
}

func TestQCMQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*QCMQuestion)
		wantErr string
	}{
		{"valid", func(q *QCMQuestion) {}, ""},
		{"empty question", func(q *QCMQuestion) { q.Question = "  " }, "empty question"},
		{"too few answers", func(q *QCMQuestion) { q.Answers = q.Answers[:1] }, "answer count"},
		{"too many answers", func(q *QCMQuestion) {
			q.Answers = append(q.Answers, QCMAnswer{}, QCMAnswer{}, QCMAnswer{}, QCMAnswer{})
		}, "answer count"},
		{"no correct answer", func(q *QCMQuestion) { q.Answers[0].IsCorrect = false }, "at least one answer"},
		{"multi flag without multiple correct", func(q *QCMQuestion) { q.MultiAnswers = true }, "multi_answers"},
		{"multiple correct without multi flag", func(q *QCMQuestion) { q.Answers[1].IsCorrect = true }, "multi_answers"},
		{"multi flag consistent", func(q *QCMQuestion) {
			q.Answers[1].IsCorrect = true
			q.MultiAnswers = true
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQCMQuestion()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExerciseBlockUnmarshalSelectsVariant(t *testing.T) {
	var block ExerciseBlock
	raw := `{"type": "qcm", "id": "b1", "topic": "fractions", "questions": []}`
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		t.Fatalf("unmarshal qcm: %v", err)
	}
	if block.QCM == nil || block.Open != nil || block.Type() != ExerciseTypeQCM {
		t.Errorf("qcm variant not selected: %+v", block)
	}

	raw = `{"type": "open", "id": "b2", "topic": "fractions", "questions": []}`
	if err := json.Unmarshal([]byte(raw), &block); err != nil {
		t.Fatalf("unmarshal open: %v", err)
	}
	if block.Open == nil || block.QCM != nil || block.Type() != ExerciseTypeOpen {
		t.Errorf("open variant not selected and previous variant not cleared: %+v", block)
	}
}

func TestExerciseBlockUnmarshalRejectsMissingType(t *testing.T) {
	var block ExerciseBlock
	if err := json.Unmarshal([]byte(`{"topic": "fractions"}`), &block); err == nil {
		t.Error("missing type discriminator should fail")
	}
	if err := json.Unmarshal([]byte(`{"type": "essay"}`), &block); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestExerciseBlockMarshalRoundTrip(t *testing.T) {
	block := ExerciseBlock{QCM: &QCMBlock{
		ID:        "b1",
		Type:      ExerciseTypeQCM,
		Topic:     "fractions",
		Questions: []QCMQuestion{validQCMQuestion()},
	}}

	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ExerciseBlock
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type() != ExerciseTypeQCM || decoded.QCM.Topic != "fractions" {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestExercisePlanValidate(t *testing.T) {
	plan := ExercisePlan{
		Difficulty: "Débutant",
		Exercises: []ExercisePlanItem{
			{Type: ExerciseTypeQCM, Topic: "les fractions"},
			{Type: ExerciseTypeOpen, Topic: "les pourcentages"},
		},
	}
	if err := plan.Validate(); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}

	plan.Exercises[1].Type = "essay"
	if err := plan.Validate(); err == nil {
		t.Error("invalid item type should fail")
	}

	plan.Exercises[1].Type = ExerciseTypeOpen
	plan.Exercises[1].Topic = "Les Fractions "
	if err := plan.Validate(); err == nil {
		t.Error("duplicate topics should fail regardless of case")
	}

	plan.Exercises = nil
	if err := plan.Validate(); err == nil {
		t.Error("empty plan should fail")
	}
}

func TestExercisePlanMatchesRequestedType(t *testing.T) {
	mixed := ExercisePlan{Exercises: []ExercisePlanItem{
		{Type: ExerciseTypeQCM, Topic: "a"},
		{Type: ExerciseTypeOpen, Topic: "b"},
	}}
	qcmOnly := ExercisePlan{Exercises: []ExercisePlanItem{
		{Type: ExerciseTypeQCM, Topic: "a"},
		{Type: ExerciseTypeQCM, Topic: "b"},
	}}

	if err := mixed.MatchesRequestedType(ExerciseTypeBoth); err != nil {
		t.Errorf("mixed plan for both: %v", err)
	}
	if err := qcmOnly.MatchesRequestedType(ExerciseTypeQCM); err != nil {
		t.Errorf("qcm plan for qcm: %v", err)
	}
	if err := qcmOnly.MatchesRequestedType(ExerciseTypeBoth); err == nil {
		t.Error("single-kind plan for a mixed request should fail")
	}
	if err := mixed.MatchesRequestedType(ExerciseTypeQCM); err == nil {
		t.Error("open item in a qcm-only request should fail")
	}
	if err := mixed.MatchesRequestedType(ExerciseTypeOpen); err == nil {
		t.Error("qcm item in an open-only request should fail")
	}

	single := ExercisePlan{Exercises: []ExercisePlanItem{{Type: ExerciseTypeQCM, Topic: "a"}}}
	if err := single.MatchesRequestedType(ExerciseTypeBoth); err != nil {
		t.Errorf("one-item mixed request cannot hold both kinds: %v", err)
	}
}

func TestExerciseOutputValidate(t *testing.T) {
	output := ExerciseOutput{
		ID:    "e1",
		Title: "Fractions",
		Exercises: []ExerciseBlock{
			{Open: &OpenBlock{
				ID:        "b1",
				Type:      ExerciseTypeOpen,
				Topic:     "fractions",
				Questions: []OpenQuestion{{ID: "q1", Question: "Expliquez."}},
			}},
		},
	}
	if err := output.Validate(); err != nil {
		t.Errorf("valid output rejected: %v", err)
	}

	output.Exercises = append(output.Exercises, ExerciseBlock{})
	if err := output.Validate(); err == nil {
		t.Error("block without variant should fail")
	}

	output.Exercises = nil
	if err := output.Validate(); err == nil {
		t.Error("empty output should fail")
	}
}
