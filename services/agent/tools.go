package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"coursegen/models"
	"coursegen/services"
	"coursegen/services/course"
	"coursegen/services/deepcourse"
	"coursegen/services/exercise"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// AgentTool interface that all tools must implement
type AgentTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	GetAnthropicToolSpec() anthropic.ToolInputSchemaParam
}

// Tool names the runner intercepts to extract redirect information.
const (
	ToolGenerateExercises  = "generate_exercises"
	ToolGenerateCourses    = "generate_courses"
	ToolGenerateDeepCourse = "generate_deepcourse"
	ToolGenerateNewChapter = "generate_new_chapter"
)

func isGenerationTool(name string) bool {
	switch name {
	case ToolGenerateExercises, ToolGenerateCourses, ToolGenerateDeepCourse, ToolGenerateNewChapter:
		return true
	}
	return false
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

func marshalToolOutput(output *models.GenerativeToolOutput) (string, error) {
	result, err := json.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation tool output: %v", err)
	}
	return string(result), nil
}

type GenerateExercisesTool struct {
	exercises *exercise.Service
}

func NewGenerateExercisesTool(exercises *exercise.Service) GenerateExercisesTool {
	return GenerateExercisesTool{exercises: exercises}
}

func (g GenerateExercisesTool) Name() string {
	return ToolGenerateExercises
}

func (g GenerateExercisesTool) Description() string {
	return "Generates a set of exercises from a fully clarified request and stores it as a document. All fields are required."
}

func (g GenerateExercisesTool) Call(ctx context.Context, input string) (string, error) {
	var synthesis models.ExerciseSynthesis
	if err := json.Unmarshal([]byte(input), &synthesis); err != nil {
		return "", fmt.Errorf("failed to parse generate exercises tool input: %v", err)
	}
	if err := synthesis.Validate(); err != nil {
		return fmt.Sprintf("The request is incomplete: %v. Ask the user for the missing information.", err), nil
	}

	rc := RequestContextFrom(ctx)
	output, err := g.exercises.GenerateForAgent(ctx, rc.UserID, &synthesis)
	if err != nil {
		return "", fmt.Errorf("failed to generate exercises: %v", err)
	}

	return marshalToolOutput(output)
}

func (g GenerateExercisesTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[models.ExerciseSynthesis]()
}

type GenerateCoursesTool struct {
	courses *course.Service
}

func NewGenerateCoursesTool(courses *course.Service) GenerateCoursesTool {
	return GenerateCoursesTool{courses: courses}
}

func (g GenerateCoursesTool) Name() string {
	return ToolGenerateCourses
}

func (g GenerateCoursesTool) Description() string {
	return "Generates a structured course from a fully clarified request and stores it as a document. All fields are required."
}

func (g GenerateCoursesTool) Call(ctx context.Context, input string) (string, error) {
	var synthesis models.CourseSynthesis
	if err := json.Unmarshal([]byte(input), &synthesis); err != nil {
		return "", fmt.Errorf("failed to parse generate courses tool input: %v", err)
	}
	if err := synthesis.Validate(); err != nil {
		return fmt.Sprintf("The request is incomplete: %v. Ask the user for the missing information.", err), nil
	}

	rc := RequestContextFrom(ctx)
	output, err := g.courses.GenerateForAgent(ctx, rc.UserID, &synthesis)
	if err != nil {
		return "", fmt.Errorf("failed to generate course: %v", err)
	}

	return marshalToolOutput(output)
}

func (g GenerateCoursesTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[models.CourseSynthesis]()
}

type GenerateDeepCourseTool struct {
	deepcourses *deepcourse.Service
}

func NewGenerateDeepCourseTool(deepcourses *deepcourse.Service) GenerateDeepCourseTool {
	return GenerateDeepCourseTool{deepcourses: deepcourses}
}

func (g GenerateDeepCourseTool) Name() string {
	return ToolGenerateDeepCourse
}

func (g GenerateDeepCourseTool) Description() string {
	return "Generates a complete multi-chapter deep course from a validated plan and stores it. Only call this after the user approved the plan."
}

func (g GenerateDeepCourseTool) Call(ctx context.Context, input string) (string, error) {
	var synthesis models.DeepCourseSynthesis
	if err := json.Unmarshal([]byte(input), &synthesis); err != nil {
		return "", fmt.Errorf("failed to parse generate deepcourse tool input: %v", err)
	}
	for i := range synthesis.SynthesisChapters {
		synthesis.SynthesisChapters[i].NormalizeEvaluation()
	}
	if err := synthesis.Validate(); err != nil {
		return fmt.Sprintf("The plan is incomplete: %v. Fix the plan before calling this tool again.", err), nil
	}

	rc := RequestContextFrom(ctx)
	output, err := g.deepcourses.GenerateForAgent(ctx, rc.UserID, &synthesis)
	if err != nil {
		return "", fmt.Errorf("failed to generate deep course: %v", err)
	}

	return marshalToolOutput(output)
}

func (g GenerateDeepCourseTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[models.DeepCourseSynthesis]()
}

type GenerateNewChapterToolInput struct {
	Description string `json:"description" jsonschema:"required,description=What the new chapter should cover, from the user's request"`
}

type GenerateNewChapterTool struct {
	deepcourses *deepcourse.Service
}

func NewGenerateNewChapterTool(deepcourses *deepcourse.Service) GenerateNewChapterTool {
	return GenerateNewChapterTool{deepcourses: deepcourses}
}

func (g GenerateNewChapterTool) Name() string {
	return ToolGenerateNewChapter
}

func (g GenerateNewChapterTool) Description() string {
	return "Generates one new chapter for the deep course attached to this conversation and appends it to the course."
}

func (g GenerateNewChapterTool) Call(ctx context.Context, input string) (string, error) {
	var params GenerateNewChapterToolInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse generate new chapter tool input: %v", err)
	}

	rc := RequestContextFrom(ctx)
	if rc.DeepCourseID == "" {
		return "No deep course is attached to this conversation, so no chapter can be added.", nil
	}

	output, err := g.deepcourses.GenerateNewChapterForAgent(ctx, rc.UserID, rc.DeepCourseID, params.Description)
	if err != nil {
		return "", fmt.Errorf("failed to generate new chapter: %v", err)
	}

	return marshalToolOutput(output)
}

func (g GenerateNewChapterTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[GenerateNewChapterToolInput]()
}

type FetchContextToolInput struct{}

// FetchContextTool gives copilot agents the full artifact the conversation
// is about. The document id comes from the request context, never from the
// model.
type FetchContextTool struct {
	documentStore *services.DocumentStoreService
}

func NewFetchContextTool(documentStore *services.DocumentStoreService) FetchContextTool {
	return FetchContextTool{documentStore: documentStore}
}

func (f FetchContextTool) Name() string {
	return "fetch_context"
}

func (f FetchContextTool) Description() string {
	return "Fetches the full content of the document this conversation is about"
}

func (f FetchContextTool) Call(ctx context.Context, input string) (string, error) {
	rc := RequestContextFrom(ctx)
	if rc.DocumentID == "" {
		return "No document is attached to this conversation.", nil
	}

	document, err := f.documentStore.GetDocumentByID(rc.DocumentID)
	if err != nil {
		return fmt.Sprintf("The document could not be loaded: %v.", err), nil
	}

	type documentContext struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}

	result, err := json.Marshal(documentContext{
		ID:      document.ID,
		Type:    document.DocumentType,
		Content: document.Contenu,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal document context: %v", err)
	}

	return string(result), nil
}

func (f FetchContextTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[FetchContextToolInput]()
}

type FetchContextDeepCourseToolInput struct{}

type FetchContextDeepCourseTool struct {
	deepCourseStore *services.DeepCourseStoreService
}

func NewFetchContextDeepCourseTool(deepCourseStore *services.DeepCourseStoreService) FetchContextDeepCourseTool {
	return FetchContextDeepCourseTool{deepCourseStore: deepCourseStore}
}

func (f FetchContextDeepCourseTool) Name() string {
	return "fetch_context_deep_course"
}

func (f FetchContextDeepCourseTool) Description() string {
	return "Fetches the title and chapter list of the deep course this conversation is about"
}

func (f FetchContextDeepCourseTool) Call(ctx context.Context, input string) (string, error) {
	rc := RequestContextFrom(ctx)
	if rc.DeepCourseID == "" {
		return "No deep course is attached to this conversation.", nil
	}

	row, err := f.deepCourseStore.GetDeepCourseByID(rc.DeepCourseID)
	if err != nil {
		return fmt.Sprintf("The deep course could not be loaded: %v.", err), nil
	}
	chapters, err := f.deepCourseStore.GetChaptersByDeepCourseID(rc.DeepCourseID)
	if err != nil {
		return fmt.Sprintf("The deep course chapters could not be loaded: %v.", err), nil
	}

	type chapterContext struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Position   int    `json:"position"`
		IsComplete bool   `json:"is_complete"`
	}
	type deepCourseContext struct {
		ID       string           `json:"id"`
		Title    string           `json:"title"`
		Chapters []chapterContext `json:"chapters"`
	}

	dcCtx := deepCourseContext{ID: row.ID, Title: row.Title}
	for _, chapter := range chapters {
		dcCtx.Chapters = append(dcCtx.Chapters, chapterContext{
			ID:         chapter.ID,
			Title:      chapter.Title,
			Position:   chapter.Position,
			IsComplete: chapter.IsComplete,
		})
	}

	result, err := json.Marshal(dcCtx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal deep course context: %v", err)
	}

	return string(result), nil
}

func (f FetchContextDeepCourseTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[FetchContextDeepCourseToolInput]()
}
