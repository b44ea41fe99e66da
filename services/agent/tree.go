package agent

import (
	"coursegen/services"
	"coursegen/services/course"
	"coursegen/services/deepcourse"
	"coursegen/services/exercise"
)

// Agent names. The chat boundary uses these as routing hints in
// message_context and as the per-session active agent.
const (
	AgentRoot                  = "root"
	AgentExerciseClarification = "exercise_clarification"
	AgentExerciseGeneration    = "exercise_generation"
	AgentCourse                = "course"
	AgentDeepCourse            = "deepcourse"
	AgentCopilotExercise       = "copilot_exercise"
	AgentCopilotCourse         = "copilot_course"
	AgentCopilotNewChapter     = "copilot_new_chapter"
)

// NewAgentTree builds the full agent tree. The root routes to the domain
// agents; copilots hang off the root so the chat boundary can start a
// session directly on them.
func NewAgentTree(
	exercises *exercise.Service,
	courses *course.Service,
	deepcourses *deepcourse.Service,
	documentStore *services.DocumentStoreService,
	deepCourseStore *services.DeepCourseStoreService,
) *Agent {
	exerciseGeneration := &Agent{
		Name:        AgentExerciseGeneration,
		Instruction: exerciseGenerationInstruction,
		Tools:       []AgentTool{NewGenerateExercisesTool(exercises)},
	}

	exerciseClarification := &Agent{
		Name:        AgentExerciseClarification,
		Instruction: exerciseClarificationInstruction,
		SubAgents:   []*Agent{exerciseGeneration},
	}

	courseAgent := &Agent{
		Name:        AgentCourse,
		Instruction: courseInstruction,
		Tools:       []AgentTool{NewGenerateCoursesTool(courses)},
	}

	deepCourseAgent := &Agent{
		Name:        AgentDeepCourse,
		Instruction: deepCourseInstruction,
		Tools:       []AgentTool{NewGenerateDeepCourseTool(deepcourses)},
	}

	exerciseCopilot := &Agent{
		Name:        AgentCopilotExercise,
		Instruction: exerciseCopilotInstruction,
		Tools:       []AgentTool{NewFetchContextTool(documentStore)},
	}

	courseCopilot := &Agent{
		Name:        AgentCopilotCourse,
		Instruction: courseCopilotInstruction,
		Tools:       []AgentTool{NewFetchContextTool(documentStore)},
	}

	newChapterCopilot := &Agent{
		Name:        AgentCopilotNewChapter,
		Instruction: newChapterCopilotInstruction,
		Tools: []AgentTool{
			NewFetchContextDeepCourseTool(deepCourseStore),
			NewGenerateNewChapterTool(deepcourses),
		},
	}

	return &Agent{
		Name:        AgentRoot,
		Instruction: rootInstruction,
		SubAgents: []*Agent{
			exerciseClarification,
			courseAgent,
			deepCourseAgent,
			exerciseCopilot,
			courseCopilot,
			newChapterCopilot,
		},
	}
}
