package services

// TaskType routes a generation task to a model tier so the expensive model
// is only used where it earns its cost.
type TaskType string

const (
  // Pro tier: grading and long-form analysis.
  TaskGradingDescriptive TaskType = "grading_descriptive"
  TaskComplexQuestionGen TaskType = "complex_question_gen"
  TaskDetailedExplain    TaskType = "detailed_explanation"

  // Flash tier: the default workload.
  TaskLessonGeneration   TaskType = "lesson_generation"
  TaskQuestionGeneration TaskType = "question_generation"
  TaskConceptExplanation TaskType = "concept_explanation"

  // Flash-lite tier: hints and one-liners.
  TaskHintGeneration    TaskType = "hint_generation"
  TaskSimpleExplanation TaskType = "simple_explanation"
  TaskDefinition        TaskType = "definition"
)

const (
  ModelPro       = "gemini-2.5-pro"
  ModelFlash     = "gemini-2.5-flash"
  ModelFlashLite = "gemini-2.5-flash-lite"
)

var taskToModel = map[TaskType]string{
  TaskGradingDescriptive: ModelPro,
  TaskComplexQuestionGen: ModelPro,
  TaskDetailedExplain:    ModelPro,
  TaskLessonGeneration:   ModelFlash,
  TaskQuestionGeneration: ModelFlash,
  TaskConceptExplanation: ModelFlash,
  TaskHintGeneration:     ModelFlashLite,
  TaskSimpleExplanation:  ModelFlashLite,
  TaskDefinition:         ModelFlashLite,
}

// ModelForTask returns the model for a task type, defaulting to the flash
// tier for unknown tasks.
func ModelForTask(task TaskType) string {
  if m, ok := taskToModel[task]; ok {
    return m
  }
  return ModelFlash
}
