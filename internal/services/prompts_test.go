package services

import (
	"strings"
	"testing"
)

func TestPromptTemplate_CatalogLoads(t *testing.T) {
	for _, name := range []string{"lesson_generation", "concept_explanation", "question_generation", "hint_generation"} {
		tmpl, err := PromptTemplate(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if strings.TrimSpace(tmpl) == "" {
			t.Fatalf("%s: empty template", name)
		}
	}
}

func TestPromptTemplate_UnknownName(t *testing.T) {
	if _, err := PromptTemplate("does_not_exist"); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestRenderPrompt_SubstitutesPlaceholders(t *testing.T) {
	out := RenderPrompt("Explain {concept} in {subject} for a {level} student", map[string]interface{}{
		"concept": "entropy",
		"subject": "Chemistry",
		"level":   "beginner",
	})
	want := "Explain entropy in Chemistry for a beginner student"
	if out != want {
		t.Fatalf("rendered %q, want %q", out, want)
	}
}

func TestRenderPrompt_LeavesUnmatchedPlaceholders(t *testing.T) {
	out := RenderPrompt("{known} and {unknown}", map[string]interface{}{"known": "x"})
	if out != "x and {unknown}" {
		t.Fatalf("rendered %q", out)
	}
}

func TestModelForTask_TierRouting(t *testing.T) {
	cases := map[TaskType]string{
		TaskGradingDescriptive: ModelPro,
		TaskLessonGeneration:   ModelFlash,
		TaskHintGeneration:     ModelFlashLite,
		TaskType("mystery"):    ModelFlash,
	}
	for task, want := range cases {
		if got := ModelForTask(task); got != want {
			t.Fatalf("task %s routed to %s, want %s", task, got, want)
		}
	}
}
