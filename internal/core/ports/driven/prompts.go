package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystemBase opens every system prompt. No placeholders.
	PromptSystemBase = "system_base"

	// PromptGuardrails is interpolated when the user has an uploaded file.
	// No placeholders.
	PromptGuardrails = "guardrails"

	// PromptNoFile is interpolated when the user has no uploaded file.
	// No placeholders.
	PromptNoFile = "no_file"

	// PromptEvaluationRubric closes evaluation system prompts.
	// It must demand a "Genel Puan: XX/100" line. No placeholders.
	PromptEvaluationRubric = "evaluation_rubric"

	// PromptAnswerInstructions closes answer system prompts. No placeholders.
	PromptAnswerInstructions = "answer_instructions"

	// PromptSectionEvaluation is the user message of a section evaluation.
	// The template expects %[1]s (title), %[2]s (letter) and %[3]s (scope list).
	PromptSectionEvaluation = "section_evaluation"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
