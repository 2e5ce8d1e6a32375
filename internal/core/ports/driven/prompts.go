package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswer grounds an answer in retrieved past questions.
	// The template expects two %s placeholders: the numbered context
	// questions, then the user's query.
	PromptAnswer = "answer"
)

// PromptStoreAware is implemented by services whose prompts can be
// replaced from a PromptStore after construction.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
