package llm

// Options contains model inference parameters.
type Options struct {
	Model       string  `json:"model"`       // Model name (e.g., "gpt-4-0613")
	Temperature float32 `json:"temperature"` // Creativity (0.0-2.0)
	MaxTokens   int     `json:"max_tokens"`  // Max tokens to generate
}

// Completion is the generated text of a single completion call and the
// token usage reported for it.
type Completion struct {
	Text             string `json:"text"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Turn represents a complete request-response pair, the unit recorded in the
// debug log and hashed into the turn chain.
type Turn struct {
	Model    string     `json:"model"`
	Request  []Message  `json:"request"`
	Response Completion `json:"response"`
}
