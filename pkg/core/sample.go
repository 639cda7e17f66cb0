package core

// Sample is a single evaluation input and expected output.
type Sample struct {
	ID       string            `json:"id"`
	Input    string            `json:"input"`
	Target   string            `json:"target"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
