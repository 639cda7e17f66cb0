package core

import "context"

// Model is an addressable generation backend. Name is the stable identifier
// used for log matching and scheduling; model equality is by name.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (Response, error)
}
