package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lukasberglund/inspect-ai/pkg/core"
	"github.com/lukasberglund/inspect-ai/pkg/model"
)

// ModelFactory builds a model backend for a provider-local model name.
type ModelFactory func(name string) (core.Model, error)

// Registry maps provider prefixes to model factories. It is explicit state
// passed into the entry point, so callers can substitute backends and tests
// never depend on process-wide lookup.
type Registry struct {
	factories map[string]ModelFactory
}

func New() *Registry {
	return &Registry{factories: make(map[string]ModelFactory)}
}

// Default returns a registry with the built-in providers registered.
func Default() *Registry {
	r := New()
	r.Register("mockllm", func(name string) (core.Model, error) {
		return model.MockModel{NameValue: "mockllm/" + name}, nil
	})
	r.Register("openai", func(name string) (core.Model, error) {
		return model.NewOpenAIModelFromEnv(name)
	})
	r.Register("anthropic", func(name string) (core.Model, error) {
		return model.NewAnthropicModelFromEnv(name)
	})
	r.Register("google", func(name string) (core.Model, error) {
		return model.NewGeminiModelFromEnv(name)
	})
	r.Register("ollama", func(name string) (core.Model, error) {
		return model.NewOllamaModel("", name), nil
	})
	return r
}

// Register installs a factory for a provider prefix, replacing any existing
// registration.
func (r *Registry) Register(provider string, factory ModelFactory) {
	r.factories[provider] = factory
}

// Get resolves a "provider/model" reference to a model backend.
func (r *Registry) Get(ref string) (core.Model, error) {
	provider, name, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("registry: model reference %q must be provider/model", ref)
	}
	factory, ok := r.factories[provider]
	if !ok {
		return nil, fmt.Errorf("registry: unknown provider %q (have %s)", provider, strings.Join(r.Providers(), ", "))
	}
	return factory(name)
}

// Providers lists registered provider prefixes, sorted.
func (r *Registry) Providers() []string {
	providers := make([]string, 0, len(r.factories))
	for provider := range r.factories {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}
