package model

import (
	"context"

	"github.com/lukasberglund/inspect-ai/pkg/cache"
	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// CachedModel wraps a model with a disk-backed response cache.
type CachedModel struct {
	Model core.Model
	Cache *cache.Cache
}

func (c CachedModel) Name() string {
	if c.Model == nil {
		return ""
	}
	return c.Model.Name()
}

func (c CachedModel) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (core.Response, error) {
	if c.Model == nil {
		return core.Response{}, nil
	}
	if c.Cache != nil {
		if response, ok := c.Cache.Get(c.Name(), prompt, opts); ok {
			return response, nil
		}
	}
	response, err := c.Model.Generate(ctx, prompt, opts)
	if err != nil {
		return core.Response{}, err
	}
	if c.Cache != nil {
		_ = c.Cache.Set(c.Name(), prompt, opts, response)
	}
	return response, nil
}
