package cache

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

const defaultTTL = 7 * 24 * time.Hour

// Cache is a disk-backed response cache keyed by model, prompt, and
// generation options.
type Cache struct {
	Dir string
	TTL time.Duration
}

func New(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".inspect", "cache")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{Dir: dir, TTL: ttl}, nil
}

type cacheEntry struct {
	Response  core.Response `json:"response"`
	CachedAt  time.Time     `json:"cached_at"`
	ModelName string        `json:"model_name"`
}

func key(modelName, prompt string, opts core.GenerateOptions) string {
	parts := []string{
		modelName,
		prompt,
		opts.SystemPrompt,
		fmt.Sprintf("%.6f", opts.Temperature),
		fmt.Sprintf("%d", opts.MaxTokens),
		fmt.Sprintf("%.6f", opts.TopP),
	}
	if len(opts.Stop) > 0 {
		parts = append(parts, strings.Join(opts.Stop, "|"))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(k string) string {
	return filepath.Join(c.Dir, k+".json.gz")
}

func (c *Cache) Get(modelName, prompt string, opts core.GenerateOptions) (core.Response, bool) {
	p := c.path(key(modelName, prompt, opts))
	file, err := os.Open(p)
	if err != nil {
		return core.Response{}, false
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return core.Response{}, false
	}
	defer gz.Close()

	var entry cacheEntry
	if err := json.NewDecoder(gz).Decode(&entry); err != nil {
		return core.Response{}, false
	}
	if c.TTL > 0 && time.Since(entry.CachedAt) > c.TTL {
		_ = os.Remove(p)
		return core.Response{}, false
	}
	return entry.Response, true
}

func (c *Cache) Set(modelName, prompt string, opts core.GenerateOptions, response core.Response) error {
	p := c.path(key(modelName, prompt, opts))
	entry := cacheEntry{Response: response, CachedAt: time.Now(), ModelName: modelName}

	file, err := os.CreateTemp(c.Dir, "tmp-*.json.gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(file)
	if err := json.NewEncoder(gz).Encode(entry); err != nil {
		file.Close()
		os.Remove(file.Name())
		return err
	}
	if err := gz.Close(); err != nil {
		file.Close()
		os.Remove(file.Name())
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return err
	}
	if err := os.Rename(file.Name(), p); err != nil {
		os.Remove(file.Name())
		return err
	}
	return nil
}
