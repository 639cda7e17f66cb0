package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// FileDataset loads samples from a JSON array or JSONL file.
type FileDataset struct {
	Path     string
	NameHint string
}

func NewFileDataset(path string) *FileDataset {
	return &FileDataset{Path: path}
}

func (d *FileDataset) Name() string {
	if d.NameHint != "" {
		return d.NameHint
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *FileDataset) Len(ctx context.Context) (int, error) {
	samples, err := d.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (d *FileDataset) Samples(ctx context.Context) (<-chan core.Sample, <-chan error) {
	sampleCh := make(chan core.Sample)
	errCh := make(chan error, 1)

	go func() {
		defer close(sampleCh)
		defer close(errCh)

		samples, err := d.load(ctx)
		if err != nil {
			errCh <- err
			return
		}
		for _, sample := range samples {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case sampleCh <- sample:
			}
		}
	}()

	return sampleCh, errCh
}

func (d *FileDataset) load(ctx context.Context) ([]core.Sample, error) {
	switch strings.ToLower(filepath.Ext(d.Path)) {
	case ".json":
		return loadJSONSamples(d.Path)
	case ".jsonl":
		return loadJSONLSamples(ctx, d.Path)
	default:
		return nil, errors.New("dataset: unsupported format, use .json or .jsonl")
	}
}

func loadJSONSamples(path string) ([]core.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []core.Sample
	if err := json.NewDecoder(file).Decode(&samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func loadJSONLSamples(ctx context.Context, path string) ([]core.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var samples []core.Sample
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var sample core.Sample
		if err := json.Unmarshal([]byte(line), &sample); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, scanner.Err()
}
