package inspectlog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Write persists the log under logDir and returns the artifact path. The
// first write of a log picks a unique filename; later writes of the same log
// finalize the same artifact in place. Writes go through a temp file and
// rename so a crashed writer never leaves a truncated artifact at the final
// path.
func Write(logDir string, log *EvalLog) (string, error) {
	if logDir == "" {
		return "", fmt.Errorf("inspectlog: logDir is required")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	path := log.Location
	if path == "" {
		path = filepath.Join(logDir, buildLogFileName(log))
	}

	tmp, err := os.CreateTemp(logDir, ".inspect-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(log); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	log.Location = path
	return path, nil
}

// Read loads a full log, including sample bodies.
func Read(path string) (*EvalLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var log EvalLog
	if err := json.NewDecoder(file).Decode(&log); err != nil {
		return nil, err
	}
	log.Location = path
	return &log, nil
}

// ReadHeader loads only header metadata (status, identity, timestamps);
// sample bodies are discarded during decoding. Cheap enough to run across
// large log directories.
func ReadHeader(path string) (*EvalLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header struct {
		Version int       `json:"version"`
		Status  string    `json:"status"`
		Eval    EvalSpec  `json:"eval"`
		Stats   EvalStats `json:"stats"`
	}
	if err := json.NewDecoder(file).Decode(&header); err != nil {
		return nil, err
	}
	return &EvalLog{
		Version:  header.Version,
		Status:   header.Status,
		Eval:     header.Eval,
		Stats:    header.Stats,
		Location: path,
	}, nil
}

// List enumerates log headers under root, recursively. Unparsable or
// partially-written files are skipped rather than failing the scan: a log we
// cannot parse is never treated as authoritative, which favors re-running
// over reporting false success.
func List(root string) ([]*EvalLog, error) {
	var logs []*EvalLog
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		header, err := ReadHeader(path)
		if err != nil {
			return nil
		}
		logs = append(logs, header)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return logs, nil
}

// Remove deletes a log artifact.
func Remove(path string) error {
	return os.Remove(path)
}

func buildLogFileName(log *EvalLog) string {
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05.000000000")
	task := sanitizeName(log.Eval.Task)
	model := sanitizeName(log.Eval.Model)
	if task == "" {
		task = "task"
	}
	if model == "" {
		model = "model"
	}
	return fmt.Sprintf("%s_%s_%s_%04d.json", timestamp, task, model, log.Eval.Sequence)
}
