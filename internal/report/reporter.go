// Package report defines the Reporter collaborator (§6): the execution core
// hands it a finished JobReport and never looks at how it's rendered.
// HTML/JSON/TXT/CSV theming lives entirely outside this module; JSONLReporter
// is the simplest concrete implementation that lets the module run without
// an external renderer attached.
package report

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/eastfield/archivist/internal/model"
)

type Reporter interface {
	Emit(report *model.JobReport) error
}

// JSONLReporter appends one JSON object per JobReport to a file, newline
// delimited.
type JSONLReporter struct {
	mu   sync.Mutex
	file *os.File
}

func NewJSONLReporter(path string) (*JSONLReporter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLReporter{file: f}, nil
}

func (r *JSONLReporter) Emit(report *model.JobReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = r.file.Write(b)
	return err
}

func (r *JSONLReporter) Close() error {
	return r.file.Close()
}

// Discard drops every report; useful for tests and -TestConfig dry runs.
type Discard struct{}

func (Discard) Emit(*model.JobReport) error { return nil }
