package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/tooltl/tooltl/utils"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a fetch when the job does not set one.
const DefaultTimeout = 30 * time.Second

// Job exports one published spreadsheet into a JSON file.
type Job struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// Output is the destination JSON file.
	Output string `yaml:"output"`
	// Sheet selects one sheet of a multi sheet payload. Empty exports every
	// sheet as an object keyed by sheet name.
	Sheet   string        `yaml:"sheet"`
	Timeout time.Duration `yaml:"timeout"`

	RowOptions `yaml:",inline"`
}

// Exporter fetches and converts sheets.
type Exporter struct {
	Client *http.Client
	Logger *zap.Logger
}

// Fetch downloads and decodes the payload served at url.
func (e *Exporter) Fetch(ctx context.Context, url string) (map[string]Values, error) {
	if !utils.IsValidUrl(url) {
		return nil, fmt.Errorf("sheets: invalid url %q", url)
	}
	data, err := utils.Download(ctx, e.Client, url, "")
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("sheets: %s did not return JSON", url)
	}
	return Decode(data)
}

// Export fetches the sheet of the job, converts its rows and writes the
// indented JSON atomically.
func (e *Exporter) Export(ctx context.Context, job Job) error {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if job.Output == "" {
		return errors.New("sheets: job has no output")
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sheets, err := e.Fetch(ctx, job.URL)
	if err != nil {
		return err
	}

	out, err := selectSheets(sheets, job)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("sheets: encoding %s: %w", job.Output, err)
	}
	if err := utils.WriteFileAtomic(job.Output, append(data, '\n')); err != nil {
		return err
	}
	logger.Info("sheet exported",
		zap.String("name", job.Name),
		zap.String("output", job.Output),
		zap.Int("sheets", len(sheets)),
	)
	return nil
}

func selectSheets(sheets map[string]Values, job Job) (any, error) {
	if values, ok := sheets[""]; ok && len(sheets) == 1 {
		if job.Sheet != "" {
			return nil, fmt.Errorf("sheets: payload has a single unnamed sheet, cannot select %q", job.Sheet)
		}
		return Rows(values, job.RowOptions)
	}

	if job.Sheet != "" {
		values, ok := sheets[job.Sheet]
		if !ok {
			return nil, fmt.Errorf("sheets: sheet %q not found", job.Sheet)
		}
		return Rows(values, job.RowOptions)
	}

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	all := newRecord()
	for _, name := range names {
		rows, err := Rows(sheets[name], job.RowOptions)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		all.set(name, rows)
	}
	return all, nil
}
