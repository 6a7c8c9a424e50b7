// Package report serializes finalized reports to the on-disk format:
// an object keyed by timestamp, tests, overall_status and issues_found,
// written as indented JSON or as YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/netcheck/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json or yaml)", s)
}

func (f Format) Ext() string { return string(f) }

func Encode(w io.Writer, r *domain.Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", f)
}

// Decode parses a report and checks that its status and issues agree with
// its tests.
func Decode(rd io.Reader, f Format) (*domain.Report, error) {
	var r domain.Report
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(rd).Decode(&r)
	case FormatYAML:
		err = yaml.NewDecoder(rd).Decode(&r)
	default:
		return nil, fmt.Errorf("unknown report format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s report: %w", f, err)
	}
	if r.Issues == nil {
		r.Issues = []string{}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return domain.Restore(r.Timestamp, r.Outcomes), nil
}

// FileName is internet_check_YYYYMMDD_HHMMSS.<ext>, stamped with the run time.
func FileName(r *domain.Report, f Format) string {
	return fmt.Sprintf("internet_check_%s.%s", r.Timestamp.Format("20060102_150405"), f.Ext())
}

// WriteFile writes the report into dir and returns the file path.
func WriteFile(dir string, r *domain.Report, f Format) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(r, f))
	fh, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(fh, r, f); err != nil {
		fh.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, fh.Close()
}

func ReadFile(path string) (*domain.Report, error) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh, f)
}
