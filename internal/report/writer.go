package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/contest-provisioner/internal/domain"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

// Format is a result file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, csv, yaml or yml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apperrors.NewValidationError("unsupported result format", map[string]any{"format": s})
}

// Record is one flat row of the result file. Passwords are never written.
type Record struct {
	Username    string  `json:"username" yaml:"username"`
	Name        string  `json:"name" yaml:"name"`
	TeamID      *string `json:"team_id" yaml:"team_id"`
	UserID      *string `json:"user_id" yaml:"user_id"`
	TeamStatus  string  `json:"team_status" yaml:"team_status"`
	UserStatus  string  `json:"user_status" yaml:"user_status"`
	TeamMessage string  `json:"team_message,omitempty" yaml:"team_message,omitempty"`
	UserMessage string  `json:"user_message,omitempty" yaml:"user_message,omitempty"`
}

var csvHeader = []string{"username", "name", "team_id", "user_id", "team_status", "user_status", "team_message", "user_message"}

// Records flattens the ledger in processing order.
func Records(ledger *domain.Ledger) []Record {
	outcomes := ledger.Outcomes()
	records := make([]Record, 0, len(outcomes))
	for _, o := range outcomes {
		rec := Record{
			TeamStatus:  string(o.TeamStatus),
			UserStatus:  string(o.UserStatus),
			TeamMessage: o.TeamDiagnostic,
			UserMessage: o.UserDiagnostic,
			UserID:      o.UserID,
		}
		if o.Request != nil {
			rec.Username = o.Request.Username
			rec.Name = o.Request.Name()
		}
		if o.TeamID != "" {
			id := o.TeamID
			rec.TeamID = &id
		}
		records = append(records, rec)
	}
	return records
}

// WriteFile writes the ledger to path, creating parent directories as needed.
func WriteFile(path string, format Format, ledger *domain.Ledger) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create result directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := Write(f, format, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes the ledger records in the given format.
func Write(w io.Writer, format Format, ledger *domain.Ledger) error {
	records := Records(ledger)
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, records)
	}
	return apperrors.NewValidationError("unsupported result format", map[string]any{"format": string(format)})
}

func writeCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Username, r.Name, deref(r.TeamID), deref(r.UserID), r.TeamStatus, r.UserStatus, r.TeamMessage, r.UserMessage}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
