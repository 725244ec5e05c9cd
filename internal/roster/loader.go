package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spec-kit/contest-provisioner/internal/domain"
	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

// Column names understood by the loader.
const (
	ColumnUsername = "username"
	ColumnPassword = "password"
	ColumnTeamID   = "tid"
	ColumnName     = "name"
	ColumnIP       = "ip"
)

// Options controls roster validation.
type Options struct {
	// IPStrict requires an ip column and a non-empty address on every row.
	IPStrict bool
}

// Warning is a non-fatal problem with one row. Row is 1-based over data rows.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result holds the accepted requests in file order and the rows that were dropped.
type Result struct {
	Requests []domain.ProvisionRequest
	Warnings []Warning
}

// LoadFile reads a roster CSV from disk.
func LoadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewValidationError("cannot open roster", map[string]any{"path": path, "error": err.Error()})
	}
	defer f.Close()
	return Load(f, opts)
}

// Load parses a roster. UTF-8 and UTF-16 byte order marks are honoured.
// A missing required header is a validation error; rows with missing fields are dropped with a warning.
func Load(r io.Reader, opts Options) (*Result, error) {
	reader := csv.NewReader(decodingReader(r))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewValidationError("roster is empty: no header row", nil)
		}
		return nil, apperrors.NewValidationError("cannot read roster header", map[string]any{"error": err.Error()})
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	required := []string{ColumnUsername, ColumnPassword, ColumnTeamID}
	if opts.IPStrict {
		required = append(required, ColumnIP)
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("roster header is missing required columns", map[string]any{
			"missing": missing,
			"headers": headers,
		})
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	result := &Result{}
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Row: rowNum, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}

		username := strings.TrimSpace(field(row, ColumnUsername))
		password := field(row, ColumnPassword)
		teamID := strings.TrimSpace(field(row, ColumnTeamID))
		ip := strings.TrimSpace(field(row, ColumnIP))

		var absent []string
		if username == "" {
			absent = append(absent, ColumnUsername)
		}
		if password == "" {
			absent = append(absent, ColumnPassword)
		}
		if teamID == "" {
			absent = append(absent, ColumnTeamID)
		}
		if opts.IPStrict && ip == "" {
			absent = append(absent, ColumnIP)
		}
		if len(absent) > 0 {
			result.Warnings = append(result.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("skipped %q: missing %s", username, strings.Join(absent, ", ")),
			})
			continue
		}

		req := domain.ProvisionRequest{
			Username:       username,
			DisplayName:    strings.TrimSpace(field(row, ColumnName)),
			Password:       password,
			ExternalTeamID: teamID,
		}
		if req.DisplayName == "" {
			req.DisplayName = username
		}
		if opts.IPStrict {
			req.IP = &ip
		}
		result.Requests = append(result.Requests, req)
	}

	return result, nil
}

// decodingReader strips a UTF-8 BOM or transcodes UTF-16 with a BOM; anything else is read as UTF-8.
func decodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
