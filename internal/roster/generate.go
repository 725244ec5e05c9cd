package roster

import (
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// DefaultPasswordLength is the length of generated participant passwords.
const DefaultPasswordLength = 8

var (
	nameExact = []string{"이름"}
	nameHints = []string{"이름", "성명", "학생"}
	deptExact = []string{"소속 학과", "학과", "전공", "학부", "학과(전공)"}
	deptHints = []string{"소속 학과", "학과", "전공", "학부"}

	tidPattern = regexp.MustCompile(`^([A-Za-z]*)(\d+)$`)
)

// GenerateOptions controls roster generation.
type GenerateOptions struct {
	StartTID       string
	PasswordLength int
}

// GenerateResult describes a finished generation.
type GenerateResult struct {
	Rows       int
	NameColumn string
	DeptColumn string
	Warnings   []Warning
}

// GuessColumns picks the participant-name and department columns of a registration
// form export. Exact header matches win over substring matches.
func GuessColumns(headers []string) (nameCol, deptCol string) {
	for _, h := range headers {
		t := strings.TrimSpace(h)
		if nameCol == "" && contains(nameExact, t) {
			nameCol = h
		}
		if deptCol == "" && contains(deptExact, t) {
			deptCol = h
		}
	}
	if nameCol == "" {
		for _, h := range headers {
			if containsAny(h, nameHints) {
				nameCol = h
				break
			}
		}
	}
	if deptCol == "" {
		for _, h := range headers {
			if containsAny(h, deptHints) {
				deptCol = h
				break
			}
		}
	}
	return nameCol, deptCol
}

// NewTIDCounter returns a generator of sequential team ids that keeps the prefix and
// zero-padded width of start, e.g. t000001, t000002, ...
func NewTIDCounter(start string) (func() string, error) {
	m := tidPattern.FindStringSubmatch(start)
	if m == nil {
		return nil, apperrors.NewValidationError("team id must look like t000001", map[string]any{"start": start})
	}
	prefix, digits := m[1], m[2]
	width := len(digits)
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("team id number out of range", map[string]any{"start": start})
	}
	return func() string {
		v := fmt.Sprintf("%s%0*d", prefix, width, n)
		n++
		return v
	}, nil
}

// GeneratePassword returns a random password drawn from letters, digits and punctuation.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}
	limit := big.NewInt(int64(len(passwordAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(passwordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// GenerateFile converts a registration export into a provisioning roster on disk.
func GenerateFile(inPath, outPath string, opts GenerateOptions) (*GenerateResult, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, apperrors.NewValidationError("cannot open registration file", map[string]any{"path": inPath, "error": err.Error()})
	}
	defer in.Close()

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return nil, err
	}
	result, genErr := Generate(in, out, opts)
	if err := out.Close(); err != nil && genErr == nil {
		genErr = err
	}
	return result, genErr
}

// Generate reads a registration export and writes username,password,tid rows encoded as
// UTF-8 with a BOM. Usernames are "name(department)" with spaces removed from the department;
// rows missing either value or repeating a username are skipped with a warning.
// Warning rows count the header as row 1.
func Generate(r io.Reader, w io.Writer, opts GenerateOptions) (*GenerateResult, error) {
	next, err := NewTIDCounter(opts.StartTID)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decodingReader(r))
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewValidationError("registration file has no header row", nil)
		}
		return nil, apperrors.NewValidationError("cannot read registration header", map[string]any{"error": err.Error()})
	}

	nameCol, deptCol := GuessColumns(headers)
	if nameCol == "" || deptCol == "" {
		return nil, apperrors.NewValidationError("cannot find name/department columns", map[string]any{"headers": headers})
	}
	nameIdx, deptIdx := indexOf(headers, nameCol), indexOf(headers, deptCol)

	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(bw)
	if err := writer.Write([]string{ColumnUsername, ColumnPassword, ColumnTeamID}); err != nil {
		return nil, err
	}

	result := &GenerateResult{NameColumn: nameCol, DeptColumn: deptCol}
	seen := make(map[string]struct{})
	rowIdx := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowIdx++
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{Row: rowIdx, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}

		name := strings.TrimSpace(cell(row, nameIdx))
		dept := strings.ReplaceAll(strings.TrimSpace(cell(row, deptIdx)), " ", "")
		if name == "" || dept == "" {
			result.Warnings = append(result.Warnings, Warning{
				Row:     rowIdx,
				Message: fmt.Sprintf("skipped: name/department missing (name=%q, dept=%q)", name, dept),
			})
			continue
		}

		username := fmt.Sprintf("%s(%s)", name, dept)
		if _, dup := seen[username]; dup {
			result.Warnings = append(result.Warnings, Warning{Row: rowIdx, Message: fmt.Sprintf("skipped: duplicate username %s", username)})
			continue
		}
		seen[username] = struct{}{}

		password, err := GeneratePassword(opts.PasswordLength)
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
		if err := writer.Write([]string{username, password, next()}); err != nil {
			return nil, err
		}
		result.Rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return result, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
