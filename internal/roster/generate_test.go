package roster

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

func TestGuessColumns(t *testing.T) {
	tests := []struct {
		headers  []string
		wantName string
		wantDept string
	}{
		{[]string{"타임스탬프", "이름", "학과"}, "이름", "학과"},
		{[]string{"학생 성명", "소속 학과(전공)"}, "학생 성명", "소속 학과(전공)"},
		{[]string{" 이름 ", "전공"}, " 이름 ", "전공"},
		{[]string{"email", "phone"}, "", ""},
	}
	for _, tt := range tests {
		name, dept := GuessColumns(tt.headers)
		if name != tt.wantName || dept != tt.wantDept {
			t.Errorf("GuessColumns(%v) = %q, %q; want %q, %q", tt.headers, name, dept, tt.wantName, tt.wantDept)
		}
	}
}

func TestNewTIDCounter(t *testing.T) {
	next, err := NewTIDCounter("XYZ0099")
	if err != nil {
		t.Fatalf("NewTIDCounter() error = %v", err)
	}
	for _, want := range []string{"XYZ0099", "XYZ0100", "XYZ0101"} {
		if got := next(); got != want {
			t.Errorf("next() = %q, want %q", got, want)
		}
	}

	for _, bad := range []string{"", "t-01", "001t", "abc"} {
		if _, err := NewTIDCounter(bad); !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("NewTIDCounter(%q) error = %v, want VALIDATION_FAILED", bad, err)
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword() error = %v", err)
	}
	if len(pw) != 12 {
		t.Errorf("len = %d, want 12", len(pw))
	}
	for _, c := range pw {
		if !strings.ContainsRune(passwordAlphabet, c) {
			t.Errorf("unexpected character %q", c)
		}
	}
	if pw, _ := GeneratePassword(0); len(pw) != DefaultPasswordLength {
		t.Errorf("default length = %d, want %d", len(pw), DefaultPasswordLength)
	}
}

func TestGenerateRoundTripsThroughLoader(t *testing.T) {
	input := "\xef\xbb\xbf타임스탬프,이름,소속 학과\n" +
		"2025-03-01,홍길동,컴퓨터 공학과\n" +
		"2025-03-01,,경영학과\n" +
		"2025-03-02,홍길동,컴퓨터공학과\n" +
		"2025-03-02,김철수,경영학과\n"

	var out bytes.Buffer
	res, err := Generate(strings.NewReader(input), &out, GenerateOptions{StartTID: "t000001", PasswordLength: 8})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Rows != 2 || res.NameColumn != "이름" || res.DeptColumn != "소속 학과" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Warnings) != 2 || res.Warnings[0].Row != 3 || res.Warnings[1].Row != 4 {
		t.Errorf("warnings = %+v", res.Warnings)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("\xef\xbb\xbf")) {
		t.Error("output must start with a UTF-8 BOM")
	}

	loaded, err := Load(bytes.NewReader(out.Bytes()), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Requests) != 2 {
		t.Fatalf("loaded %d requests, want 2", len(loaded.Requests))
	}
	first, second := loaded.Requests[0], loaded.Requests[1]
	if first.Username != "홍길동(컴퓨터공학과)" || first.ExternalTeamID != "t000001" || len(first.Password) != 8 {
		t.Errorf("first = %+v", first)
	}
	if second.Username != "김철수(경영학과)" || second.ExternalTeamID != "t000002" {
		t.Errorf("second = %+v", second)
	}
}

func TestGenerateRequiresColumns(t *testing.T) {
	var out bytes.Buffer
	_, err := Generate(strings.NewReader("email,phone\na@b.c,010\n"), &out, GenerateOptions{StartTID: "t1"})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("Generate() error = %v, want VALIDATION_FAILED", err)
	}
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	_, err := GenerateFile(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"), GenerateOptions{StartTID: "t1"})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("GenerateFile() error = %v, want VALIDATION_FAILED", err)
	}
}
