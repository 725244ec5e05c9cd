package roster

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

func TestLoad(t *testing.T) {
	input := "username,password,tid\n" +
		"alice,p1,t001\n" +
		" bob ,p2 , t002 \n" +
		",p3,t003\n" +
		"dave,,t004\n" +
		"erin,p5\n"

	res, err := Load(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(res.Requests))
	}
	bob := res.Requests[1]
	if bob.Username != "bob" || bob.Password != "p2 " || bob.ExternalTeamID != "t002" {
		t.Errorf("bob = %+v (password must not be trimmed)", bob)
	}
	if bob.DisplayName != "bob" || bob.IP != nil {
		t.Errorf("bob display/ip = %q/%v", bob.DisplayName, bob.IP)
	}

	if len(res.Warnings) != 3 {
		t.Fatalf("warnings = %+v, want 3", res.Warnings)
	}
	wantRows := []int{3, 4, 5}
	for i, w := range res.Warnings {
		if w.Row != wantRows[i] {
			t.Errorf("warning %d row = %d, want %d", i, w.Row, wantRows[i])
		}
		if strings.Contains(w.Message, "p3") || strings.Contains(w.Message, "p5") {
			t.Errorf("warning leaks a password: %q", w.Message)
		}
	}
}

func TestLoadNameAndIPColumns(t *testing.T) {
	input := "Username,Password,TID,Name,IP\n" +
		"alice,p1,t001,Alice Kim,10.0.0.1\n" +
		"bob,p2,t002,,\n"

	res, err := Load(strings.NewReader(input), Options{IPStrict: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(res.Requests))
	}
	alice := res.Requests[0]
	if alice.DisplayName != "Alice Kim" || alice.IP == nil || *alice.IP != "10.0.0.1" {
		t.Errorf("alice = %+v", alice)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "ip") {
		t.Errorf("warnings = %+v", res.Warnings)
	}

	res, err = Load(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	for _, r := range res.Requests {
		if r.IP != nil {
			t.Errorf("%s carries an ip although the batch is not ip-strict", r.Username)
		}
	}
}

func TestLoadMissingHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
	}{
		{"empty", "", Options{}},
		{"no tid", "username,password\nalice,p1\n", Options{}},
		{"ip strict without ip column", "username,password,tid\nalice,p1,t001\n", Options{IPStrict: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input), tt.opts)
			if !apperrors.IsCode(err, "VALIDATION_FAILED") {
				t.Errorf("Load() error = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestLoadByteOrderMarks(t *testing.T) {
	plain := "username,password,tid\nalice,p1,t001\n"

	utf16, _, err := transform.String(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(), plain)
	if err != nil {
		t.Fatal(err)
	}
	inputs := map[string]string{
		"utf-8 bom":    "\xef\xbb\xbf" + plain,
		"utf-16le bom": utf16,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			res, err := Load(bytes.NewReader([]byte(input)), Options{})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(res.Requests) != 1 || res.Requests[0].Username != "alice" {
				t.Errorf("requests = %+v", res.Requests)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("LoadFile() error = %v, want VALIDATION_FAILED", err)
	}
}

func TestRewriteWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte("username\n홍길동\xff\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := RewriteWithBOM(path); err != nil {
		t.Fatalf("RewriteWithBOM() error = %v", err)
	}
	first, _ := os.ReadFile(path)
	if !bytes.HasPrefix(first, []byte("\xef\xbb\xbf")) {
		t.Fatalf("missing BOM: %q", first)
	}
	if !bytes.Contains(first, []byte("홍길동�")) {
		t.Errorf("invalid byte not replaced: %q", first)
	}

	if err := RewriteWithBOM(path); err != nil {
		t.Fatalf("second RewriteWithBOM() error = %v", err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Errorf("rewrite is not idempotent:\n%q\n%q", first, second)
	}
}
