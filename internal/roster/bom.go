package roster

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RewriteWithBOM re-encodes a file as UTF-8 with a single leading byte order mark,
// which spreadsheet tools need to detect the encoding. Invalid UTF-8 sequences are
// replaced with U+FFFD. Running it twice leaves the file unchanged.
func RewriteWithBOM(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	out, _, err := transform.Bytes(unicode.UTF8BOM.NewEncoder(), text)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, out, info.Mode().Perm())
}
