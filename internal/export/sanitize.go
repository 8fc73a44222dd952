package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeName turns a scene name into a file-name stem. Letters, digits, '-'
// and '_' are kept, whitespace runs become a single '_', everything else is
// dropped. The result is cut to maxLen runes when maxLen > 0.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			pendingSep = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			if pendingSep {
				b.WriteRune('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = string(runes[:maxLen])
		}
	}
	return strings.Trim(cleaned, "_")
}

// FileName is the export file name for the scene at index i (zero based):
// a two-digit position, the sanitised name and the .tsx extension.
func FileName(i int, name string) string {
	stem := SanitizeName(name, maxStemLen)
	if stem == "" {
		stem = "Scene"
	}
	return fmt.Sprintf("%02d_%s.tsx", i+1, stem)
}

// ValidateOutputDir checks that dir is an absolute, clean path to an existing
// directory.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output_dir is required")
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("output_dir cannot contain path traversal")
		}
	}

	if !filepath.IsAbs(dir) {
		return fmt.Errorf("output_dir must be absolute")
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("output_dir must be clean path")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output_dir does not exist")
		}
		return fmt.Errorf("invalid output_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output_dir is not a directory")
	}

	return nil
}
