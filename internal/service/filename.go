package service

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameLength bounds sanitized names so "<uuid>-<name>" stays under the
// 255 byte file name limit and fits the original_name column.
const MaxFilenameLength = 200

// SanitizeFilename reduces a client supplied name to a safe base name made of
// ASCII letters, digits, '.', '_' and '-'. Names longer than MaxFilenameLength
// are shortened, keeping the extension. It returns "" when nothing usable is left.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			ascii.WriteByte(' ')
		case r < 0x80:
			ascii.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(ascii.String()), "_")

	var out strings.Builder
	for _, r := range joined {
		if isFilenameRune(r) {
			out.WriteRune(r)
		}
	}

	return truncateFilename(strings.Trim(out.String(), "._"))
}

func truncateFilename(name string) string {
	if len(name) <= MaxFilenameLength {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > MaxFilenameLength/4 {
		ext = ""
	}
	base := strings.TrimRight(name[:MaxFilenameLength-len(ext)], "._")
	if base == "" {
		return ""
	}
	return base + ext
}

func isFilenameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '.' || r == '_' || r == '-'
}

// extension returns the lowercase extension of name including the dot.
func extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
