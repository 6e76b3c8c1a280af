package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daveroberts0321/socmap/parser/socmap"
)

// Render returns the generated package as newline-terminated text.
func Render(m *socmap.Map) string {
	return JoinLines(Generate(m))
}

// JoinLines terminates every line with a newline, including the last.
func JoinLines(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFile renders m and writes it to path, creating parent directories.
func WriteFile(m *socmap.Map, path string) error {
	return WriteLines(Generate(m), path)
}

// WriteLines writes newline-terminated lines to path.
func WriteLines(lines []string, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(JoinLines(lines)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
