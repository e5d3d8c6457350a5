// ABOUTME: YAML front matter parsing and rendering plus atomic file writes.
// ABOUTME: Supports the markdown backend's one-file-per-measurement layout.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// parseFrontmatter splits content into its YAML front matter and body.
// It returns an empty YAML string when content has no front matter.
func parseFrontmatter(content string) (string, string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, fmDelim+"\n") {
		return "", content
	}

	rest := content[len(fmDelim)+1:]
	if strings.HasPrefix(rest, fmDelim+"\n") || rest == fmDelim {
		return "", strings.TrimPrefix(strings.TrimPrefix(rest, fmDelim), "\n")
	}

	end := strings.Index(rest, "\n"+fmDelim+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+fmDelim) {
			return rest[:len(rest)-len(fmDelim)-1], ""
		}
		return "", content
	}
	return rest[:end], rest[end+len(fmDelim)+2:]
}

// renderFrontmatter marshals fm as YAML and prepends it to body.
func renderFrontmatter(fm any, body string) (string, error) {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmDelim + "\n")
	sb.Write(out)
	sb.WriteString(fmDelim + "\n")
	sb.WriteString(body)
	return sb.String(), nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
