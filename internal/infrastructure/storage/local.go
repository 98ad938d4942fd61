package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputWriter writes transcript artifacts to the local output directory.
type OutputWriter struct {
	dir string
}

// NewOutputWriter creates the output directory if needed.
func NewOutputWriter(dir string) (*OutputWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &OutputWriter{dir: dir}, nil
}

// WriteTranscript writes the plain transcript as transcript_<stamp>.txt and
// returns the file name.
func (w *OutputWriter) WriteTranscript(stamp, content string) (string, error) {
	return w.write(fmt.Sprintf("transcript_%s.txt", stamp), content)
}

// WriteSubtitles writes the SRT rendering as transcript_<stamp>.srt and
// returns the file name.
func (w *OutputWriter) WriteSubtitles(stamp, content string) (string, error) {
	return w.write(fmt.Sprintf("transcript_%s.srt", stamp), content)
}

func (w *OutputWriter) write(name, content string) (string, error) {
	if err := os.WriteFile(filepath.Join(w.dir, name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// Path resolves an output file name to its absolute path, rejecting names
// that would escape the output directory.
func (w *OutputWriter) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid output file name %q", name)
	}
	path := filepath.Join(w.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// ReadFile returns the content of a previously written output file.
func (w *OutputWriter) ReadFile(name string) (string, error) {
	path, err := w.Path(name)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
