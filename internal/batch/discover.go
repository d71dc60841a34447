package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// DefaultPatterns select component sources.
var DefaultPatterns = []string{"**/*.{tsx,jsx,ts,js}"}

// Directories never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
}

// Load errors
var (
	ErrBinary   = errors.New("not a text file")
	ErrEncoding = errors.New("source is not valid UTF-8")
	ErrTooLarge = errors.New("fixture exceeds the size limit")
)

// Fixture is one source file to check.
type Fixture struct {
	Path    string `json:"path"`
	Rel     string `json:"rel"`
	Size    int64  `json:"size"`
	MIME    string `json:"mime"`
	Charset string `json:"charset,omitempty"`
	Source  string `json:"-"`
	// ExpectFailure is set for fixtures named *.fail.*, which must not compile.
	ExpectFailure bool `json:"expect_failure,omitempty"`
}

// Discover returns the files under root matching any of patterns, relative
// paths matched with doublestar syntax, in lexical order. A root that is a
// file is returned as is.
func Discover(ctx context.Context, root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && skipDirs[d.Name()] {
				return fastwalk.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				mu.Lock()
				matches = append(matches, p)
				mu.Unlock()
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

// Load reads a fixture. Binary files and sources that are not UTF-8 are
// rejected; the detected charset is reported for the latter.
func Load(root, path string, maxBytes int64) (*Fixture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &Fixture{
		Path:          path,
		Rel:           relPath(root, path),
		Size:          int64(len(data)),
		ExpectFailure: strings.Contains(filepath.Base(path), ".fail."),
	}

	mtype := mimetype.Detect(data)
	f.MIME = mtype.String()
	if len(data) > 0 && !isText(mtype) {
		return f, fmt.Errorf("%w: %s", ErrBinary, f.MIME)
	}

	if !utf8.Valid(data) {
		f.Charset = DetectCharset(data)
		return f, fmt.Errorf("%w (detected %s)", ErrEncoding, f.Charset)
	}
	f.Charset = "utf-8"
	f.Source = string(data)
	return f, nil
}

// DetectCharset detects the charset of data
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "unknown"
	}
	return strings.ToLower(result.Charset)
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(path)
}
