// Package id generates the identifiers used across the service.
//
// All identifiers are ULIDs: lexicographically sortable by creation time and
// safe to compare as strings. Typed identifiers carry a short prefix so that
// logs stay readable (cmp_*, str_*, req_*).
package id

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrMalformed is returned for identifiers that are not prefix_ULID.
var ErrMalformed = errors.New("malformed identifier")

// CompileID identifies one compilation.
type CompileID string

// StreamID identifies a live preview stream.
type StreamID string

// RequestID identifies an API request.
type RequestID string

const (
	CompilePrefix = "cmp"
	StreamPrefix  = "str"
	RequestPrefix = "req"
)

// Generator generates monotonic ULIDs.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand. IDs created within
// the same millisecond still sort in creation order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return prefix + "_" + g.GenerateString()
}

// NewCompileID generates a new compilation ID.
func NewCompileID() CompileID {
	return CompileID(Default().GenerateWithPrefix(CompilePrefix))
}

// NewStreamID generates a new stream ID.
func NewStreamID() StreamID {
	return StreamID(Default().GenerateWithPrefix(StreamPrefix))
}

// NewRequestID generates a new request ID.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// New generates a bare ULID string.
func New() string {
	return Default().GenerateString()
}

func (id CompileID) String() string { return string(id) }
func (id StreamID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }

// IsValid reports whether s is a bare ULID.
func IsValid(s string) bool {
	_, err := ulid.Parse(s)
	return err == nil
}

// Split separates a prefixed identifier into its prefix and ULID.
func Split(s string) (string, ulid.ULID, error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok || prefix == "" {
		return "", ulid.ULID{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	u, err := ulid.Parse(raw)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("%w: %q: %v", ErrMalformed, s, err)
	}
	return prefix, u, nil
}

// Timestamp extracts the creation time of a bare or prefixed identifier.
func Timestamp(s string) (time.Time, error) {
	if _, u, err := Split(s); err == nil {
		return ulid.Time(u.Time()), nil
	}
	u, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
