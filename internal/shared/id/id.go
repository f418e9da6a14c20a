// Package id provides identifier generation for the backend.
//
// Terminal identifiers follow the form terminal_<unix millis>_<random>, where
// the random suffix is the entropy half of a ULID drawn from a monotonic
// source. Two identifiers minted in the same millisecond therefore differ in
// their suffix, and an identifier is never handed out twice by one generator.
//
// Connection identifiers tag display surface connections in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// TerminalID identifies a terminal session
type TerminalID string

// ConnectionID identifies a display surface connection
type ConnectionID string

const (
	TerminalPrefix   = "terminal"
	ConnectionPrefix = "conn"
)

// ulidTimeLen is the number of encoded characters holding the timestamp.
const ulidTimeLen = 10

// Generator mints ULID-backed identifiers
type Generator struct {
	clock clock.Clock

	mu      sync.Mutex // Protects entropy, ulid.MonotonicReader is not goroutine safe
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by the wall clock and crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWith(clock.New(), rand.Reader)
}

// NewGeneratorWith creates a generator with a custom clock and entropy source.
// Tests pass a mock clock and a deterministic reader.
func NewGeneratorWith(clk clock.Clock, entropy io.Reader) *Generator {
	return &Generator{
		clock:   clk,
		entropy: ulid.Monotonic(entropy, 0),
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy)
}

// TerminalID creates a new terminal identifier
func (g *Generator) TerminalID() TerminalID {
	u := g.Generate()
	suffix := strings.ToLower(u.String()[ulidTimeLen:])
	return TerminalID(fmt.Sprintf("%s_%d_%s", TerminalPrefix, u.Time(), suffix))
}

// NewConnectionID generates a connection identifier
func NewConnectionID() ConnectionID {
	return ConnectionID(ConnectionPrefix + "_" + uuid.NewString())
}

func (id TerminalID) String() string   { return string(id) }
func (id ConnectionID) String() string { return string(id) }

// IsTerminalID reports whether s has the terminal_<millis>_<random> shape.
func IsTerminalID(s string) bool {
	_, err := TerminalTimestamp(s)
	return err == nil
}

// TerminalTimestamp extracts the creation time encoded in a terminal identifier.
func TerminalTimestamp(s string) (time.Time, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 || parts[0] != TerminalPrefix {
		return time.Time{}, fmt.Errorf("malformed terminal id: %q", s)
	}

	ms, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed terminal id timestamp: %q", s)
	}

	if len(parts[2]) != ulid.EncodedSize-ulidTimeLen {
		return time.Time{}, fmt.Errorf("malformed terminal id suffix: %q", s)
	}
	for _, r := range parts[2] {
		if !strings.ContainsRune(lowerEncoding, r) {
			return time.Time{}, fmt.Errorf("malformed terminal id suffix: %q", s)
		}
	}

	return ulid.Time(ms), nil
}

// lowerEncoding is Crockford's base32 alphabet as used by ULID, lower-cased.
var lowerEncoding = strings.ToLower(ulid.Encoding)
