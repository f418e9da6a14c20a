package id

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

var terminalIDPattern = regexp.MustCompile(`^terminal_\d+_[0-9a-z]{16}$`)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestTerminalIDFormat(t *testing.T) {
	gen := NewGenerator()

	id := gen.TerminalID()

	if !terminalIDPattern.MatchString(string(id)) {
		t.Errorf("terminal id should match terminal_<timestamp>_<random>, got: %s", id)
	}
	if !IsTerminalID(id.String()) {
		t.Errorf("IsTerminalID should accept generated id %s", id)
	}
}

func TestTerminalIDUsesClock(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(1700000000123))
	gen := NewGeneratorWith(mock, bytes.NewReader(bytes.Repeat([]byte{7}, 1024)))

	id := gen.TerminalID()

	if !strings.HasPrefix(string(id), "terminal_1700000000123_") {
		t.Errorf("expected timestamp from mock clock, got: %s", id)
	}

	ts, err := TerminalTimestamp(string(id))
	if err != nil {
		t.Fatalf("Failed to extract timestamp: %v", err)
	}
	if ts.UnixMilli() != 1700000000123 {
		t.Errorf("expected 1700000000123, got %d", ts.UnixMilli())
	}
}

func TestTerminalIDSameMillisecondDiffers(t *testing.T) {
	mock := clock.NewMock()
	gen := NewGeneratorWith(mock, bytes.NewReader(bytes.Repeat([]byte{1}, 4096)))

	seen := make(map[TerminalID]bool)
	for i := 0; i < 50; i++ {
		id := gen.TerminalID()
		if seen[id] {
			t.Fatalf("duplicate id within one millisecond: %s", id)
		}
		seen[id] = true
	}
}

func TestIsTerminalID(t *testing.T) {
	invalid := []string{
		"",
		"terminal",
		"terminal_abc_0123456789abcdef",
		"terminal_123_short",
		"session_123_0123456789abcdef",
		"terminal_123_0123456789ABCDEF",
		"terminal_123_0123456789abcdeu", // u is not in the alphabet
	}

	for _, s := range invalid {
		if IsTerminalID(s) {
			t.Errorf("should be invalid: %q", s)
		}
	}

	if !IsTerminalID("terminal_1700000000000_0123456789abcdef") {
		t.Error("well-formed id rejected")
	}
}

func TestNewConnectionID(t *testing.T) {
	a := NewConnectionID()
	b := NewConnectionID()

	if !strings.HasPrefix(string(a), "conn_") {
		t.Errorf("ConnectionID should start with 'conn_', got: %s", a)
	}
	if a == b {
		t.Error("connection ids should be unique")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan TerminalID, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- gen.TerminalID()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[TerminalID]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}

	if len(seen) != goroutines*idsPerGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*idsPerGoroutine, len(seen))
	}
}
