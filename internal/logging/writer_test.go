package logging

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestWriterTeesAndQueuesBeforeAttach(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)

	if _, err := w.Write([]byte("[ORDER] [INFO] server starting\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !strings.Contains(out.String(), "server starting") {
		t.Errorf("underlying writer missed the line: %q", out.String())
	}
	if len(w.queue) != 1 {
		t.Fatalf("queued = %d, want 1", len(w.queue))
	}
	if w.queue[0].Message != "[ORDER] [INFO] server starting" {
		t.Errorf("queued message = %q", w.queue[0].Message)
	}
	if w.queue[0].Level != "info" {
		t.Errorf("queued level = %q, want info", w.queue[0].Level)
	}
}

func TestWriterQueueIsBounded(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	for i := 0; i < maxQueued+50; i++ {
		w.Write([]byte(fmt.Sprintf("line %d\n", i)))
	}

	if len(w.queue) != maxQueued {
		t.Errorf("queued = %d, want %d", len(w.queue), maxQueued)
	}
}

func TestWriterSkipsBlankLines(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})

	w.Write([]byte("\n"))

	if len(w.queue) != 0 {
		t.Errorf("queued = %d, want 0", len(w.queue))
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"[ORDER] [ERROR] insert failed", "error"},
		{"[UPLOAD] [WARN] redis cache get failed", "warn"},
		{"[ORDER] [INFO] order created", "info"},
		{"MongoDB connected to: mehryaan", "info"},
	}

	for _, tt := range tests {
		if got := levelOf(tt.line); got != tt.want {
			t.Errorf("levelOf(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
