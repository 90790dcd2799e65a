package logging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// maxQueued caps the lines held before the database is attached.
const maxQueued = 500

type entry struct {
	Message   string    `bson:"message"`
	Level     string    `bson:"level"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Writer tees log lines to an underlying writer and persists each one to the
// server_logs collection. Lines written before Attach are queued and flushed
// once the database is available, so startup output is not lost.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	db    *mongo.Database
	queue []entry
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Write satisfies io.Writer for log.SetOutput. Persistence is best effort
// and never fails the write; a failed insert reports to the underlying
// writer directly to avoid recursing through the logger.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)

	line := strings.TrimRight(string(p), "\n")
	if line == "" {
		return n, err
	}

	w.mu.Lock()
	if w.db == nil {
		if len(w.queue) < maxQueued {
			w.queue = append(w.queue, newEntry(line))
		}
		w.mu.Unlock()
		return n, err
	}
	db := w.db
	w.mu.Unlock()

	go w.persist(db, []interface{}{newEntry(line)})
	return n, err
}

// Attach connects the writer to the database and flushes everything queued
// so far.
func (w *Writer) Attach(db *mongo.Database) {
	w.mu.Lock()
	w.db = db
	queued := w.queue
	w.queue = nil
	w.mu.Unlock()

	if len(queued) == 0 {
		return
	}
	docs := make([]interface{}, 0, len(queued))
	for _, e := range queued {
		docs = append(docs, e)
	}
	go w.persist(db, docs)
}

func (w *Writer) persist(db *mongo.Database, docs []interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.Collection("server_logs").InsertMany(ctx, docs); err != nil {
		fmt.Fprintf(w.out, "server log persist failed: %v\n", err)
	}
}

func newEntry(line string) entry {
	return entry{
		Message:   line,
		Level:     levelOf(line),
		CreatedAt: time.Now(),
	}
}

// levelOf reads the level out of the bracketed log prefix convention.
func levelOf(line string) string {
	switch {
	case strings.Contains(line, "[ERROR]"):
		return "error"
	case strings.Contains(line, "[WARN]"):
		return "warn"
	default:
		return "info"
	}
}
