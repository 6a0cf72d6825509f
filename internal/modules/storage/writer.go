package storage

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Writer persists full state snapshots without blocking the caller. Submissions are
// numbered; once a newer snapshot has landed for a key, older ones still in flight for
// that key are dropped, so the store converges on the latest submission regardless of
// goroutine scheduling.
type Writer struct {
	svc *Service
	log *logrus.Entry

	mu      sync.Mutex
	seq     uint64
	pending int
	idle    chan struct{}

	writeMu sync.Mutex
	applied map[string]uint64
}

func NewWriter(svc *Service) *Writer {
	idle := make(chan struct{})
	close(idle)
	return &Writer{
		svc:     svc,
		log:     svc.log.WithField("component", "writer"),
		idle:    idle,
		applied: make(map[string]uint64),
	}
}

// Save schedules v to be written under key.
func (w *Writer) Save(key string, v any) {
	w.submit(key, v, false)
}

// Delete schedules key to be removed.
func (w *Writer) Delete(key string) {
	w.submit(key, nil, true)
}

func (w *Writer) submit(key string, v any, remove bool) {
	w.mu.Lock()
	w.seq++
	seq := w.seq
	if w.pending == 0 {
		w.idle = make(chan struct{})
	}
	w.pending++
	w.mu.Unlock()

	go func() {
		defer w.done()
		w.apply(seq, key, v, remove)
	}()
}

func (w *Writer) apply(seq uint64, key string, v any, remove bool) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if seq < w.applied[key] {
		w.log.WithFields(logrus.Fields{"key": key, "seq": seq}).Debug("skipping superseded snapshot")
		return
	}
	w.applied[key] = seq

	ctx := context.Background()
	if remove {
		w.svc.Remove(ctx, key)
		return
	}
	w.svc.Set(ctx, key, v)
}

func (w *Writer) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending--
	if w.pending == 0 {
		close(w.idle)
	}
}

// Flush blocks until every write submitted so far has been applied or dropped.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
