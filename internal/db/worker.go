package db

import (
	"context"
	"database/sql"
)

// TxFn runs inside a write transaction owned by the Worker.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Worker funnels every write through one goroutine, one transaction at a
// time. With SQLite on a single connection this is what serializes
// duplicate-check races and keeps id and timestamp assignment in
// insertion order.
type Worker struct {
	db    *sql.DB
	queue chan task
	done  chan struct{}
}

type task struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

const queueDepth = 256

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:    db,
		queue: make(chan task, queueDepth),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Close stops accepting writes and waits for the queue to drain.
func (w *Worker) Close() {
	close(w.queue)
	<-w.done
}

// Do submits fn and waits for its result. If the caller's context expires
// while the task is queued or running, Do returns the context error; the
// worker still finishes the transaction and the result is discarded
// (result is buffered, so the worker never blocks on it).
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	t := task{ctx: ctx, fn: fn, result: make(chan error, 1)}

	select {
	case w.queue <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.done)
	for t := range w.queue {
		t.result <- w.exec(t)
	}
}

func (w *Worker) exec(t task) error {
	tx, err := w.db.BeginTx(t.ctx, nil)
	if err != nil {
		return err
	}
	if err := t.fn(t.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
