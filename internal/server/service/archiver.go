package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"chessarbiter/internal/server/archive"
)

const archiveQueueSize = 100

// ArchiveTask carries one finished game to the archive workers
type ArchiveTask struct {
	Entry archive.Entry
	Done  func(error) // Optional, called by the worker after the write
}

// ArchiveQueue writes finished games to the archive off the request path
type ArchiveQueue struct {
	archive *archive.Archive
	tasks   chan ArchiveTask
	workers int
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// NewArchiveQueue creates a queue with the given worker count
func NewArchiveQueue(arc *archive.Archive, workerCount int) *ArchiveQueue {
	if workerCount < 1 {
		workerCount = 1
	}

	q := &ArchiveQueue{
		archive: arc,
		tasks:   make(chan ArchiveTask, archiveQueueSize),
		workers: workerCount,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// worker drains tasks until the queue is closed
func (q *ArchiveQueue) worker(id int) {
	defer q.wg.Done()

	for task := range q.tasks {
		err := q.archive.Put(task.Entry)
		if err != nil {
			log.Printf("Archive worker %d: failed to archive game %s: %v", id, task.Entry.GameID, err)
		}
		if task.Done != nil {
			task.Done(err)
		}
	}
}

// Submit adds a task without blocking
func (q *ArchiveQueue) Submit(task ArchiveTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is shutting down")
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

// Shutdown stops accepting tasks and waits for queued ones to be written
func (q *ArchiveQueue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
