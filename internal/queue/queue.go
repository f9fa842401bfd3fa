// Package queue implements a durable FIFO job queue on an embedded
// key-value store. Delivery is at-least-once: a message stays persisted
// until the consumer acks it, and a crash between dequeue and ack means
// redelivery after restart.
package queue

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrClosed = errors.New("queue is closed")

const (
	jobPrefix = "job_"
	seqKey    = "job_seq"
	// pollInterval bounds how long a standalone consumer waits before
	// re-scanning for work enqueued by another process lifetime.
	pollInterval = time.Second
)

// Message is a claimed queue entry. Payload interpretation is up to the
// consumer; the queue only tracks delivery attempts.
type Message struct {
	key      []byte
	Attempts int
	Payload  []byte
}

type envelope struct {
	Attempts int    `json:"attempts"`
	Payload  []byte `json:"payload"`
}

type Queue struct {
	db  *badger.DB
	seq *badger.Sequence

	// notify wakes a blocked Dequeue when Enqueue runs in-process.
	notify chan struct{}

	mu       sync.Mutex
	inflight map[string]struct{}

	maxAttempts int
}

// Open opens (or creates) the queue at path. maxAttempts caps redelivery
// of a failing message before it is dropped.
func Open(path string, maxAttempts int) (*Queue, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	return open(opts, maxAttempts)
}

// OpenInMemory opens an ephemeral queue. Used in tests.
func OpenInMemory(maxAttempts int) (*Queue, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts, maxAttempts)
}

func open(opts badger.Options, maxAttempts int) (*Queue, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue: %w", err)
	}
	seq, err := db.GetSequence([]byte(seqKey), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open queue sequence: %w", err)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		db:          db,
		seq:         seq,
		notify:      make(chan struct{}, 1),
		inflight:    make(map[string]struct{}),
		maxAttempts: maxAttempts,
	}, nil
}

func jobKey(n uint64) []byte {
	key := make([]byte, len(jobPrefix)+8)
	copy(key, jobPrefix)
	binary.BigEndian.PutUint64(key[len(jobPrefix):], n)
	return key
}

// Enqueue persists a payload at the tail of the queue.
func (q *Queue) Enqueue(payload []byte) error {
	return q.enqueue(payload, 0)
}

func (q *Queue) enqueue(payload []byte, attempts int) error {
	n, err := q.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to advance queue sequence: %w", err)
	}
	value, err := json.Marshal(envelope{Attempts: attempts, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode queue envelope: %w", err)
	}
	err = q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(jobKey(n), value)
	})
	if err != nil {
		return fmt.Errorf("failed to persist queue entry: %w", err)
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue blocks until a message is available or ctx is done. The message
// stays persisted until Ack, Fail, or Nack resolves it.
func (q *Queue) Dequeue(ctx context.Context) (*Message, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		msg, err := q.claim()
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		case <-ticker.C:
		}
	}
}

// claim returns the oldest unclaimed message, or nil when the queue is
// drained.
func (q *Queue) claim() (*Message, error) {
	if q.db.IsClosed() {
		return nil, ErrClosed
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	var msg *Message
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(jobPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if string(key) == seqKey {
				continue
			}
			if _, claimed := q.inflight[string(key)]; claimed {
				continue
			}
			var env envelope
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &env)
			})
			if err != nil {
				return fmt.Errorf("failed to decode queue entry: %w", err)
			}
			msg = &Message{key: key, Attempts: env.Attempts, Payload: env.Payload}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if msg != nil {
		q.inflight[string(msg.key)] = struct{}{}
	}
	return msg, nil
}

// Ack removes a successfully processed message.
func (q *Queue) Ack(m *Message) error {
	return q.remove(m)
}

// Fail removes a message that must not be retried (fatal job errors).
func (q *Queue) Fail(m *Message) error {
	return q.remove(m)
}

// Nack re-enqueues a message at the tail with its attempt count bumped.
// Returns false when the attempt cap is reached and the message dropped.
func (q *Queue) Nack(m *Message) (bool, error) {
	if err := q.remove(m); err != nil {
		return false, err
	}
	if m.Attempts+1 >= q.maxAttempts {
		return false, nil
	}
	if err := q.enqueue(m.Payload, m.Attempts+1); err != nil {
		return false, err
	}
	return true, nil
}

func (q *Queue) remove(m *Message) error {
	q.mu.Lock()
	delete(q.inflight, string(m.key))
	q.mu.Unlock()

	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(m.key)
	})
}

// Len counts pending messages, claimed ones included.
func (q *Queue) Len() (int, error) {
	n := 0
	err := q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(jobPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if string(it.Item().Key()) == seqKey {
				continue
			}
			n++
		}
		return nil
	})
	return n, err
}

// IsAlive reports whether the underlying store is usable.
func (q *Queue) IsAlive() bool {
	return q.db != nil && !q.db.IsClosed()
}

func (q *Queue) Close() error {
	if err := q.seq.Release(); err != nil {
		return err
	}
	return q.db.Close()
}
