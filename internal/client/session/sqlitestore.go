package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/zootrail/zootrail/internal/client/models"
	"github.com/zootrail/zootrail/internal/client/repositories/metadata"
	"github.com/zootrail/zootrail/internal/dbx"
	"github.com/zootrail/zootrail/internal/logging"
)

// The record lives under one fixed, versionless key. The revision counter is
// bumped in the same transaction as every mutation; the watcher compares it
// to detect writes made by another process sharing the store.
const (
	keySession    = "session"
	keySessionRev = "session_rev"
)

// SQLiteStore is the Store implementation over the local metadata table.
type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger

	mu      sync.Mutex
	subs    map[int]func()
	nextSub int
	lastRev int64

	stop     chan struct{}
	stopOnce sync.Once
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore builds a store over db. When pollInterval > 0 a watcher
// goroutine polls the revision counter to pick up external mutations.
func NewSQLiteStore(db *sql.DB, log logging.Logger, pollInterval time.Duration) *SQLiteStore {
	s := &SQLiteStore{
		db:   db,
		log:  log,
		subs: make(map[int]func()),
		stop: make(chan struct{}),
	}
	s.lastRev = s.readRev(context.Background())

	if pollInterval > 0 {
		go s.watch(pollInterval)
	}
	return s
}

func (s *SQLiteStore) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *SQLiteStore) Read(ctx context.Context) (*models.Session, error) {
	data, err := s.repo().Get(ctx, keySession)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupted record is indistinguishable from no session.
		s.log.Warn(ctx, "discarding unreadable session record", "error", err)
		return nil, nil
	}
	return &sess, nil
}

func (s *SQLiteStore) Write(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	var rev int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keySession, data); err != nil {
			return err
		}
		rev = s.lastRevLocked() + 1
		return repo.Set(ctx, keySessionRev, []byte(strconv.FormatInt(rev, 10)))
	})
	if err != nil {
		return err
	}

	s.markRev(rev)
	s.notify()
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	var rev int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keySession); err != nil {
			return err
		}
		rev = s.lastRevLocked() + 1
		return repo.Set(ctx, keySessionRev, []byte(strconv.FormatInt(rev, 10)))
	})
	if err != nil {
		return err
	}

	s.markRev(rev)
	s.notify()
	return nil
}

func (s *SQLiteStore) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *SQLiteStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *SQLiteStore) lastRevLocked() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRev
}

func (s *SQLiteStore) markRev(rev int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev > s.lastRev {
		s.lastRev = rev
	}
}

func (s *SQLiteStore) readRev(ctx context.Context) int64 {
	data, err := s.repo().Get(ctx, keySessionRev)
	if err != nil || data == nil {
		return 0
	}
	rev, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return rev
}

func (s *SQLiteStore) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *SQLiteStore) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			rev := s.readRev(context.Background())

			s.mu.Lock()
			changed := rev != s.lastRev
			if changed {
				s.lastRev = rev
			}
			s.mu.Unlock()

			if changed {
				s.notify()
			}
		}
	}
}
