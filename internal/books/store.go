// Package books mirrors the remote book collection in memory, mutating only
// on confirmed remote outcomes.
package books

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/session"
	"bookshelf/pkg/domain"
)

// MutationError reports an add or delete rejected by the server or the
// transport.
type MutationError struct {
	Message string
}

func (e *MutationError) Error() string {
	return e.Message
}

// Store holds the ordered collection for the current session. Order is the
// server's response order for a fetch; additions append at the end.
type Store struct {
	api     *apiclient.Client
	session *session.Manager
	logger  *slog.Logger
	group   singleflight.Group

	mu    sync.RWMutex
	books []domain.Book
}

// NewStore wires the collection store to the API client and session.
func NewStore(api *apiclient.Client, sess *session.Manager, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, session: sess, logger: logger}
}

// FetchAll replaces the collection wholesale with the server's response.
// Callers invoke it only while a session is present. A failure is non-fatal:
// it is logged and the previous collection stays. The result is discarded if
// the session changed while the fetch was in flight, so a fetch resolving
// after logout cannot repopulate the collection. Concurrent calls share one
// request.
func (s *Store) FetchAll(ctx context.Context) {
	tok := s.session.Token()
	if tok == "" {
		return
	}
	gen := s.session.Generation()
	_, err, _ := s.group.Do("fetch", func() (any, error) {
		fetched, err := s.api.ListBooks(ctx, tok)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session.Generation() != gen {
			return nil, nil
		}
		s.books = fetched
		return nil, nil
	})
	if err != nil {
		s.logger.Error("fetch books", "err", err)
	}
}

// Add sends the new record and, on success, appends the server's canonical
// copy (with its assigned ID) at the end.
func (s *Store) Add(ctx context.Context, title, author string) (domain.Book, error) {
	book, err := s.api.AddBook(ctx, s.session.Token(), title, author)
	if err != nil {
		s.logger.Warn("add book rejected", "title", title, "err", err)
		return domain.Book{}, &MutationError{Message: apiclient.Message(err)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, book)
	return book, nil
}

// Delete removes the record remotely and, on success, drops the matching
// entry. A server-confirmed delete of an ID the local mirror never held is
// a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteBook(ctx, s.session.Token(), id); err != nil {
		s.logger.Warn("delete book rejected", "id", id, "err", err)
		return &MutationError{Message: apiclient.Message(err)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.books[:0]
	for _, b := range s.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.books = kept
	return nil
}

// Books returns a copy of the current collection.
func (s *Store) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Clear empties the mirror; the provider calls it on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = nil
}
