// Package state is the composition root: it wires the session manager and
// the book collection store into one reactive unit consumed by every screen.
package state

import (
	"context"
	"log/slog"
	"sync"

	"bookshelf/internal/books"
	"bookshelf/internal/session"
	"bookshelf/pkg/domain"
)

// Snapshot is one consistent view of the application state.
type Snapshot struct {
	Identity      *domain.Identity
	Authenticated bool
	Books         []domain.Book
	Loading       bool
	Generation    uint64
}

// Provider exposes the capability surface {session, books, loading, login,
// register, logout, addBook, deleteBook}. Route guards read only
// Snapshot().Authenticated.
type Provider struct {
	session *session.Manager
	books   *books.Store
	logger  *slog.Logger

	mu       sync.Mutex
	loading  bool
	fetchGen uint64 // session generation the last fetch was issued for
	watchers []chan struct{}
}

// New builds a provider over an already-wired session manager and book
// store. Call Start before handing it to consumers.
func New(sess *session.Manager, store *books.Store, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		session: sess,
		books:   store,
		logger:  logger,
		loading: true,
	}
}

// Start restores the persisted session and, when that yields an
// authenticated session, runs the initial collection fetch. Loading is false
// by the time Start returns, so guard decisions never observe the initial
// loading state.
func (p *Provider) Start(ctx context.Context) {
	p.session.Restore(ctx)
	p.fetchOnTransition(ctx)
	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
	p.notify()
}

// Snapshot returns the current state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	loading := p.loading
	p.mu.Unlock()
	return Snapshot{
		Identity:      p.session.Identity(),
		Authenticated: p.session.IsAuthenticated(),
		Books:         p.books.Books(),
		Loading:       loading,
		Generation:    p.session.Generation(),
	}
}

// Watch returns a channel that receives a coalesced signal after every state
// change. Consumers re-read Snapshot on each signal.
func (p *Provider) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	p.mu.Lock()
	p.watchers = append(p.watchers, ch)
	p.mu.Unlock()
	return ch
}

// Login delegates to the session manager and fetches the collection on the
// resulting transition into the authenticated state.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	if err := p.session.Login(ctx, email, password); err != nil {
		return err
	}
	p.fetchOnTransition(ctx)
	p.notify()
	return nil
}

// Register delegates to the session manager; success behaves as login.
func (p *Provider) Register(ctx context.Context, email, password string) error {
	if err := p.session.Register(ctx, email, password); err != nil {
		return err
	}
	p.fetchOnTransition(ctx)
	p.notify()
	return nil
}

// Logout clears the session and the collection mirror.
func (p *Provider) Logout(ctx context.Context) {
	p.session.Logout(ctx)
	p.books.Clear()
	p.notify()
}

// AddBook delegates to the collection store.
func (p *Provider) AddBook(ctx context.Context, title, author string) error {
	if _, err := p.books.Add(ctx, title, author); err != nil {
		return err
	}
	p.notify()
	return nil
}

// DeleteBook delegates to the collection store.
func (p *Provider) DeleteBook(ctx context.Context, id string) error {
	if err := p.books.Delete(ctx, id); err != nil {
		return err
	}
	p.notify()
	return nil
}

// fetchOnTransition issues exactly one fetch per transition of the session
// into the authenticated state: a repeat call under the same session
// generation is a no-op.
func (p *Provider) fetchOnTransition(ctx context.Context) {
	if !p.session.IsAuthenticated() {
		return
	}
	gen := p.session.Generation()
	p.mu.Lock()
	if p.fetchGen == gen {
		p.mu.Unlock()
		return
	}
	p.fetchGen = gen
	p.loading = true
	p.mu.Unlock()
	p.notify()

	p.books.FetchAll(ctx)

	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
	p.notify()
}

func (p *Provider) notify() {
	p.mu.Lock()
	watchers := make([]chan struct{}, len(p.watchers))
	copy(watchers, p.watchers)
	p.mu.Unlock()
	for _, ch := range watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
