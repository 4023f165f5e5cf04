// Package http exposes the ledger engine's boundary operations as a JSON
// API. Rendering is owned by the UI layer; this package only parses
// requests, calls the engine and translates errors into the short user
// messages the product shows.
package http

import (
	"container/list"
	"net/http"
	"strings"
	"sync"
	"time"

	"dompet/internal/services"
)

type Server struct {
	http.Server

	ledger *services.LedgerService

	// Summary is the hottest read endpoint and changes only on payment
	// mutations; a small TTL'd LRU takes the repeated dashboard polls.
	summaryCache *ttlCache[summaryResponse]
}

func NewServer(addr string, ledger *services.LedgerService) *Server {
	s := &Server{
		ledger:       ledger,
		summaryCache: newTTLCache[summaryResponse](100, 30*time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("GET /api/debts/{id}", s.handleGetDebt)
	mux.HandleFunc("PATCH /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)
	mux.HandleFunc("GET /api/debts/{id}/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/debts/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("DELETE /api/payments/{id}", s.handleRemovePayment)

	s.Addr = addr
	s.Handler = mux
	return s
}

// ownerID identifies the requesting user. Authentication itself lives in
// front of this service; a missing header maps to the single-user default.
func ownerID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return "local"
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateSummary drops the cached summary after any payment or debt
// mutation for the owner.
func (s *Server) invalidateSummary(owner string) {
	s.summaryCache.Delete(owner)
}

// ttlCache is a small LRU with per-entry TTL for read endpoints.
type ttlCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newTTLCache[T any](maxSize int, ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *ttlCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[T])
	if time.Now().After(entry.expiresAt) {
		c.remove(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return entry.data, true
}

func (c *ttlCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}
	if elem, exists := c.items[key]; exists {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(entry)
	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

func (c *ttlCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, exists := c.items[key]; exists {
		c.remove(elem)
	}
}

func (c *ttlCache[T]) remove(elem *list.Element) {
	entry := elem.Value.(*cacheEntry[T])
	delete(c.items, entry.key)
	c.lru.Remove(elem)
}
