package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	s.data[key] = response
	return false, nil, nil
}

func (s *memoryStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pay-1"}`))
	})

	mw := NewIdempotencyMiddleware(newMemoryStore())
	wrapped := mw.Wrap(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
		req.Header.Set(IdempotencyKeyHeader, "retry-key-1")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		if body := rec.Body.String(); body != `{"id":"pay-1"}` {
			t.Fatalf("attempt %d: unexpected body %s", i, body)
		}
	}

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencyIgnoresReadsAndMissingKeys(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	mw := NewIdempotencyMiddleware(newMemoryStore())
	wrapped := mw.Wrap(handler)

	get := httptest.NewRequest(http.MethodGet, "/api/v1/cashbook", nil)
	get.Header.Set(IdempotencyKeyHeader, "key-1")
	wrapped.ServeHTTP(httptest.NewRecorder(), get)
	wrapped.ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
	wrapped.ServeHTTP(httptest.NewRecorder(), post)
	wrapped.ServeHTTP(httptest.NewRecorder(), post)

	if calls != 4 {
		t.Fatalf("handler ran %d times, want 4", calls)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "balance exceeded", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pay-2"}`))
	})

	store := newMemoryStore()
	mw := NewIdempotencyMiddleware(store)
	wrapped := mw.Wrap(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-2")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	// The failed attempt left the key claimed but unanswered; the retry
	// must reach the handler, not replay the failure.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
	req2.Header.Set(IdempotencyKeyHeader, "key-2")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req2)

	if calls != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
	if rec.Body.String() != `{"id":"pay-2"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
