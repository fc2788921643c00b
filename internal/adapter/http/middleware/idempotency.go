package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/mandibook/mandiledger/internal/usecase"
)

// IdempotencyKeyHeader carries the client-chosen retry key.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyTTL   = 24 * time.Hour
	processingMarker = "processing"
)

// IdempotencyMiddleware absorbs client retries of mutating requests. A
// phone on a weak mandi network resends freely; the same key must never
// record a payment twice or delete one twice.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap replays the stored response for a key it has already seen succeed,
// and records the response of a first-time key after the handler runs.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		seen, cached, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if seen && cached != nil && string(cached) != processingMarker {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.Write(cached)
			return
		}

		rec := &replayRecorder{ResponseWriter: w, body: &bytes.Buffer{}, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Only successful mutations replay; a failed one may be retried
		// for real.
		if rec.status >= 200 && rec.status < 300 {
			m.store.Update(r.Context(), key, rec.body.Bytes(), idempotencyTTL)
		}
	})
}

type replayRecorder struct {
	http.ResponseWriter
	status int
	body   *bytes.Buffer
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *replayRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
