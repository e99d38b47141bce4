package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dibba-app/dibba-backend/api/responses"
	"github.com/dibba-app/dibba-backend/api/validators"
	pkgerrors "github.com/dibba-app/dibba-backend/pkg/errors"
	"github.com/dibba-app/dibba-backend/pkg/logger"
	pkgredis "github.com/dibba-app/dibba-backend/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	defaultIdempotencyTTL  = 24 * time.Hour
	maxIdempotencyKeyBytes = 200
)

// replayRoute selects the write endpoints whose responses may be replayed.
// An empty suffix means the path must equal prefix.
type replayRoute struct {
	method string
	prefix string
	suffix string
	ttl    time.Duration
}

func (rr replayRoute) matches(method, path string) bool {
	if rr.method != method {
		return false
	}
	if rr.suffix == "" {
		return path == rr.prefix
	}
	return len(path) > len(rr.prefix)+len(rr.suffix) &&
		strings.HasPrefix(path, rr.prefix) &&
		strings.HasSuffix(path, rr.suffix)
}

var replayRoutes = []replayRoute{
	{method: http.MethodPost, prefix: "/api/orders", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/payouts", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/delivery/orders/", suffix: "/status", ttl: defaultIdempotencyTTL},
}

func routeTTL(method, path string) (time.Duration, bool) {
	for _, route := range replayRoutes {
		if route.matches(method, path) {
			return route.ttl, true
		}
	}
	return 0, false
}

// replayRecord is the JSON value stored under an idempotency key. Body is
// base64 encoded by encoding/json.
type replayRecord struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

func (rec replayRecord) writeTo(w http.ResponseWriter) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

type replayer struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

func (p replayer) lookup(ctx context.Context, key string) (*replayRecord, error) {
	raw, err := p.store.Get(ctx, key)
	if pkgredis.IsNil(err) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var rec replayRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &rec, nil
}

func (p replayer) save(ctx context.Context, key string, rec replayRecord, ttl time.Duration) {
	payload, err := json.Marshal(rec)
	if err == nil {
		_, err = p.store.SetNX(ctx, key, string(payload), ttl)
	}
	if err != nil && p.logg != nil {
		p.logg.Error(ctx, "persist idempotency record", err)
	}
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on order, payout and delivery status writes. Keys are scoped
// to the caller, method and path. Requests without the header pass through.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	p := replayer{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			ttl, ok := routeTTL(r.Method, r.URL.Path)
			if !ok || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotencyKeyBytes {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes+1))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			fingerprint := hex.EncodeToString(sum[:])
			scope := strings.Join([]string{UserIDFromContext(ctx), r.Method, r.URL.Path}, "|")
			key := store.IdempotencyKey(scope, clientKey)

			prior, err := p.lookup(ctx, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if prior != nil {
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				prior.writeTo(w)
				return
			}

			capture := &bodyRecorder{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(capture, r)

			// Error responses are not recorded.
			if capture.Status() >= http.StatusBadRequest {
				return
			}
			p.save(ctx, key, replayRecord{
				Status:      capture.Status(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			}, ttl)
		})
	}
}

// bodyRecorder keeps a copy of everything written through it.
type bodyRecorder struct {
	statusRecorder
	body bytes.Buffer
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	b.body.Write(p)
	return b.statusRecorder.Write(p)
}
