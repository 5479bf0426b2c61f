package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/josh-kwaku/hotel-booking/internal/auth"
	"github.com/josh-kwaku/hotel-booking/internal/handler"
	"github.com/josh-kwaku/hotel-booking/internal/logging"
)

const rateLimitPrefix = "hotel-booking:ratelimit"

// NewLimiterStore shares counters through Redis when a client is given, so
// every replica enforces one budget. Without Redis the budget is per process.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix}), nil
	}
	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("NewLimiterStore: %w", err)
	}
	return store, nil
}

// RateLimit budgets requests per authenticated user, falling back to the
// client address. rate uses the "<limit>-<period>" form, e.g. "60-M".
func RateLimit(store limiter.Store, rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("RateLimit: %w", err)
	}

	mw := stdlib.NewMiddleware(limiter.New(store, parsed),
		stdlib.WithKeyGetter(rateLimitKey),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			handler.RespondAppError(w, handler.ErrRateLimited, nil)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context()).Error("rate limiter failed", "error", err)
			handler.RespondAppError(w, handler.ErrInternalError, nil)
		}),
	)
	return mw.Handler, nil
}

func rateLimitKey(r *http.Request) string {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	return "ip:" + clientIP(r)
}
