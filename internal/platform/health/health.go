package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquetes/internal/domain"
)

// Checker valida somente os backends realmente configurados: o store de
// enquetes sempre, SQL e Redis quando presentes.
type Checker struct {
	store domain.EnqueteStore
	db    *sql.DB
	redis *redis.Client
}

func NewChecker(store domain.EnqueteStore, db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{store: store, db: db, redis: redis}
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if c.store != nil {
			if _, err := c.store.Carregar(ctx); err != nil {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		if c.db != nil {
			if err := c.db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		if c.redis != nil {
			if err := c.redis.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
