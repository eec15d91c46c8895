package health

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/noah-isme/parking-fee/internal/common"
)

// Disabled is returned by a Checker for a dependency that is not configured.
// It is reported but never fails readiness.
const Disabled = "disabled"

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// FacilityCounter reports the size of the loaded facility table.
type FacilityCounter interface {
	Len() int
}

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the process-wide readiness flag. Shutdown sets it to false
// so load balancers drain the instance before the listener closes.
func SetReady(v bool) { ready.Store(v) }

// IsReady reports the readiness flag.
func IsReady() bool { return ready.Load() }

// ErrDisabled marks a dependency that is intentionally absent.
type ErrDisabled struct{}

func (ErrDisabled) Error() string { return Disabled }

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	Facilities   FacilityCounter
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes. An empty facility
// table is reported but does not fail readiness.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !IsReady() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "dependencies unavailable"})
		return
	}
	ctx := r.Context()
	status := map[string]string{
		"db":    probe(h.Checker.PingDB(ctx, h.dbTimeout())),
		"redis": probe(h.Checker.PingRedis(ctx, h.redisTimeout())),
	}
	if h.Facilities != nil {
		if n := h.Facilities.Len(); n > 0 {
			status["facilities"] = strconv.Itoa(n)
		} else {
			status["facilities"] = "empty"
		}
	}

	code := http.StatusOK
	for _, dep := range []string{"db", "redis"} {
		if s := status[dep]; s != "ok" && s != Disabled {
			code = http.StatusServiceUnavailable
		}
	}
	common.JSON(w, code, status)
}

func probe(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.As(err, &ErrDisabled{}) {
		return Disabled
	}
	return err.Error()
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
