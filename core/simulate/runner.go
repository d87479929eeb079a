// Package simulate wraps every service operation in an artificial network:
// a uniformly random delay and an optional injected transient failure. The
// wrapper never translates errors: a domain error thrown by the wrapped
// function propagates unchanged, and the injected NetworkError is drawn
// before the function runs at all.
package simulate

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"osprey-ehs/config"
	"osprey-ehs/core/apierr"
)

type Runner struct {
	cfg     config.SimulationConfig
	log     *zap.SugaredLogger
	metrics *Metrics

	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(time.Duration)
}

func NewRunner(cfg config.SimulationConfig, log *zap.SugaredLogger, metrics *Metrics) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
	}
}

// Run executes fn under the simulation contract. Once issued a call cannot be
// cancelled; any mutation inside fn has happened by the time the result is
// returned.
func Run[T any](r *Runner, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	r.delay()

	if r.shouldFail() {
		var zero T
		r.metrics.injected()
		r.metrics.observe(op, "network_error", time.Since(start).Seconds())
		r.log.Debugw("simulated network failure", "operation", op)
		return zero, &apierr.NetworkError{Message: "simulated network failure"}
	}

	v, err := fn()
	if err != nil {
		r.metrics.observe(op, "error", time.Since(start).Seconds())
		r.log.Debugw("call failed", "operation", op, "error", err)
		return v, err
	}
	r.metrics.observe(op, "ok", time.Since(start).Seconds())
	r.log.Debugw("call completed", "operation", op, "elapsed", time.Since(start))
	return v, nil
}

func (r *Runner) delay() {
	if !r.cfg.Delays.Enabled {
		return
	}
	min, max := r.cfg.Delays.MinMs, r.cfg.Delays.MaxMs
	if max <= 0 {
		return
	}
	d := min
	if span := max - min; span > 0 {
		r.mu.Lock()
		d = min + r.rng.Intn(span+1)
		r.mu.Unlock()
	}
	r.sleep(time.Duration(d) * time.Millisecond)
}

func (r *Runner) shouldFail() bool {
	if !r.cfg.Errors.Enabled {
		return false
	}
	rate := r.cfg.Errors.NetworkFailureRate
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	r.mu.Lock()
	sample := r.rng.Float64()
	r.mu.Unlock()
	return sample < rate
}
