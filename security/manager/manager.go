// Package manager wires the governance components together: the policy
// pipeline, rate limiter, operation tracker, audit log, decision events and
// metrics behind one facade consumed by the module lifecycle manager and
// protected call sites.
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"

	"github.com/modguard/modguard/logging/logger"
	"github.com/modguard/modguard/logging/observes"
	"github.com/modguard/modguard/security/audit"
	"github.com/modguard/modguard/security/config"
	"github.com/modguard/modguard/security/event"
	"github.com/modguard/modguard/security/metrics"
	"github.com/modguard/modguard/security/policy"
	"github.com/modguard/modguard/security/ratelimit"
	"github.com/modguard/modguard/security/session"
	"github.com/modguard/modguard/security/tracker"
	"github.com/modguard/modguard/security/types"
)

// Manager is the process-wide security manager. One instance is created at
// bootstrap and passed by reference to call sites; it is safe for concurrent
// use.
type Manager struct {
	conf      *config.Config
	builder   *session.Builder
	registry  *policy.Registry
	limiter   *ratelimit.Limiter
	tracker   *tracker.Tracker
	auditLog  *audit.Log
	bus       *event.Bus
	collector *metrics.Collector
	tracer    trace.Tracer

	breakerMu sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker

	statsMu          sync.Mutex
	totalOps         int64
	deniedOps        int64
	opsByModule      map[string]int64
	violationsByType map[string]int64
	opModules        map[string]string
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	redisClient *redis.Client
	now         func() time.Time
}

// WithRedisClient supplies the Redis client used when metrics storage is
// configured as "redis".
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) {
		o.redisClient = client
	}
}

// WithNow overrides the clock used by the rate limiter and tracker, for
// tests.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a security manager from the given configuration. A nil config
// uses defaults. The four built-in policies are registered before New
// returns.
func New(conf *config.Config, opts ...Option) (*Manager, error) {
	if conf == nil {
		conf = config.GetDefaultConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid security config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var limiterOpts []ratelimit.Option
	var trackerOpts []tracker.Option
	if o.now != nil {
		limiterOpts = append(limiterOpts, ratelimit.WithNow(o.now))
		trackerOpts = append(trackerOpts, tracker.WithNow(o.now))
	}

	m := &Manager{
		conf:             conf,
		builder:          session.NewBuilder(),
		registry:         policy.NewRegistry(),
		limiter:          ratelimit.NewLimiter(limiterOpts...),
		tracker:          tracker.NewTracker(conf.EnableTracking, trackerOpts...),
		auditLog:         audit.NewLog(conf.MaxAuditLogSize),
		tracer:           observes.Tracer("security-manager"),
		breakers:         make(map[string]*gobreaker.CircuitBreaker),
		opsByModule:      make(map[string]int64),
		violationsByType: make(map[string]int64),
		opModules:        make(map[string]string),
	}

	if conf.EnableEvents {
		m.bus = event.NewBus()
	}

	m.collector = buildCollector(conf.Metrics, o.redisClient)

	for _, p := range policy.Defaults() {
		m.AddPolicy(p)
	}

	return m, nil
}

func buildCollector(mc *config.MetricsConfig, client *redis.Client) *metrics.Collector {
	if mc == nil || !mc.Enabled {
		return metrics.NewCollector(nil, false)
	}

	collector := metrics.NewCollectorWithMemoryStorage(true)

	if mc.Storage == config.MetricsStorageRedis {
		if client == nil {
			logger.Warnf(nil, "metrics storage configured as redis but no client provided, using memory")
			return collector
		}
		if err := collector.UpgradeToRedisStorage(client, mc.KeyPrefix, mc.RetentionDuration()); err != nil {
			logger.Errorf(nil, "failed to enable redis metrics storage: %v", err)
		}
	}

	return collector
}

// CreateSecurityContext derives one security context per module activation.
// The lifecycle manager holds the returned context for the module's lifetime.
func (m *Manager) CreateSecurityContext(moduleID string, priority types.Priority, permissions []string, userID string) (*types.SecurityContext, error) {
	sc, err := m.builder.Build(moduleID, priority, permissions, userID)
	if err != nil {
		return nil, err
	}

	logger.Infof(nil, "security context created for module %s (priority=%s, session=%s)",
		sc.ModuleID, sc.Priority, sc.SessionID)

	return sc, nil
}

// AddPolicy registers a policy in the pipeline. Re-adding a name replaces the
// existing policy. Each policy gets its own circuit breaker so one
// misbehaving policy cannot stall every decision.
func (m *Manager) AddPolicy(p types.Policy) {
	if p == nil {
		return
	}

	m.registry.Add(p)

	m.breakerMu.Lock()
	defer m.breakerMu.Unlock()

	m.breakers[p.Name()] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 100,
		Interval:    5 * time.Second,
		Timeout:     3 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})
}

// RemovePolicy unregisters a policy by name and reports whether it existed.
func (m *Manager) RemovePolicy(name string) bool {
	removed := m.registry.Remove(name)
	if removed {
		m.breakerMu.Lock()
		delete(m.breakers, name)
		m.breakerMu.Unlock()
	}
	return removed
}

// EventBus returns the decision event bus, nil when events are disabled.
func (m *Manager) EventBus() *event.Bus {
	return m.bus
}

// Metrics returns the metrics collector.
func (m *Manager) Metrics() *metrics.Collector {
	return m.collector
}

// Stop flushes metrics and releases background resources.
func (m *Manager) Stop() {
	if m.collector != nil {
		m.collector.Stop()
	}

	m.statsMu.Lock()
	m.opModules = make(map[string]string)
	m.statsMu.Unlock()
}

func (m *Manager) breakerFor(name string) *gobreaker.CircuitBreaker {
	m.breakerMu.Lock()
	defer m.breakerMu.Unlock()
	return m.breakers[name]
}

func (m *Manager) publish(topic string, payload any) {
	if m.bus != nil {
		m.bus.Publish(topic, payload)
	}
}
