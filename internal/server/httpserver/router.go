package httpserver

import (
	"net/http"

	"github.com/yndnr/respkv/internal/server/httpserver/handler"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler holds the admin handler dependencies.
	Handler handler.Config

	// Metrics serves GET /metrics; nil leaves the route unregistered.
	Metrics http.Handler

	// Logger for request logging.
	Logger logger.Logger

	// AdminAllowList is the IP/CIDR allowlist for /admin and /metrics
	// (empty = no restriction).
	AdminAllowList []string

	// TrustedProxies may set X-Forwarded-For for the allowlist check.
	TrustedProxies []string

	// AdminRateLimit caps admin requests per second across all callers
	// (0 = unlimited).
	AdminRateLimit int
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
//
// Health probes are never filtered. /metrics and /admin/v1/* pass the
// network ACL, and admin calls are also rate limited and audited.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	hcfg := cfg.Handler
	if hcfg.Logger == nil {
		hcfg.Logger = log
	}
	h := handler.New(hcfg)

	acl := NetworkACL(&NetworkACLConfig{
		AllowList:      cfg.AdminAllowList,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log,
	})

	mux := http.NewServeMux()

	probe := Chain(h, Recover(log), RequestID())
	mux.Handle("GET /health", probe)
	mux.Handle("GET /ready", probe)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics, Recover(log), acl))
	}

	admin := Chain(h,
		Recover(log),
		RequestID(),
		Audit(log),
		acl,
		RateLimit(cfg.AdminRateLimit),
	)
	mux.Handle("/admin/v1/", admin)

	return mux
}
