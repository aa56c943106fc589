// Package server exposes the negotiation engine over HTTP: REST endpoints
// for rooms, wallets and intake constraints, a server-sent event stream per
// negotiation, and the usual health and metrics surfaces.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/haggle"
	"github.com/hupe1980/haggle/bus"
	"github.com/hupe1980/haggle/intake"
	"github.com/hupe1980/haggle/logging"
	"github.com/hupe1980/haggle/metrics"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Queue receives intake constraints. Defaults to a fresh bounded
	// queue.
	Queue *intake.Queue
	// Bus mirrors negotiation events to NATS JetStream. Optional.
	Bus *bus.Publisher
	// DefaultMaxRounds bounds created rooms when a request does not set
	// max_rounds. Zero keeps the room default.
	DefaultMaxRounds int
	// SSEHeartbeat is the keep-alive interval of event streams.
	SSEHeartbeat time.Duration
	// RateLimitRequests caps requests per client and window.
	RateLimitRequests int
	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration
	// CORSAllowedOrigins lists the allowed cross-origin patterns.
	CORSAllowedOrigins []string
	// Logger receives request diagnostics.
	Logger *logging.NegotiationLogger
}

// Server wires the haggle façade into an HTTP API.
type Server struct {
	haggle    *haggle.Haggle
	queue     *intake.Queue
	bus       *bus.Publisher
	maxRounds int
	heartbeat time.Duration
	logger    *logging.NegotiationLogger
	router    chi.Router
}

// New constructs a Server with optional overrides.
func New(h *haggle.Haggle, optFns ...func(o *Options)) *Server {
	opts := Options{
		SSEHeartbeat:       15 * time.Second,
		RateLimitRequests:  60,
		RateLimitWindow:    time.Minute,
		CORSAllowedOrigins: []string{"https://*", "http://*"},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Queue == nil {
		opts.Queue = intake.NewQueue()
	}

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(nil).WithComponent("server")
	}

	s := &Server{
		haggle:    h,
		queue:     opts.Queue,
		bus:       opts.Bus,
		maxRounds: opts.DefaultMaxRounds,
		heartbeat: opts.SSEHeartbeat,
		logger:    opts.Logger,
	}

	s.router = s.routes(opts)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.recordRequests)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			opts.RateLimitRequests,
			opts.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded","retry_after":60}`))
			}),
		))

		r.Route("/negotiations", func(r chi.Router) {
			r.Post("/", s.createNegotiation)
			r.Get("/", s.listNegotiations)

			r.Route("/{roomID}", func(r chi.Router) {
				r.Get("/", s.getNegotiation)
				r.Get("/stream", s.streamNegotiation)
			})
		})

		r.Route("/intake/constraints", func(r chi.Router) {
			r.Post("/", s.submitConstraint)
			r.Get("/", s.listConstraints)
			r.Delete("/", s.clearConstraints)
		})

		r.Get("/wallet/demo", s.demoWallet)

		r.Route("/sessions/{sessionID}/wallet", func(r chi.Router) {
			r.Get("/", s.getWallet)
			r.Put("/", s.replaceWallet)
		})
	})

	return r
}

// health handles GET /healthz.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"status":              "healthy",
		"active_negotiations": s.haggle.Active(),
	}

	if s.bus != nil {
		payload["nats_connected"] = s.bus.IsConnected()
	}

	writeJSON(w, http.StatusOK, payload)
}

// recordRequests feeds per-route Prometheus counters after the handler
// ran, when the route pattern is known.
func (s *Server) recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}

		metrics.RecordRequest(r.Method, pattern, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}
