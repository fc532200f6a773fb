package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kleotrust/gateway/middleware"
	"kleotrust/services/trustd"
)

// Route group names double as rate limit keys and observability labels.
const (
	GroupAddress     = "address"
	GroupEligibility = "eligibility"
	GroupTrust       = "trust"
	GroupWallet      = "wallet"
)

type Config struct {
	Service       *trustd.Service
	RateLimiter   *middleware.RateLimiter
	Observability *middleware.Observability
	CORS          middleware.CORSConfig
	Logger        *slog.Logger
}

func New(cfg Config) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("trust service required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{svc: cfg.Service, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORS))

	obs := cfg.Observability
	if obs != nil {
		r.Use(obs.Middleware("root"))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	group := func(name string, mount func(chi.Router)) func(chi.Router) {
		return func(sr chi.Router) {
			if cfg.RateLimiter != nil {
				sr.Use(cfg.RateLimiter.Middleware(name))
			}
			if obs != nil {
				sr.Use(obs.Middleware(name))
			}
			mount(sr)
		}
	}

	r.Group(group(GroupAddress, func(sr chi.Router) {
		sr.Get("/v1/address/match", h.matchAddresses)
		sr.Get("/v1/address/{address}", h.describeAddress)
	}))
	r.Group(group(GroupEligibility, func(sr chi.Router) {
		sr.Get("/v1/tiers", h.listTiers)
		sr.Post("/v1/eligibility", h.evaluateEligibility)
	}))
	r.Group(group(GroupTrust, func(sr chi.Router) {
		sr.Post("/v1/trust/events", h.ingestEvents)
		sr.Get("/v1/trust/events", h.recentEvents)
		sr.Get("/v1/trust/wallets", h.distinctWallets)
		sr.Get("/v1/trust/stream", h.streamEvents)
	}))
	r.Group(group(GroupWallet, func(sr chi.Router) {
		sr.Post("/v1/wallet/observation", h.observeWallet)
		sr.Get("/v1/wallet/session", h.session)
	}))

	if obs != nil {
		r.Handle("/metrics", obs.MetricsHandler())
	}

	return r, nil
}

type handlers struct {
	svc    *trustd.Service
	logger *slog.Logger
}
