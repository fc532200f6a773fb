// Package trustd hosts the identity and trust core behind a single lock so
// that concurrent API callers observe the core's single-threaded contract.
package trustd

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"kleotrust/crypto"
	"kleotrust/native/lending"
	"kleotrust/native/reputation"
	"kleotrust/observability"
	"kleotrust/observability/logging"
	"kleotrust/wallet"
)

// Config wires the service dependencies.
type Config struct {
	Codec      *crypto.Codec
	Tiers      lending.TierTable
	MaxEvents  int
	MaxWallets int
	Store      wallet.SessionStore
	Logger     *slog.Logger
}

// EligibilityRequest is an eligibility query. When Stars is nil and Wallet is
// set, stars are derived from the wallet's latest trust event.
type EligibilityRequest struct {
	Amount   float64 `json:"amount"`
	Stars    *uint64 `json:"stars,omitempty"`
	Vouchers uint64  `json:"vouchers,omitempty"`
	Wallet   string  `json:"wallet,omitempty"`
}

// TierInfo pairs a tier with its human readable description.
type TierInfo struct {
	lending.TierRequirements
	Description string `json:"description"`
}

// Service serialises access to the codec, eligibility engine, trust event
// aggregator and wallet bridge.
type Service struct {
	mu         sync.Mutex
	codec      *crypto.Codec
	tiers      lending.TierTable
	aggregator *reputation.Aggregator
	bridge     *wallet.Bridge
	store      wallet.SessionStore
	maxWallets int
	feed       *feed
	streams    metric.Int64UpDownCounter
	logger     *slog.Logger
}

// New constructs a service. Zero-valued fields fall back to defaults.
func New(cfg Config) *Service {
	if cfg.Codec == nil {
		cfg.Codec = crypto.DefaultCodec()
	}
	if len(cfg.Tiers.All()) == 0 {
		cfg.Tiers = lending.DefaultTierTable()
	}
	if cfg.Store == nil {
		cfg.Store = wallet.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxWallets <= 0 {
		cfg.MaxWallets = 8
	}
	logger := cfg.Logger.With("component", "trustd")
	streams, err := otel.Meter("kleotrust/trustd").Int64UpDownCounter("trustd.stream.subscribers",
		metric.WithDescription("Open trust event stream subscriptions."))
	if err != nil {
		logger.Warn("stream subscriber gauge unavailable", "error", err)
	}
	return &Service{
		codec: cfg.Codec,
		tiers: cfg.Tiers,
		aggregator: reputation.NewAggregator(
			reputation.WithMaxEvents(cfg.MaxEvents),
			reputation.WithRecorder(observability.Trust()),
		),
		bridge:     wallet.NewBridge(cfg.Store, wallet.WithLogger(logger)),
		store:      cfg.Store,
		maxWallets: cfg.MaxWallets,
		feed:       newFeed(),
		streams:    streams,
		logger:     logger,
	}
}

// Describe returns both renderings of address.
func (s *Service) Describe(address string) (crypto.AddressForms, error) {
	return s.codec.Describe(address)
}

// Match reports whether a network and a short address identify the same account.
func (s *Service) Match(network, short string) bool {
	return s.codec.AddressesMatch(network, short)
}

// Tiers lists the configured tiers.
func (s *Service) Tiers() []TierInfo {
	all := s.tiers.All()
	out := make([]TierInfo, 0, len(all))
	for _, tier := range all {
		out = append(out, TierInfo{TierRequirements: tier, Description: s.tiers.Describe(tier.Tier)})
	}
	return out
}

// Evaluate answers an eligibility query.
func (s *Service) Evaluate(req EligibilityRequest) lending.EligibilityResult {
	var stars uint64
	if req.Stars != nil {
		stars = *req.Stars
	} else if req.Wallet != "" {
		s.mu.Lock()
		stars = s.aggregator.SignalsFor(req.Wallet, req.Vouchers).Stars
		s.mu.Unlock()
	}
	result := s.tiers.Evaluate(req.Amount, stars, req.Vouchers)
	observability.Eligibility().RecordCheck(uint8(result.Tier), result.Valid)
	return result
}

// IngestRaw normalises and ingests one subscription batch, then publishes the
// ingested events to stream subscribers.
func (s *Service) IngestRaw(raw []reputation.RawTrustEvent) ([]reputation.TrustEvent, error) {
	s.mu.Lock()
	ingested, err := s.aggregator.IngestRaw(raw)
	if err == nil {
		// Published under the lock so a concurrent Subscribe sees each batch
		// either in its backlog or on its channel, never both.
		s.feed.publish(ingested)
	}
	s.mu.Unlock()
	if err != nil {
		observability.Trust().RecordRejected()
		s.logger.Warn("rejected trust event batch", "error", err, "count", len(raw))
		return nil, err
	}
	for _, event := range ingested {
		observability.Events().RecordKind(string(event.Kind))
	}
	s.logger.Debug("ingested trust event batch", "count", len(ingested))
	return ingested, nil
}

// RecentEvents returns the retained trust event history, newest first.
func (s *Service) RecentEvents() []reputation.TrustEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregator.RecentEvents()
}

// DistinctWallets returns per-wallet views. A non-positive limit uses the
// configured default.
func (s *Service) DistinctWallets(limit int) []reputation.WalletTrustView {
	if limit <= 0 {
		limit = s.maxWallets
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregator.DistinctWallets(limit)
}

// Subscribe returns the current history as backlog together with a channel of
// subsequently ingested batches. The cancel function must be called.
func (s *Service) Subscribe() ([]reputation.TrustEvent, <-chan []reputation.TrustEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updates, cancel := s.feed.subscribe()
	s.trackStream(1)
	var once sync.Once
	return s.aggregator.RecentEvents(), updates, func() {
		once.Do(func() {
			cancel()
			s.trackStream(-1)
		})
	}
}

func (s *Service) trackStream(delta int64) {
	if s.streams != nil {
		s.streams.Add(context.Background(), delta)
	}
}

// Tick forwards a wallet observation to the bridge.
func (s *Service) Tick(obs wallet.Observation) (wallet.TickResult, wallet.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.bridge.Tick(obs)
	observability.Wallet().RecordTick(result.AccountsWritten, result.SelectionWritten, result.StatusWritten, result.ErrorCleared)
	if obs.Connected != nil && result.SelectionWritten {
		s.logger.Info("wallet connected", logging.AddressAttr("selectedAddress", obs.Connected.Address))
	}
	return result, s.store.Snapshot()
}

// Session returns the current session snapshot.
func (s *Service) Session() wallet.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}
