package reputation

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxEvents is the number of events retained when no cap is supplied.
const DefaultMaxEvents = 24

// Recorder receives ingestion statistics. Implementations must not block.
type Recorder interface {
	RecordIngest(accepted, evicted int)
}

type nopRecorder struct{}

func (nopRecorder) RecordIngest(int, int) {}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMaxEvents sets the history cap. Values below one are ignored.
func WithMaxEvents(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxEvents = n
		}
	}
}

// WithIDSource overrides the random suffix used for synthesized event IDs.
func WithIDSource(next func() string) Option {
	return func(a *Aggregator) {
		if next != nil {
			a.nextID = next
		}
	}
}

// WithClock overrides the clock used when an event has no origin block.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRecorder attaches an ingestion statistics sink.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// Aggregator keeps a capped, newest-first history of trust events and derives
// per-wallet views from it. Recency is arrival order: events are never
// reordered by timestamp or block height.
//
// An Aggregator is not safe for concurrent use. Batches must be ingested
// exactly once; re-ingesting a batch stores its events twice.
type Aggregator struct {
	maxEvents int
	events    []TrustEvent
	nextID    func() string
	now       func() time.Time
	recorder  Recorder
}

// NewAggregator constructs an empty aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		maxEvents: DefaultMaxEvents,
		nextID:    uuid.NewString,
		now:       time.Now,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxEvents returns the history cap.
func (a *Aggregator) MaxEvents() int { return a.maxEvents }

// Len returns the number of retained events.
func (a *Aggregator) Len() int { return len(a.events) }

// Ingest prepends batch to the history, preserving the batch's internal order,
// and drops the oldest events beyond the cap. Events without an ID receive a
// synthesized one.
func (a *Aggregator) Ingest(batch []TrustEvent) {
	if len(batch) == 0 {
		return
	}
	total := len(batch) + len(a.events)
	size := total
	if size > a.maxEvents {
		size = a.maxEvents
	}
	next := make([]TrustEvent, 0, size)
	for _, event := range batch {
		if len(next) == size {
			break
		}
		event = event.clone()
		if event.ID == "" {
			event.ID = a.synthesizeID(event)
		}
		next = append(next, event)
	}
	for _, event := range a.events {
		if len(next) == size {
			break
		}
		next = append(next, event)
	}
	a.events = next
	a.recorder.RecordIngest(len(batch), total-size)
}

// IngestRaw normalizes a subscription batch and ingests it. Nothing is
// ingested when any event in the batch is malformed.
func (a *Aggregator) IngestRaw(raw []RawTrustEvent) ([]TrustEvent, error) {
	batch, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	a.Ingest(batch)
	if len(batch) == 0 {
		return nil, nil
	}
	ingested := make([]TrustEvent, 0, len(batch))
	for i := 0; i < len(batch) && i < len(a.events); i++ {
		ingested = append(ingested, a.events[i].clone())
	}
	return ingested, nil
}

func (a *Aggregator) synthesizeID(event TrustEvent) string {
	var base string
	if event.OriginBlock != nil {
		base = strconv.FormatUint(*event.OriginBlock, 10)
	} else {
		base = strconv.FormatInt(a.now().UnixMilli(), 10)
	}
	return base + "-" + a.nextID()
}

// RecentEvents returns a newest-first snapshot of the retained history.
func (a *Aggregator) RecentEvents() []TrustEvent {
	out := make([]TrustEvent, len(a.events))
	for i, event := range a.events {
		out[i] = event.clone()
	}
	return out
}

// DistinctWallets walks the history newest-first and returns the first event
// seen for each wallet, stopping once limit wallets have been collected.
// Wallets whose events were all evicted do not appear.
func (a *Aggregator) DistinctWallets(limit int) []WalletTrustView {
	if limit <= 0 {
		return []WalletTrustView{}
	}
	seen := make(map[string]struct{}, limit)
	views := make([]WalletTrustView, 0, limit)
	for _, event := range a.events {
		if _, ok := seen[event.Subject]; ok {
			continue
		}
		seen[event.Subject] = struct{}{}
		views = append(views, WalletTrustView{Wallet: event.Subject, Latest: event.clone()})
		if len(views) >= limit {
			break
		}
	}
	return views
}

// Latest returns the most recently observed event for wallet. Hex wallets
// match case-insensitively.
func (a *Aggregator) Latest(wallet string) (TrustEvent, bool) {
	wallet = canonicalSubject(wallet)
	for _, event := range a.events {
		if canonicalSubject(event.Subject) == wallet {
			return event.clone(), true
		}
	}
	return TrustEvent{}, false
}
