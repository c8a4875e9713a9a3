// Package simulator produces the realtime temple metrics feed. A single
// writer recomputes the snapshot on a fixed cadence; any number of readers
// observe whole snapshots through an atomic pointer, never a half-updated one.
package simulator

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/models"
)

// Initial snapshot served before the first tick runs.
var seedSnapshot = models.LiveMetrics{
	ActivePilgrims:     2500,
	QueueWaitTimeMin:   20,
	TodaysOfferingsINR: 100000,
	EventsToday:        6,
}

// Simulator generates plausible live metrics. Step is not safe for concurrent
// use with itself; Snapshot and Subscribe are safe from any goroutine.
type Simulator struct {
	logger *logrus.Logger
	rng    *rand.Rand
	noise  distuv.Normal
	nowFn  func() time.Time

	current atomic.Pointer[models.LiveMetrics]

	mu          sync.Mutex
	subscribers map[chan models.LiveMetrics]struct{}
}

// New creates a simulator seeded for this process run.
func New(seed int64, logger *logrus.Logger) *Simulator {
	src := rand.NewPCG(uint64(seed), uint64(seed))
	s := &Simulator{
		logger:      logger,
		rng:         rand.New(src),
		noise:       distuv.Normal{Mu: 0, Sigma: 2, Src: src},
		nowFn:       time.Now,
		subscribers: make(map[chan models.LiveMetrics]struct{}),
	}
	seed0 := seedSnapshot
	s.current.Store(&seed0)
	return s
}

// Snapshot returns the latest published metrics. Always complete and
// internally consistent.
func (s *Simulator) Snapshot() models.LiveMetrics {
	return *s.current.Load()
}

// Subscribe returns a channel receiving every snapshot published after the
// call. Slow consumers miss updates rather than blocking the writer. Cancel
// releases the subscription.
func (s *Simulator) Subscribe() (<-chan models.LiveMetrics, func()) {
	ch := make(chan models.LiveMetrics, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}

// Step computes and publishes the next snapshot. Called by the scheduler on
// its fixed cadence.
func (s *Simulator) Step() {
	prev := s.Snapshot()
	next := s.next(prev)
	s.publish(next)
}

func (s *Simulator) next(prev models.LiveMetrics) models.LiveMetrics {
	hour := s.nowFn().UTC().Hour()

	base := 2400 + s.rng.IntN(301) - 150
	switch {
	case hour >= 8 && hour <= 10:
		base += 400
	case hour >= 17 && hour <= 19:
		base += 500
	}

	wait := 15 + (base-2400)/200 + int(s.noise.Rand())
	if wait < 5 {
		wait = 5
	}

	offerings := prev.TodaysOfferingsINR + 500 + s.rng.IntN(4501)
	if offerings < 10000 {
		offerings = 10000
	}

	events := prev.EventsToday + s.rng.IntN(3) - 1
	if events < 1 {
		events = 1
	}
	if events > 12 {
		events = 12
	}

	active := base
	if active < 50 {
		active = 50
	}

	return models.LiveMetrics{
		ActivePilgrims:     active,
		QueueWaitTimeMin:   wait,
		TodaysOfferingsINR: offerings,
		EventsToday:        events,
	}
}

func (s *Simulator) publish(snapshot models.LiveMetrics) {
	s.current.Store(&snapshot)
	metrics.UpdateLiveMetrics(
		snapshot.ActivePilgrims,
		snapshot.QueueWaitTimeMin,
		snapshot.TodaysOfferingsINR,
		snapshot.EventsToday,
	)

	s.mu.Lock()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
	s.mu.Unlock()
}
