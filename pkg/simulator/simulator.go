package simulator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clickpulse/pulse/pkg/storage"
)

// Simulator drives the event stream: one event per emit tick from a random
// user in a drifting population
type Simulator struct {
	cfg        Config
	sender     *Sender
	sessions   *SessionRegistry
	population *Population
	log        logrus.FieldLogger

	wg sync.WaitGroup
}

// New creates a simulator
func New(cfg Config, log logrus.FieldLogger) *Simulator {
	return &Simulator{
		cfg:        cfg,
		sender:     NewSender(cfg, log),
		sessions:   NewSessionRegistry(cfg.MaxSessionsPerUser, cfg.NewSessionProbability),
		population: NewPopulation(cfg.MinUsers, cfg.MaxUsers),
		log:        log,
	}
}

// Run starts the emit, resample, and stats loops and blocks until the
// context is cancelled, then drains in-flight sends
func (s *Simulator) Run(ctx context.Context) {
	s.log.WithFields(logrus.Fields{
		"target":        s.cfg.TargetURL,
		"emit_interval": s.cfg.EmitInterval.String(),
		"user_pool":     s.population.Size(),
	}).Info("Event simulator started")

	s.loop(ctx, s.cfg.EmitInterval, s.emit)
	s.loop(ctx, s.cfg.ResampleInterval, s.resample)
	s.loop(ctx, s.cfg.StatsInterval, s.logStats)

	s.wg.Wait()
	s.sender.Drain(s.cfg.RequestTimeout)

	sent, failed := s.sender.Stats()
	s.log.WithFields(logrus.Fields{
		"sent":   sent,
		"failed": failed,
	}).Info("Event simulator stopped")
}

// loop runs fn on a fixed ticker until the context is cancelled. Each loop
// owns its rand source; sources are not safe for concurrent use.
func (s *Simulator) loop(ctx context.Context, interval time.Duration, fn func(ctx context.Context, rng *rand.Rand)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx, rng)
			}
		}
	}()
}

// emit generates one event and hands it to the sender
func (s *Simulator) emit(ctx context.Context, rng *rand.Rand) {
	userID := s.population.RandomUserID(rng)

	event := storage.Event{
		EventTime: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		EventType: s.cfg.EventTypes[rng.Intn(len(s.cfg.EventTypes))],
		PageURL:   s.cfg.PageURLs[rng.Intn(len(s.cfg.PageURLs))],
		SessionID: s.sessions.SessionFor(userID, rng),
	}

	if err := s.sender.Send(ctx, event); err != nil && ctx.Err() == nil {
		s.log.WithError(err).Warn("Failed to enqueue event")
	}
}

// resample redraws the user pool size
func (s *Simulator) resample(ctx context.Context, rng *rand.Rand) {
	size := s.population.Resample(rng)
	s.log.WithField("user_pool", size).Debug("User pool size updated")
}

// logStats reports cumulative send counters
func (s *Simulator) logStats(ctx context.Context, rng *rand.Rand) {
	sent, failed := s.sender.Stats()
	s.log.WithFields(logrus.Fields{
		"sent":          sent,
		"failed":        failed,
		"user_pool":     s.population.Size(),
		"tracked_users": s.sessions.TrackedUsers(),
	}).Info("Simulator stats")
}
