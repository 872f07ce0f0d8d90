package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/clickpulse/pulse/pkg/storage"
)

// Sender posts events to the ingestion endpoint asynchronously. In-flight
// requests are bounded by a weighted semaphore: when the backend slows down,
// Send blocks and the emit loop slows with it.
type Sender struct {
	url      string
	client   *http.Client
	inFlight *semaphore.Weighted
	log      logrus.FieldLogger

	sent   atomic.Int64
	failed atomic.Int64
	wg     sync.WaitGroup
}

// NewSender creates a sender for the target URL
func NewSender(cfg Config, log logrus.FieldLogger) *Sender {
	return &Sender{
		url:      cfg.TargetURL,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		inFlight: semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		log:      log,
	}
}

// Send posts the event in the background. It blocks only when the in-flight
// bound is reached, and returns early if the context is cancelled first.
func (s *Sender) Send(ctx context.Context, event storage.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := s.inFlight.Acquire(ctx, 1); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Release(1)
		s.post(ctx, body)
	}()

	return nil
}

func (s *Sender) post(ctx context.Context, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.recordFailure(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordFailure(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.recordFailure(fmt.Errorf("backend returned status %d", resp.StatusCode))
		return
	}

	s.sent.Add(1)
}

// recordFailure counts a failed send, logging every tenth failure so an
// unreachable backend does not flood the log at the emit rate
func (s *Sender) recordFailure(err error) {
	failed := s.failed.Add(1)
	if failed%10 == 1 {
		s.log.WithError(err).WithField("failed_total", failed).Warn("Failed to send event")
	}
}

// Stats returns the cumulative sent and failed counts
func (s *Sender) Stats() (sent, failed int64) {
	return s.sent.Load(), s.failed.Load()
}

// Drain waits for in-flight sends to finish, up to the timeout
func (s *Sender) Drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.log.Warn("Timed out waiting for in-flight sends to drain")
	}
}
