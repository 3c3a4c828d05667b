package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Dispatcher hands a message to a transport.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

// AsyncDispatcher returns immediately and sends in the background.
// Failures are logged and counted, never returned to the caller.
type AsyncDispatcher struct {
	next    Dispatcher
	logger  *slog.Logger
	timeout time.Duration
	results *prometheus.CounterVec
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(next Dispatcher, logger *slog.Logger, results *prometheus.CounterVec) *AsyncDispatcher {
	return &AsyncDispatcher{
		next:    next,
		logger:  logger,
		timeout: 30 * time.Second,
		results: results,
	}
}

func (a *AsyncDispatcher) Dispatch(_ context.Context, msg Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		// the request context is gone once the handler returns
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		err := a.next.Dispatch(ctx, msg)
		if a.results != nil {
			a.results.WithLabelValues(metrics.Result(err)).Inc()
		}
		if err != nil {
			a.logger.Error("Mail dispatch failed", "to", msg.To, "subject", msg.Subject, "error", err)
			return
		}
		a.logger.Info("Mail dispatched", "to", msg.To, "subject", msg.Subject)
	}()
	return nil
}

// Wait blocks until every background send has finished.
func (a *AsyncDispatcher) Wait() {
	a.wg.Wait()
}

// LogDispatcher writes messages to the log instead of sending them.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (l LogDispatcher) Dispatch(_ context.Context, msg Message) error {
	l.Logger.Warn("Mail transport not configured, message dropped", "to", msg.To, "subject", msg.Subject)
	return nil
}
