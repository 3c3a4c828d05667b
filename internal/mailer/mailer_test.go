package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recorder) Dispatch(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAsyncDispatcherDeliversInBackground(t *testing.T) {
	rec := &recorder{}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mail_test_total"}, []string{"result"})
	async := NewAsyncDispatcher(rec, quietLogger(), results)

	require.NoError(t, async.Dispatch(context.Background(), Message{To: "a@b.co", Subject: "hi"}))
	async.Wait()

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "a@b.co", rec.sent[0].To)
	assert.Equal(t, 1.0, testutil.ToFloat64(results.WithLabelValues("ok")))
}

func TestAsyncDispatcherSwallowsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("smtp down")}
	results := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mail_test_fail_total"}, []string{"result"})
	async := NewAsyncDispatcher(rec, quietLogger(), results)

	assert.NoError(t, async.Dispatch(context.Background(), Message{To: "a@b.co"}))
	async.Wait()
	assert.Equal(t, 1.0, testutil.ToFloat64(results.WithLabelValues("error")))
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	msg, err := ContactEmail("inbox@site.co", Contact{
		FirstName: "<script>",
		LastName:  "Doe",
		Phone:     "0501234567",
		Email:     "j@d.co",
		Message:   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "inbox@site.co", msg.To)
	assert.Equal(t, "mail send from 0501234567", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")

	msg, err = VerificationEmail("u@x.co", "https://api.example.com/users/verify/1/abc", "6 hours")
	require.NoError(t, err)
	assert.True(t, strings.Contains(msg.HTML, "https://api.example.com/users/verify/1/abc"))
	assert.Contains(t, msg.HTML, "6 hours")

	msg, err = ResetEmail("u@x.co", "https://front.example.com/reset/1/abc", "1 hour")
	require.NoError(t, err)
	assert.Equal(t, "Password Reset", msg.Subject)
}
