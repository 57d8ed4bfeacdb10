package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobbot/core/logger"
)

// ctxCaptureHandler records the RID carried by the context of every
// log call, which is how request correlation reaches the output.
type ctxCaptureHandler struct {
	mu   sync.Mutex
	rids []string
}

func (h *ctxCaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *ctxCaptureHandler) Handle(ctx context.Context, _ slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rids = append(h.rids, logger.RIDFrom(ctx))
	return nil
}

func (h *ctxCaptureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *ctxCaptureHandler) WithGroup(string) slog.Handler      { return h }

func (h *ctxCaptureHandler) last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.rids) == 0 {
		return ""
	}
	return h.rids[len(h.rids)-1]
}

func TestTransitionLogsCarryRequestID(t *testing.T) {
	f := newFixture(t)

	capture := &ctxCaptureHandler{}
	old := logger.SVCVacancies
	logger.SVCVacancies = slog.New(capture)
	t.Cleanup(func() { logger.SVCVacancies = old })

	f.registerUser(t, 10, "miner_1")
	v := f.createVacancy(t, 150)

	ctx := logger.WithRID(context.Background(), "rid-123")
	require.NoError(t, f.vacancies.Claim(ctx, v.ID, 10))
	assert.Equal(t, "rid-123", capture.last())

	// Rejected transitions correlate the same way.
	ctx = logger.WithRID(context.Background(), "rid-456")
	err := f.vacancies.Refuse(ctx, v.ID, 11)
	require.Error(t, err)
	assert.Equal(t, "rid-456", capture.last())
}
