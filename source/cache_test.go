package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spektr-org/podes/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingSource struct {
	calls  atomic.Int32
	err    error
	closed bool
}

func (s *countingSource) Villages(context.Context) ([]engine.VillageRecord, error) {
	n := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []engine.VillageRecord{engine.NewVillageRecord("1", "A", "BATU", nil), engine.NewVillageRecord(string(rune('0'+n)), "", "", nil)}, nil
}

func (s *countingSource) Close() error {
	s.closed = true
	return nil
}

func TestCached_ServesFromCache(t *testing.T) {
	inner := &countingSource{}
	c := NewCached(inner, time.Minute, time.Minute, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := c.Villages(context.Background())
			assert.NoError(t, err)
			assert.Len(t, rows, 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), inner.calls.Load())

	c.Invalidate()
	_, err := c.Villages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, int32(3), inner.calls.Load())

	require.NoError(t, c.Close())
	assert.True(t, inner.closed)
}

func TestCached_ErrorNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("down")}
	c := NewCached(inner, 0, 0, nil)

	_, err := c.Villages(context.Background())
	assert.Error(t, err)
	_, err = c.Villages(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCached_StartRefresh(t *testing.T) {
	c := NewCached(&countingSource{}, time.Minute, 0, zaptest.NewLogger(t))
	defer c.Close()

	assert.Error(t, c.StartRefresh("not a schedule", time.Second))
	require.NoError(t, c.StartRefresh("@every 1h", time.Second))
	assert.ErrorContains(t, c.StartRefresh("@every 1h", time.Second), "already scheduled")
}
