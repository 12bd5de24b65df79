// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	calls atomic.Int32
	err   error
}

func (c *countingCloser) SweepClosed(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every now and then", &countingCloser{})
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	c := &countingCloser{}
	s, err := New("@every 1h", c)
	require.NoError(t, err)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), c.calls.Load())

	c.err = errors.New("database unavailable")
	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), c.calls.Load())
}

func TestStartStop(t *testing.T) {
	c := &countingCloser{}
	s, err := New("@every 1s", c)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return c.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	after := c.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, c.calls.Load())
}
