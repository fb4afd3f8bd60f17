package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"storefront/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (c *countingExpirer) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestScheduler_OnlyLeaderSweeps(t *testing.T) {
	tests := []struct {
		name   string
		leader *fakeLeader
		want   int32
	}{
		{"leader", &fakeLeader{leader: true}, 1},
		{"follower", &fakeLeader{leader: false}, 0},
		{"leadership check fails", &fakeLeader{err: errors.New("redis down")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expirer := &countingExpirer{}
			s := NewCronSubscriptionScheduler("@every 1m", expirer, tt.leader, "instance-1",
				logger.NewWithZap(zaptest.NewLogger(t)))

			s.processExpiredSubscriptions(context.Background())

			assert.Equal(t, tt.want, expirer.calls.Load())
		})
	}
}

func TestScheduler_SweepErrorIsNotFatal(t *testing.T) {
	expirer := &countingExpirer{err: errDatabaseDown}
	s := NewCronSubscriptionScheduler("@every 1m", expirer, &fakeLeader{leader: true}, "instance-1",
		logger.NewWithZap(zaptest.NewLogger(t)))

	assert.NotPanics(t, func() { s.processExpiredSubscriptions(context.Background()) })
	assert.EqualValues(t, 1, expirer.calls.Load())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	expirer := &countingExpirer{}
	// Cron jobs run on their own goroutine, which may still log after the test ends.
	s := NewCronSubscriptionScheduler("@every 1s", expirer, &fakeLeader{leader: true}, "instance-1", logger.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewCronSubscriptionScheduler("not a schedule", &countingExpirer{}, &fakeLeader{}, "instance-1", logger.NewNop())

	assert.Error(t, s.Start(context.Background()))
}
