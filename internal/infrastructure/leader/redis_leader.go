package leader

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Only the holder of the lock key runs cluster-wide jobs such as the subscription expiry sweep.
type RedisLeaderElection struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    logger.Logger

	mu        sync.Mutex
	heartbeat *heartbeat
}

type heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRedisLeaderElection(client *redis.Client, key string, ttl time.Duration, log logger.Logger) *RedisLeaderElection {
	return &RedisLeaderElection{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    log,
	}
}

const renewScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("PEXPIRE", KEYS[1], ARGV[2])
    else
        return 0
    end
`

const releaseScript = `
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("DEL", KEYS[1])
    else
        return 0
    end
`

func (r *RedisLeaderElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	result, err := r.client.SetNX(ctx, r.key, instanceID, r.ttl).Result()
	if err != nil {
		return false, err
	}

	if result {
		r.startHeartbeat(instanceID)
		return true, nil
	}

	// Already leader from an earlier round; restart the heartbeat if it gave up on a failed renewal.
	isLeader, err := r.IsLeader(ctx, instanceID)
	if err != nil || !isLeader {
		return false, err
	}
	r.startHeartbeat(instanceID)
	return true, nil
}

func (r *RedisLeaderElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	currentLeader, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return currentLeader == instanceID, nil
}

// ReleaseLeadership stops the heartbeat and drops the lock if instanceID holds it.
func (r *RedisLeaderElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	r.stopHeartbeat()
	_, err := r.client.Eval(ctx, releaseScript, []string{r.key}, instanceID).Result()
	return err
}

func (r *RedisLeaderElection) startHeartbeat(instanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.heartbeat != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	hb := &heartbeat{cancel: cancel, done: make(chan struct{})}
	r.heartbeat = hb
	go r.maintainLeadership(ctx, hb, instanceID)
}

func (r *RedisLeaderElection) stopHeartbeat() {
	r.mu.Lock()
	hb := r.heartbeat
	r.mu.Unlock()
	if hb == nil {
		return
	}
	hb.cancel()
	<-hb.done
}

func (r *RedisLeaderElection) maintainLeadership(ctx context.Context, hb *heartbeat, instanceID string) {
	defer func() {
		r.mu.Lock()
		if r.heartbeat == hb {
			r.heartbeat = nil
		}
		r.mu.Unlock()
		close(hb.done)
	}()

	ticker := time.NewTicker(r.ttl / 3) // Refresh at 1/3 of TTL
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renewCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			renewed, err := r.renew(renewCtx, instanceID)
			cancel()

			if ctx.Err() != nil {
				return
			}
			if err != nil || !renewed {
				r.log.Warn("Lost leadership", "instance_id", instanceID, "error", err)
				return
			}
		}
	}
}

func (r *RedisLeaderElection) renew(ctx context.Context, instanceID string) (bool, error) {
	result, err := r.client.Eval(ctx, renewScript, []string{r.key},
		instanceID, r.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
