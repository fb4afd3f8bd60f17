package services

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/pkg/logger"

	"github.com/robfig/cron/v3"
)

type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int, error)
}

// CronSubscriptionScheduler runs the expiry sweep on the leader instance only.
type CronSubscriptionScheduler struct {
	cron           *cron.Cron
	spec           string
	expirer        SubscriptionExpirer
	leaderElection domain.LeaderElection
	instanceID     string
	now            func() time.Time
	log            logger.Logger
}

func NewCronSubscriptionScheduler(spec string, expirer SubscriptionExpirer, leaderElection domain.LeaderElection,
	instanceID string, log logger.Logger) *CronSubscriptionScheduler {
	return &CronSubscriptionScheduler{
		cron:           cron.New(cron.WithSeconds()),
		spec:           spec,
		expirer:        expirer,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		now:            time.Now,
		log:            log,
	}
}

func (s *CronSubscriptionScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting subscription scheduler", "spec", s.spec)

	_, err := s.cron.AddFunc(s.spec, func() {
		s.processExpiredSubscriptions(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronSubscriptionScheduler) Stop() error {
	s.log.Info("Stopping subscription scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *CronSubscriptionScheduler) processExpiredSubscriptions(ctx context.Context) {
	isLeader, err := s.leaderElection.IsLeader(ctx, s.instanceID)
	if err != nil {
		s.log.Error("Failed to check leadership", "error", err)
		return
	}
	if !isLeader {
		return
	}

	count, err := s.expirer.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		// Failed rows stay active/trial and are retried on the next run.
		s.log.Error("Subscription expiry sweep incomplete", "expired", count, "error", err)
	}
}
