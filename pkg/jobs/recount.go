package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/trix-studio/trix/pkg/tools"
)

// Recounter recomputes the denormalised like/view/comment/follow counters.
type Recounter interface {
	RecountAll(ctx context.Context) error
}

// ScheduleDailyRecount sets up a cron job that recounts all counters every day.
func ScheduleDailyRecount(ctx context.Context, svc Recounter) *cron.Cron {
	return schedule(ctx, "@daily", svc)
}

func schedule(ctx context.Context, spec string, svc Recounter) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc(spec, func() {
		tools.Dispatch(ctx, "recount_all", func(ctx context.Context) error {
			return svc.RecountAll(ctx)
		})
	})
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c
}
