package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ladiossato/k2-inventory/internal/telegram"
	"github.com/ladiossato/k2-inventory/pkg/logger"
)

// Updater is the inbound transport surface the poller needs.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Poller pulls updates in a loop and feeds them to the router one at a
// time, preserving per-user arrival order.
type Poller struct {
	client  Updater
	router  *Router
	log     *logger.Logger
	backoff time.Duration
}

// NewPoller creates a poller.
func NewPoller(client Updater, router *Router, log *logger.Logger) *Poller {
	return &Poller{
		client:  client,
		router:  router,
		log:     log,
		backoff: 5 * time.Second,
	}
}

// Run polls until the context is cancelled. Transport errors back off
// and retry; they never end the loop.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("poll updates", zap.Error(err))
			select {
			case <-time.After(p.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			p.router.HandleUpdate(ctx, upd)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
