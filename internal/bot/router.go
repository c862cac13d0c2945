// Package bot wires inbound Telegram updates to commands and the
// data-entry conversation.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ladiossato/k2-inventory/internal/conversation"
	"github.com/ladiossato/k2-inventory/internal/engine"
	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/ratelimit"
	"github.com/ladiossato/k2-inventory/internal/report"
	"github.com/ladiossato/k2-inventory/internal/schedule"
	"github.com/ladiossato/k2-inventory/internal/session"
	"github.com/ladiossato/k2-inventory/internal/telegram"
	"github.com/ladiossato/k2-inventory/pkg/logger"
	"github.com/ladiossato/k2-inventory/pkg/metrics"
)

const sweepInterval = time.Minute

// Sender is the outbound transport surface the router needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// SnapshotReader reads persisted counts for reporting commands.
type SnapshotReader interface {
	LatestOnHand(ctx context.Context, loc model.Location, onOrBefore time.Time) (map[string]float64, error)
	MissingItems(ctx context.Context, loc model.Location, date time.Time) ([]string, error)
}

// RequestSink persists generated request batches.
type RequestSink interface {
	SaveBatch(ctx context.Context, batchID string, loc model.Location, requestDate time.Time, deliveryLabel string, lines []model.RequestLine) error
}

// RequestJournal publishes generated batches downstream.
type RequestJournal interface {
	PublishRequestBatch(ctx context.Context, batchID string, loc model.Location, label string, lines []model.RequestLine) error
}

// Router dispatches updates: slash commands directly, everything else
// into the active conversation.
type Router struct {
	sender    Sender
	sessions  *session.Store
	limiter   *ratelimit.Limiter
	convo     *conversation.Engine
	engine    *engine.Engine
	schedule  *schedule.Model
	catalog   conversation.Catalog
	snapshots SnapshotReader
	requests  RequestSink
	journal   RequestJournal
	tz        *time.Location
	buffer    float64
	log       *logger.Logger
	now       func() time.Time

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
	lastSweep time.Time
}

// Config collects the router's collaborators.
type Config struct {
	Sender    Sender
	Sessions  *session.Store
	Limiter   *ratelimit.Limiter
	Convo     *conversation.Engine
	Engine    *engine.Engine
	Schedule  *schedule.Model
	Catalog   conversation.Catalog
	Snapshots SnapshotReader
	Requests  RequestSink
	Journal   RequestJournal
	Timezone  *time.Location
	Buffer    float64
	Logger    *logger.Logger
}

// NewRouter creates a router.
func NewRouter(cfg Config) *Router {
	return &Router{
		sender:    cfg.Sender,
		sessions:  cfg.Sessions,
		limiter:   cfg.Limiter,
		convo:     cfg.Convo,
		engine:    cfg.Engine,
		schedule:  cfg.Schedule,
		catalog:   cfg.Catalog,
		snapshots: cfg.Snapshots,
		requests:  cfg.Requests,
		journal:   cfg.Journal,
		tz:        cfg.Timezone,
		buffer:    cfg.Buffer,
		log:       cfg.Logger,
		now:       time.Now,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// HandleUpdate processes one inbound update. Failures are logged, not
// propagated: one bad message must not halt the loop.
func (r *Router) HandleUpdate(ctx context.Context, upd telegram.Update) {
	var userID, chatID int64
	var input string

	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		userID = cb.From.ID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		input = cb.Data
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		if err := r.sender.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			r.log.Warn("answer callback", zap.Error(err))
		}
	case upd.Message != nil && upd.Message.From != nil:
		userID = upd.Message.From.ID
		chatID = upd.Message.Chat.ID
		input = upd.Message.Text
		metrics.UpdatesTotal.WithLabelValues("message").Inc()
	default:
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
		return
	}

	r.maybeSweep()

	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	log := r.log.WithUser(userID, chatID)

	now := r.now()
	_, hasSession := r.sessions.Get(userID, now)
	if !r.limiter.Allow(userID, firstToken(input), hasSession) {
		metrics.RateLimited.Inc()
		r.send(ctx, chatID, "⏳ Slow down a little. Try again in a minute, or /cancel an active entry.", nil)
		return
	}

	if err := r.dispatch(ctx, userID, chatID, input); err != nil {
		log.Error("handle update", zap.String("input", input), zap.Error(err))
		r.send(ctx, chatID, "⚠️ Something went wrong. Please try again.", nil)
	}
}

func firstToken(input string) string {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (r *Router) userLock(userID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.userLocks[userID] = lock
	}
	return lock
}

// maybeSweep expires idle sessions opportunistically, at most once per
// sweep interval.
func (r *Router) maybeSweep() {
	r.mu.Lock()
	now := r.now()
	due := now.Sub(r.lastSweep) >= sweepInterval
	if due {
		r.lastSweep = now
	}
	r.mu.Unlock()

	if due {
		if removed := r.sessions.Sweep(now); removed > 0 {
			r.log.Info("swept idle sessions", zap.Int("removed", removed))
		}
	}
}

func (r *Router) dispatch(ctx context.Context, userID, chatID int64, input string) error {
	command := strings.ToLower(firstToken(input))

	if strings.HasPrefix(command, "/") {
		return r.dispatchCommand(ctx, userID, chatID, command)
	}

	sess, ok := r.sessions.Get(userID, r.now())
	if !ok {
		r.send(ctx, chatID, "I wasn't expecting that. Start an entry with /entry or see /help.", nil)
		return nil
	}
	return r.continueConversation(ctx, sess, chatID, input)
}

func (r *Router) dispatchCommand(ctx context.Context, userID, chatID int64, command string) error {
	outcome := "ok"
	defer func() {
		metrics.CommandsTotal.WithLabelValues(command, outcome).Inc()
	}()

	switch command {
	case "/start", "/help", "/commands":
		r.send(ctx, chatID, helpText, nil)
	case "/entry":
		sess, reply := r.convo.Start(userID, chatID)
		r.sessions.Put(sess)
		r.send(ctx, chatID, reply.Text, reply.Markup)
	case "/cancel":
		if _, ok := r.sessions.Get(userID, r.now()); ok {
			r.sessions.Delete(userID)
			r.send(ctx, chatID, "❌ Entry cancelled. Nothing was saved.", nil)
		} else {
			r.send(ctx, chatID, "Nothing to cancel.", nil)
		}
	case "/status", "/reassurance":
		return r.statusCommand(ctx, chatID, model.AllLocations)
	case "/status_avondale":
		return r.statusCommand(ctx, chatID, []model.Location{model.LocationAvondale})
	case "/status_commissary":
		return r.statusCommand(ctx, chatID, []model.Location{model.LocationCommissary})
	case "/order":
		return r.orderCommand(ctx, chatID, model.AllLocations)
	case "/order_avondale":
		return r.orderCommand(ctx, chatID, []model.Location{model.LocationAvondale})
	case "/order_commissary":
		return r.orderCommand(ctx, chatID, []model.Location{model.LocationCommissary})
	case "/missing":
		return r.missingCommand(ctx, chatID)
	case "/adu":
		return r.aduCommand(ctx, chatID)
	default:
		// tokens like /done and /skip belong to an active flow
		if sess, ok := r.sessions.Get(userID, r.now()); ok {
			return r.continueConversation(ctx, sess, chatID, command)
		}
		outcome = "unknown"
		r.send(ctx, chatID, "Unknown command: "+command+"\n\nUse /help to see available commands.", nil)
	}
	return nil
}

func (r *Router) continueConversation(ctx context.Context, sess *model.Session, chatID int64, input string) error {
	res, err := r.convo.Handle(ctx, sess, input)
	if err != nil {
		return err
	}
	if res.Done {
		r.sessions.Delete(sess.UserID)
	} else {
		r.sessions.Put(sess)
	}
	r.send(ctx, chatID, res.Reply.Text, res.Reply.Markup)
	return nil
}

func (r *Router) send(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := r.sender.SendMessage(ctx, chatID, text, markup); err != nil {
		r.log.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) statusCommand(ctx context.Context, chatID int64, locs []model.Location) error {
	now := r.now().In(r.tz)
	for _, loc := range locs {
		items, err := r.catalog.ItemsForLocation(ctx, loc)
		if err != nil {
			return err
		}
		onHand, err := r.snapshots.LatestOnHand(ctx, loc, now)
		if err != nil {
			return err
		}
		statuses, err := r.engine.ClassifyAll(items, onHand, now)
		if err != nil {
			return err
		}
		_, deliveryDate, err := r.schedule.NextDelivery(loc, now)
		if err != nil {
			return err
		}
		r.send(ctx, chatID, report.StatusDigest(loc, statuses, deliveryDate), nil)
	}
	return nil
}

func (r *Router) orderCommand(ctx context.Context, chatID int64, locs []model.Location) error {
	now := r.now().In(r.tz)
	sent := false
	for _, loc := range locs {
		if _, ok := r.schedule.WindowFor(loc, now.Weekday()); !ok {
			continue
		}
		items, err := r.catalog.ItemsForLocation(ctx, loc)
		if err != nil {
			return err
		}
		onHand, err := r.snapshots.LatestOnHand(ctx, loc, now)
		if err != nil {
			return err
		}
		lines, window, err := r.engine.GenerateRequests(loc, now.Weekday(), items, onHand)
		if err != nil {
			return err
		}

		batchID := uuid.NewString()
		if err := r.requests.SaveBatch(ctx, batchID, loc, now, window.Label, lines); err != nil {
			return err
		}
		if err := r.journal.PublishRequestBatch(ctx, batchID, loc, window.Label, lines); err != nil {
			r.log.Warn("journal request batch", zap.Error(err))
		}
		metrics.RequestLinesTotal.WithLabelValues(string(loc)).Add(float64(len(engine.Needed(lines))))

		r.send(ctx, chatID, report.OrderAnalysis(loc, window, r.buffer, lines), nil)
		r.send(ctx, chatID, report.OrderMessage(loc, window, lines), nil)
		sent = true
	}
	if !sent {
		r.send(ctx, chatID, "\U0001F4C6 No orders go out today. Check /help for the ordering schedule.", nil)
	}
	return nil
}

func (r *Router) missingCommand(ctx context.Context, chatID int64) error {
	today := r.now().In(r.tz)
	for _, loc := range model.AllLocations {
		names, err := r.snapshots.MissingItems(ctx, loc, today)
		if err != nil {
			return err
		}
		r.send(ctx, chatID, report.MissingReport(loc, today, names), nil)
	}
	return nil
}

func (r *Router) aduCommand(ctx context.Context, chatID int64) error {
	byLoc := make(map[model.Location][]model.Item)
	for _, loc := range model.AllLocations {
		items, err := r.catalog.ItemsForLocation(ctx, loc)
		if err != nil {
			return err
		}
		byLoc[loc] = items
	}
	r.send(ctx, chatID, report.ADUTable(byLoc), nil)
	return nil
}

const helpText = "\U0001F916 <b>K2 INVENTORY BOT</b>\n\n" +
	"<b>\U0001F4DD DATA ENTRY</b>\n" +
	"/entry - record an on-hand count or received delivery\n" +
	"/cancel - abandon the current entry\n\n" +
	"<b>\U0001F4CA REPORTING</b>\n" +
	"/status - stock status for both locations\n" +
	"/status_avondale, /status_commissary - one location\n" +
	"/order - purchase requests for today's ordering window\n" +
	"/order_avondale, /order_commissary - one location\n" +
	"/missing - items without a count today\n" +
	"/adu - average daily usage table\n\n" +
	"<b>\U0001F4CB OTHER</b>\n" +
	"/help - this message"
