// Package conversation implements the step-by-step data-entry flow.
package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ladiossato/k2-inventory/internal/model"
	"github.com/ladiossato/k2-inventory/internal/telegram"
	"github.com/ladiossato/k2-inventory/pkg/logger"
	"github.com/ladiossato/k2-inventory/pkg/metrics"
)

// Catalog resolves the active item list per location.
type Catalog interface {
	ItemsForLocation(ctx context.Context, loc model.Location) ([]model.Item, error)
}

// SnapshotSaver persists finalized submissions.
type SnapshotSaver interface {
	Save(ctx context.Context, snap model.Snapshot) error
}

// RequestedLookup finds recently requested quantities so received
// deliveries can be checked for shortages.
type RequestedLookup interface {
	RecentRequested(ctx context.Context, loc model.Location, since time.Time) (map[string]int, error)
}

// Publisher journals finalized submissions. May be a nil journal.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap model.Snapshot) error
}

// Summarizer renders the post-submit confirmation.
type Summarizer func(snap model.Snapshot, items []model.Item, requested map[string]int) string

// Reply is one outbound message produced by a transition.
type Reply struct {
	Text   string
	Markup *telegram.InlineKeyboardMarkup
}

// Result of handling one inbound input.
type Result struct {
	Reply Reply
	// Done marks a terminal transition; the caller destroys the
	// session.
	Done bool
}

// Engine drives a session through the data-entry state machine. It is
// stateless itself: all flow state lives in the session.
type Engine struct {
	catalog   Catalog
	snapshots SnapshotSaver
	requests  RequestedLookup
	journal   Publisher
	summarize Summarizer
	tz        *time.Location
	now       func() time.Time
	log       *logger.Logger
}

// New creates a conversation engine.
func New(cat Catalog, snapshots SnapshotSaver, requests RequestedLookup, journal Publisher, summarize Summarizer, tz *time.Location, log *logger.Logger) *Engine {
	return &Engine{
		catalog:   cat,
		snapshots: snapshots,
		requests:  requests,
		journal:   journal,
		summarize: summarize,
		tz:        tz,
		now:       time.Now,
		log:       log,
	}
}

// Start creates a fresh session for the user and returns the opening
// prompt. Any previous session is implicitly replaced by the caller.
func (e *Engine) Start(userID, chatID int64) (*model.Session, Reply) {
	now := e.now()
	sess := &model.Session{
		UserID:     userID,
		ChatID:     chatID,
		Step:       model.StepChooseLocation,
		Quantities: make(map[string]float64),
		StartedAt:  now,
		LastActive: now,
	}
	return sess, promptChooseLocation()
}

// Handle advances the session with one inbound input: message text or
// callback data. Invalid input re-prompts the current step without a
// state change.
func (e *Engine) Handle(ctx context.Context, sess *model.Session, input string) (Result, error) {
	sess.Touch(e.now())
	token := normalize(input)

	if isCancel(token) {
		return Result{Reply: Reply{Text: "❌ Entry cancelled. Nothing was saved."}, Done: true}, nil
	}

	switch sess.Step {
	case model.StepChooseLocation:
		return e.handleChooseLocation(sess, token), nil
	case model.StepChooseEntryType:
		return e.handleChooseEntryType(sess, token), nil
	case model.StepChooseDate:
		return e.handleChooseDate(ctx, sess, token)
	case model.StepEnterCustomDate:
		return e.handleEnterCustomDate(ctx, sess, token)
	case model.StepEnterItems:
		return e.handleEnterItems(sess, token), nil
	case model.StepEnterNote:
		return e.handleEnterNote(sess, input, token), nil
	case model.StepReview:
		return e.handleReview(ctx, sess, token)
	default:
		// unknown step, treat as invalid input
		return Result{Reply: promptChooseLocation()}, nil
	}
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

func isCancel(token string) bool {
	return token == "cancel" || token == "/cancel" || token == "review|cancel"
}

func (e *Engine) handleChooseLocation(sess *model.Session, token string) Result {
	var loc model.Location
	switch token {
	case "loc|avondale", "avondale":
		loc = model.LocationAvondale
	case "loc|commissary", "commissary":
		loc = model.LocationCommissary
	default:
		return Result{Reply: invalid("Pick a location using the buttons below.", promptChooseLocation())}
	}
	sess.Location = loc
	sess.Step = model.StepChooseEntryType
	return Result{Reply: promptChooseEntryType(loc)}
}

func (e *Engine) handleChooseEntryType(sess *model.Session, token string) Result {
	switch token {
	case "back":
		sess.Step = model.StepChooseLocation
		return Result{Reply: promptChooseLocation()}
	case "type|on_hand", "on-hand", "on_hand", "onhand":
		sess.EntryType = model.EntryOnHand
	case "type|received", "received":
		sess.EntryType = model.EntryReceived
	default:
		return Result{Reply: invalid("Pick an entry type using the buttons below.", promptChooseEntryType(sess.Location))}
	}
	sess.Step = model.StepChooseDate
	return Result{Reply: promptChooseDate()}
}

func (e *Engine) handleChooseDate(ctx context.Context, sess *model.Session, token string) (Result, error) {
	today := e.today()
	switch token {
	case "back":
		sess.Step = model.StepChooseEntryType
		return Result{Reply: promptChooseEntryType(sess.Location)}, nil
	case "date|today", "today":
		return e.beginItems(ctx, sess, today)
	case "date|yesterday", "yesterday":
		return e.beginItems(ctx, sess, today.AddDate(0, 0, -1))
	case "date|custom", "custom":
		sess.Step = model.StepEnterCustomDate
		return Result{Reply: promptCustomDate()}, nil
	default:
		return Result{Reply: invalid("Pick a date using the buttons below.", promptChooseDate())}, nil
	}
}

func (e *Engine) handleEnterCustomDate(ctx context.Context, sess *model.Session, token string) (Result, error) {
	if token == "back" {
		sess.Step = model.StepChooseDate
		return Result{Reply: promptChooseDate()}, nil
	}

	date, err := e.parseDate(token)
	if err != nil {
		return Result{Reply: invalid("I couldn't read that date. Use <code>YYYY-MM-DD</code> or <code>MM-DD</code>.", promptCustomDate())}, nil
	}
	return e.beginItems(ctx, sess, date)
}

// parseDate accepts ISO dates and a MM-DD short form resolved against
// the current year.
func (e *Engine) parseDate(token string) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02", token, e.tz); err == nil {
		return d, nil
	}
	if d, err := time.ParseInLocation("01-02", token, e.tz); err == nil {
		return d.AddDate(e.now().In(e.tz).Year(), 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", token)
}

func (e *Engine) today() time.Time {
	now := e.now().In(e.tz)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.tz)
}

func (e *Engine) beginItems(ctx context.Context, sess *model.Session, date time.Time) (Result, error) {
	items, err := e.catalog.ItemsForLocation(ctx, sess.Location)
	if err != nil {
		e.log.Error("load item catalog", zap.String("location", string(sess.Location)), zap.Error(err))
		return Result{Reply: Reply{Text: "⚠️ Couldn't load the item list. Please try again."}}, nil
	}
	if len(items) == 0 {
		return Result{Reply: Reply{Text: "⚠️ No active items for " + sess.Location.Display() + ". Nothing to record."}, Done: true}, nil
	}

	sess.Date = date
	sess.Items = items
	sess.Cursor = 0
	sess.Step = model.StepEnterItems
	return Result{Reply: promptItem(sess)}, nil
}

func (e *Engine) handleEnterItems(sess *model.Session, token string) Result {
	switch token {
	case "back":
		if sess.Cursor == 0 {
			sess.Step = model.StepChooseDate
			return Result{Reply: promptChooseDate()}
		}
		sess.Cursor--
		return Result{Reply: promptItem(sess)}
	case "skip", "/skip":
		return e.advanceItem(sess)
	case "done", "/done":
		sess.Step = model.StepEnterNote
		return Result{Reply: promptNote()}
	}

	qty, err := strconv.ParseFloat(token, 64)
	if err != nil || qty < 0 {
		return Result{Reply: invalid("Enter a non-negative number, or <b>skip</b> / <b>back</b> / <b>done</b>.", promptItem(sess))}
	}

	item, ok := sess.CurrentItem()
	if !ok {
		sess.Step = model.StepEnterNote
		return Result{Reply: promptNote()}
	}
	if qty > 0 {
		sess.Quantities[item.Name] = qty
	} else {
		// an explicit zero clears any earlier entry for this item
		delete(sess.Quantities, item.Name)
	}
	return e.advanceItem(sess)
}

func (e *Engine) advanceItem(sess *model.Session) Result {
	sess.Cursor++
	if sess.Cursor >= len(sess.Items) {
		sess.Step = model.StepEnterNote
		return Result{Reply: promptNote()}
	}
	return Result{Reply: promptItem(sess)}
}

func (e *Engine) handleEnterNote(sess *model.Session, raw, token string) Result {
	switch token {
	case "back":
		sess.Step = model.StepEnterItems
		if sess.Cursor >= len(sess.Items) {
			sess.Cursor = len(sess.Items) - 1
		}
		return Result{Reply: promptItem(sess)}
	case "skip", "/skip", "none":
		sess.Note = ""
	default:
		sess.Note = strings.TrimSpace(raw)
	}
	sess.Step = model.StepReview
	return Result{Reply: promptReview(sess)}
}

func (e *Engine) handleReview(ctx context.Context, sess *model.Session, token string) (Result, error) {
	switch token {
	case "review|back", "back", "edit":
		sess.Step = model.StepEnterItems
		sess.Cursor = len(sess.Items) - 1
		return Result{Reply: promptItem(sess)}, nil
	case "review|submit", "submit", "/done", "done":
		return e.finalize(ctx, sess)
	default:
		return Result{Reply: invalid("Use the buttons: <b>Submit</b>, <b>Back</b>, or <b>Cancel</b>.", promptReview(sess))}, nil
	}
}

// finalize persists the submission. On a store failure the session
// stays in Review so nothing has to be re-entered.
func (e *Engine) finalize(ctx context.Context, sess *model.Session) (Result, error) {
	if len(sess.Quantities) == 0 {
		return Result{Reply: invalid("Nothing to submit yet: every item was skipped or zero.", promptReview(sess))}, nil
	}

	quantities := make(map[string]float64, len(sess.Quantities))
	for name, qty := range sess.Quantities {
		quantities[name] = qty
	}

	snap := model.Snapshot{
		ID:          uuid.NewString(),
		Location:    sess.Location,
		EntryType:   sess.EntryType,
		Date:        sess.Date,
		Quantities:  quantities,
		Note:        sess.Note,
		SubmittedBy: sess.UserID,
		SubmittedAt: e.now(),
	}

	if err := e.snapshots.Save(ctx, snap); err != nil {
		e.log.Error("save snapshot",
			zap.String("location", string(snap.Location)),
			zap.String("entry_type", string(snap.EntryType)),
			zap.Error(err),
		)
		return Result{Reply: Reply{Text: "⚠️ Couldn't save your entry. Please try Submit again in a moment.", Markup: reviewKeyboard()}}, nil
	}

	if err := e.journal.PublishSnapshot(ctx, snap); err != nil {
		// journaling is best effort, the submission is already saved
		e.log.Warn("journal snapshot", zap.Error(err))
	}

	var requested map[string]int
	if snap.EntryType == model.EntryReceived {
		var err error
		requested, err = e.requests.RecentRequested(ctx, snap.Location, snap.Date.AddDate(0, 0, -7))
		if err != nil {
			e.log.Warn("lookup recent requests", zap.Error(err))
		}
	}

	metrics.SubmissionsTotal.WithLabelValues(string(snap.Location), string(snap.EntryType)).Inc()
	return Result{Reply: Reply{Text: e.summarize(snap, sess.Items, requested)}, Done: true}, nil
}
