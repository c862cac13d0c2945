package model

import "time"

// Step is a stage of the data-entry conversation.
type Step string

const (
	StepChooseLocation  Step = "choose_location"
	StepChooseEntryType Step = "choose_entry_type"
	StepChooseDate      Step = "choose_date"
	StepEnterCustomDate Step = "enter_custom_date"
	StepEnterItems      Step = "enter_items"
	StepEnterNote       Step = "enter_note"
	StepReview          Step = "review"
)

// Session holds the in-flight state of one user's data-entry flow.
type Session struct {
	UserID     int64
	ChatID     int64
	Step       Step
	Location   Location
	EntryType  EntryType
	Date       time.Time
	Items      []Item
	Cursor     int
	Quantities map[string]float64
	Note       string
	StartedAt  time.Time
	LastActive time.Time
}

// Touch records activity, resetting the inactivity clock.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}

// Expired reports whether the session has been idle past ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActive) > ttl
}

// CurrentItem returns the item at the entry cursor, if any.
func (s *Session) CurrentItem() (Item, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[s.Cursor], true
}

// CountedItems returns how many items have a recorded quantity.
func (s *Session) CountedItems() int {
	return len(s.Quantities)
}
