package model

import "time"

// EntryType distinguishes a stock count from a received delivery.
type EntryType string

const (
	EntryOnHand   EntryType = "on_hand"
	EntryReceived EntryType = "received"
)

// Display returns the human-readable entry type.
func (e EntryType) Display() string {
	switch e {
	case EntryOnHand:
		return "On-Hand Count"
	case EntryReceived:
		return "Received Delivery"
	default:
		return string(e)
	}
}

// Snapshot is one finalized inventory submission.
type Snapshot struct {
	ID          string             `json:"id"`
	Location    Location           `json:"location"`
	EntryType   EntryType          `json:"entry_type"`
	Date        time.Time          `json:"date"`
	Quantities  map[string]float64 `json:"quantities"`
	Note        string             `json:"note,omitempty"`
	SubmittedBy int64              `json:"submitted_by"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// StockStatus classifies how an item's quantity covers expected usage.
type StockStatus string

const (
	StatusRed     StockStatus = "red"
	StatusYellow  StockStatus = "yellow"
	StatusGreen   StockStatus = "green"
	StatusMissing StockStatus = "missing"
)

// Emoji returns the status marker used in chat output.
func (s StockStatus) Emoji() string {
	switch s {
	case StatusRed:
		return "\U0001F534"
	case StatusYellow:
		return "\U0001F7E1"
	case StatusGreen:
		return "\U0001F7E2"
	default:
		return "⚪"
	}
}

// ItemStatus is the classification of one item at a point in time.
type ItemStatus struct {
	Item        Item        `json:"item"`
	OnHand      *float64    `json:"on_hand"`
	Required    float64     `json:"required"`
	DaysOfStock *float64    `json:"days_of_stock"`
	Status      StockStatus `json:"status"`
}

// RequestLine is one line of a generated purchase request.
type RequestLine struct {
	Item         Item    `json:"item"`
	OnHand       float64 `json:"on_hand"`
	Needed       float64 `json:"needed"`
	Requested    int     `json:"requested"`
	FullyStocked bool    `json:"fully_stocked"`
}
