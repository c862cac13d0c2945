package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ladiossato/k2-inventory/internal/model"
)

const (
	// StreamName is the name of the inventory journal stream.
	StreamName = "INVENTORY"

	// SubjectPrefix is the prefix for all inventory subjects.
	SubjectPrefix = "inv"
)

// Journal publishes inventory events to JetStream. A nil Journal is a
// no-op, which is how the bot runs when NATS is not configured.
type Journal struct {
	client *Client
}

// NewJournal creates a journal over a connected client.
func NewJournal(client *Client) *Journal {
	return &Journal{client: client}
}

// EnsureStream creates the inventory stream if it does not exist.
func (j *Journal) EnsureStream(ctx context.Context) error {
	if j == nil {
		return nil
	}
	js := j.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Finalized inventory submissions and purchase requests",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// SnapshotSubject returns the subject for a finalized submission.
func SnapshotSubject(loc model.Location, entryType model.EntryType) string {
	return fmt.Sprintf("%s.%s.snapshot.%s", SubjectPrefix, loc, entryType)
}

// RequestSubject returns the subject for a generated request batch.
func RequestSubject(loc model.Location) string {
	return fmt.Sprintf("%s.%s.request", SubjectPrefix, loc)
}

type snapshotEvent struct {
	EventID string         `json:"event_id"`
	Time    time.Time      `json:"time"`
	Data    model.Snapshot `json:"data"`
}

type requestEvent struct {
	EventID  string              `json:"event_id"`
	Time     time.Time           `json:"time"`
	BatchID  string              `json:"batch_id"`
	Location model.Location      `json:"location"`
	Label    string              `json:"label"`
	Lines    []model.RequestLine `json:"lines"`
}

// PublishSnapshot journals a finalized submission.
func (j *Journal) PublishSnapshot(ctx context.Context, snap model.Snapshot) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(snapshotEvent{
		EventID: uuid.NewString(),
		Time:    time.Now().UTC(),
		Data:    snap,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot event: %w", err)
	}
	if _, err := j.client.JetStream().Publish(ctx, SnapshotSubject(snap.Location, snap.EntryType), data); err != nil {
		return fmt.Errorf("failed to publish snapshot event: %w", err)
	}
	return nil
}

// PublishRequestBatch journals a generated purchase-request batch.
func (j *Journal) PublishRequestBatch(ctx context.Context, batchID string, loc model.Location, label string, lines []model.RequestLine) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(requestEvent{
		EventID:  uuid.NewString(),
		Time:     time.Now().UTC(),
		BatchID:  batchID,
		Location: loc,
		Label:    label,
		Lines:    lines,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request event: %w", err)
	}
	if _, err := j.client.JetStream().Publish(ctx, RequestSubject(loc), data); err != nil {
		return fmt.Errorf("failed to publish request event: %w", err)
	}
	return nil
}
