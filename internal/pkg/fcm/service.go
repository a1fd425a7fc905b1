package fcm

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"golang.org/x/sync/errgroup"
)

// Service delivers conflict alerts through Firebase Cloud Messaging. The
// sender hands it one message per (member, conflict) pair; batches are split
// to the FCM limit and sent concurrently.
type Service struct {
	client *messaging.Client
}

func NewService(ctx context.Context) (*Service, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining messaging client: %w", err)
	}

	return &Service{client: client}, nil
}

type Message struct {
	Token string
	Data  map[string]string
}

// ConflictAlert is the payload of one schedule-conflict push. Clients route on
// the "type" key and deep-link into the compare screen via the conflict id.
type ConflictAlert struct {
	ConflictID    string
	GroupID       int64
	OverlapStart  time.Time
	OverlapEnd    time.Time
	ExistingTitle string
	IncomingTitle string
}

// Message renders the alert as a data-only push for the given device token.
// Titles are omitted rather than sent empty; a title can be missing when the
// event left the snapshot between detection and send.
func (a ConflictAlert) Message(token string) *Message {
	data := map[string]string{
		"type":          "schedule_conflict",
		"conflict_id":   a.ConflictID,
		"group_id":      fmt.Sprintf("%v", a.GroupID),
		"overlap_start": a.OverlapStart.Format(time.RFC3339),
		"overlap_end":   a.OverlapEnd.Format(time.RFC3339),
	}

	if a.ExistingTitle != "" {
		data["existing_title"] = a.ExistingTitle
	}
	if a.IncomingTitle != "" {
		data["incoming_title"] = a.IncomingTitle
	}

	return &Message{
		Token: token,
		Data:  data,
	}
}

// FCM caps SendAll at 500 messages per call.
const batchSize = 500

func (s *Service) SendMessageBatch(ctx context.Context, ms []*Message) error {
	messages := make([]*messaging.Message, len(ms))
	for i, m := range ms {
		messages[i] = &messaging.Message{
			Data:  m.Data,
			Token: m.Token,
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < len(messages); i += batchSize {
		from := i
		to := i + batchSize
		if to > len(messages) {
			to = len(messages)
		}

		g.Go(func() error {
			if _, err := s.client.SendAll(ctx, messages[from:to]); err != nil {
				return fmt.Errorf("send batch: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
