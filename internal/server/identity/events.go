// Package identity carries identity-change events from the identity
// provider to the session registry over an in-process watermill pub/sub.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dmitrijs2005/travelog/internal/logging"
)

// Topic is the watermill topic identity changes are published on.
const Topic = "identity.changed"

// Kind is the type of an identity change.
type Kind string

const (
	SignedIn       Kind = "signed_in"
	SignedOut      Kind = "signed_out"
	ProfileUpdated Kind = "profile_updated"
)

// Change describes one identity transition for one user. DisplayName is
// empty for SignedOut.
type Change struct {
	Kind        Kind   `json:"kind"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoggedIn reports whether the user is signed in after the change.
func (c Change) LoggedIn() bool { return c.Kind != SignedOut }

// Publisher emits identity changes.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Subscriber delivers identity changes to onChange until the returned
// unsubscribe function is called or ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func(Change)) (unsubscribe func(), err error)
}

// Bus is a Publisher and Subscriber backed by a watermill GoChannel.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger logging.Logger
}

// NewBus creates the in-process bus. Publish blocks until every subscriber
// acknowledged the change, so a caller that signed a user out can rely on
// the registry having seen it.
func NewBus(logger logging.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{BlockPublishUntilSubscriberAck: true},
			watermill.NewStdLogger(false, false),
		),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode identity change: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish identity change: %w", err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, onChange func(Change)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe identity changes: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			var c Change
			if err := json.Unmarshal(msg.Payload, &c); err != nil {
				b.logger.Warn(ctx, "dropping malformed identity change", "uuid", msg.UUID, "err", err)
				msg.Ack()
				continue
			}
			onChange(c)
			msg.Ack()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

// Close shuts the pub/sub down and ends every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
