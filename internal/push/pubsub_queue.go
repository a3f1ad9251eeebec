package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/anonto42/cinetrack/backend/internal/logging"
	"google.golang.org/api/option"
)

// PubSubQueue is a durable Queue on Google Cloud Pub/Sub. Jobs published by
// any instance are received and delivered by whichever instance is subscribed.
type PubSubQueue struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	subID  string
	handle Handler
	log    logging.Logger
}

func NewPubSubQueue(ctx context.Context, projectID, topicID, subID string, handle Handler, log logging.Logger, opts ...option.ClientOption) (*PubSubQueue, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	if subID == "" {
		subID = topicID + "-sub"
	}
	return &PubSubQueue{
		client: client,
		topic:  client.Topic(topicID),
		subID:  subID,
		handle: handle,
		log:    log.With("component", "push_pubsub", "topic", topicID),
	}, nil
}

func (q *PubSubQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode push job: %w", err)
	}

	res := q.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": job.Type},
	})
	go func() {
		getCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := res.Get(getCtx); err != nil {
			q.log.Warn(getCtx, "publish push job", "notification_id", job.NotificationID, "error", err)
		}
	}()
	return nil
}

// Start ensures the subscription exists and receives jobs until ctx is done.
func (q *PubSubQueue) Start(ctx context.Context) error {
	sub := q.client.Subscription(q.subID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check subscription %s: %w", q.subID, err)
	}
	if !exists {
		sub, err = q.client.CreateSubscription(ctx, q.subID, pubsub.SubscriptionConfig{
			Topic:       q.topic,
			AckDeadline: 30 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("create subscription %s: %w", q.subID, err)
		}
		q.log.Info(ctx, "created subscription", "subscription", q.subID)
	}

	q.log.Info(ctx, "listening for push jobs", "subscription", q.subID)
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var job Job
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			// malformed jobs would be redelivered forever
			q.log.Error(ctx, "decode push job", "message_id", msg.ID, "error", err)
			msg.Ack()
			return
		}
		q.handle(ctx, job)
		msg.Ack()
	})
}

func (q *PubSubQueue) Stop() {
	q.topic.Stop()
	if err := q.client.Close(); err != nil {
		q.log.Warn(context.Background(), "close pubsub client", "error", err)
	}
}
