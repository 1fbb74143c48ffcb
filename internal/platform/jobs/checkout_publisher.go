package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/tailor-field/configurator/internal/services"
)

// PubSubCheckoutPublisher hands completed configurations to checkout through a Pub/Sub topic.
type PubSubCheckoutPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubCheckoutPublisher constructs a Pub/Sub backed checkout publisher.
func NewPubSubCheckoutPublisher(topic *pubsub.Topic) (*PubSubCheckoutPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub checkout publisher: topic is required")
	}
	return &PubSubCheckoutPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishOrder publishes the submission and waits for the server-assigned message id.
func (p *PubSubCheckoutPublisher) PublishOrder(ctx context.Context, submission services.OrderSubmission) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub checkout publisher: not initialised")
	}

	data, err := p.marshal(submission)
	if err != nil {
		return "", fmt.Errorf("marshal order submission: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "submissionId", submission.SubmissionID)
	setAttr(attrs, "sessionId", submission.SessionID)
	setAttr(attrs, "productId", submission.ProductID)
	setAttr(attrs, "sizeType", string(submission.Summary.Measurement.SizeType))
	setAttr(attrs, "currency", submission.Summary.Currency)
	attrs["totalPrice"] = strconv.FormatInt(submission.Summary.TotalPrice, 10)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish order submission: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
