package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	domain "github.com/tailor-field/configurator/internal/domain"
	"github.com/tailor-field/configurator/internal/services"
)

func newTestTopic(t *testing.T, srv *pstest.Server) *pubsub.Topic {
	t.Helper()
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "configurator-orders")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	t.Cleanup(topic.Stop)
	return topic
}

func TestPubSubCheckoutPublisherPublishesSubmission(t *testing.T) {
	srv := pstest.NewServer()
	defer srv.Close()

	publisher, err := NewPubSubCheckoutPublisher(newTestTopic(t, srv))
	if err != nil {
		t.Fatalf("NewPubSubCheckoutPublisher: %v", err)
	}

	submission := services.OrderSubmission{
		SubmissionID: "sub_01",
		SessionID:    "cfg_01",
		ProductID:    "shirt-001",
		Summary: domain.OrderSummary{
			ProductName: "Premium Custom Shirt",
			BasePrice:   8999,
			Currency:    "USD",
			Customizations: []domain.OrderCustomization{
				{Category: "Collar Style", Value: "spread", Price: 500},
			},
			Measurement: domain.MeasurementProfile{SizeType: domain.SizeTypeCustom, Custom: &domain.CustomMeasurements{Neck: 15.5}},
			TotalPrice:  11999,
		},
		Metadata:    map[string]string{"channel": "web"},
		SubmittedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	id, err := publisher.PublishOrder(context.Background(), submission)
	if err != nil {
		t.Fatalf("PublishOrder: %v", err)
	}
	if id == "" {
		t.Fatalf("expected message id")
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.OrderSubmission
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.SubmissionID != "sub_01" || payload.Summary.TotalPrice != 11999 {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload.Summary.Measurement.Custom == nil || payload.Summary.Measurement.Custom.Neck != 15.5 {
		t.Fatalf("expected custom measurements in payload, got %#v", payload.Summary.Measurement)
	}

	attrs := messages[0].Attributes
	if attrs["submissionId"] != "sub_01" || attrs["productId"] != "shirt-001" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
	if attrs["sizeType"] != "custom" || attrs["totalPrice"] != "11999" {
		t.Fatalf("unexpected sizing attributes %#v", attrs)
	}
}

func TestNewPubSubCheckoutPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubCheckoutPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
