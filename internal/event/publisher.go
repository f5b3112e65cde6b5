package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/pkg/kafka"
	"github.com/SUII07/EasyHome-sub000/pkg/logger"
)

// Kafka topics for engagement and review lifecycle events.
const (
	TopicEngagementCreated   = "easyhome.engagement.created"
	TopicEngagementResponded = "easyhome.engagement.responded"
	TopicEngagementCompleted = "easyhome.engagement.completed"
	TopicEngagementCanceled  = "easyhome.engagement.canceled"
	TopicReviewSubmitted     = "easyhome.review.submitted"
)

const sourceService = "engagement-service"

// Publisher fans out lifecycle notifications after state changes commit. It is
// strictly best-effort: delivery failure is logged and swallowed, never
// surfaced to the caller, so a broker outage cannot fail or roll back an
// engagement operation.
type Publisher interface {
	EngagementCreated(ctx context.Context, e *domain.Engagement)
	EngagementResponded(ctx context.Context, e *domain.Engagement)
	EngagementCompleted(ctx context.Context, e *domain.Engagement)
	EngagementCanceled(ctx context.Context, e *domain.Engagement)
	ReviewSubmitted(ctx context.Context, rv *domain.Review, summary *domain.ReputationSummary)
}

// EngagementPayload is the event body for engagement lifecycle topics.
type EngagementPayload struct {
	EngagementID string     `json:"engagement_id"`
	CustomerID   string     `json:"customer_id"`
	ProviderID   string     `json:"provider_id"`
	Category     string     `json:"category"`
	IsEmergency  bool       `json:"is_emergency"`
	Price        float64    `json:"price"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ReviewPayload is the event body for the review.submitted topic.
type ReviewPayload struct {
	ReviewID     string  `json:"review_id"`
	EngagementID string  `json:"engagement_id"`
	ProviderID   string  `json:"provider_id"`
	Rating       int     `json:"rating"`
	NewRating    float64 `json:"new_rating"`
	TotalReviews int     `json:"total_reviews"`
}

// KafkaPublisher publishes lifecycle events through the shared Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed lifecycle event publisher.
func NewKafkaPublisher(producer *kafka.Producer, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: log}
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, payload any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, sourceService, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	// Errors are already logged by the producer; nothing to do here.
	_ = p.producer.Publish(ctx, topic, evt)
}

func (p *KafkaPublisher) engagementPayload(e *domain.Engagement) EngagementPayload {
	return EngagementPayload{
		EngagementID: e.ID,
		CustomerID:   e.CustomerID,
		ProviderID:   e.ProviderID,
		Category:     e.Category,
		IsEmergency:  e.IsEmergency,
		Price:        e.Price,
		Status:       e.Status,
		CompletedAt:  e.CompletedAt,
	}
}

func (p *KafkaPublisher) EngagementCreated(ctx context.Context, e *domain.Engagement) {
	p.publish(ctx, TopicEngagementCreated, "engagement.created", e.ID, "engagement", p.engagementPayload(e))
}

func (p *KafkaPublisher) EngagementResponded(ctx context.Context, e *domain.Engagement) {
	p.publish(ctx, TopicEngagementResponded, "engagement.responded", e.ID, "engagement", p.engagementPayload(e))
}

func (p *KafkaPublisher) EngagementCompleted(ctx context.Context, e *domain.Engagement) {
	p.publish(ctx, TopicEngagementCompleted, "engagement.completed", e.ID, "engagement", p.engagementPayload(e))
}

func (p *KafkaPublisher) EngagementCanceled(ctx context.Context, e *domain.Engagement) {
	p.publish(ctx, TopicEngagementCanceled, "engagement.canceled", e.ID, "engagement", p.engagementPayload(e))
}

func (p *KafkaPublisher) ReviewSubmitted(ctx context.Context, rv *domain.Review, summary *domain.ReputationSummary) {
	p.publish(ctx, TopicReviewSubmitted, "review.submitted", rv.ID, "review", ReviewPayload{
		ReviewID:     rv.ID,
		EngagementID: rv.EngagementID,
		ProviderID:   rv.ProviderID,
		Rating:       rv.Rating,
		NewRating:    summary.Rating,
		TotalReviews: summary.TotalReviews,
	})
}

// NopPublisher discards all events. Used when Kafka is disabled and in tests.
type NopPublisher struct{}

func (NopPublisher) EngagementCreated(context.Context, *domain.Engagement)                  {}
func (NopPublisher) EngagementResponded(context.Context, *domain.Engagement)                {}
func (NopPublisher) EngagementCompleted(context.Context, *domain.Engagement)                {}
func (NopPublisher) EngagementCanceled(context.Context, *domain.Engagement)                 {}
func (NopPublisher) ReviewSubmitted(context.Context, *domain.Review, *domain.ReputationSummary) {}
