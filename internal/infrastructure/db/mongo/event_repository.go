package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

const eventsCollection = "job_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(eventsCollection)}
}

type eventDocument struct {
	JobID       string    `bson:"job_id"`
	Type        string    `bson:"type"`
	ActorID     string    `bson:"actor_id"`
	FromStatus  string    `bson:"from_status,omitempty"`
	ToStatus    string    `bson:"to_status,omitempty"`
	Timestamp   time.Time `bson:"timestamp"`
	ProcessedAt time.Time `bson:"processed_at"`
}

// InsertEvent persists a job event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.JobEvent) error {
	doc := eventDocument{
		JobID:       event.JobID,
		Type:        string(event.Type),
		ActorID:     event.ActorID,
		FromStatus:  string(event.FromStatus),
		ToStatus:    string(event.ToStatus),
		Timestamp:   event.Timestamp.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert job event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.JobEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find job events: %w", err)
	}
	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode job events: %w", err)
	}

	events := make([]*domain.JobEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, &domain.JobEvent{
			JobID:      d.JobID,
			Type:       domain.JobEventType(d.Type),
			ActorID:    d.ActorID,
			FromStatus: domain.JobStatus(d.FromStatus),
			ToStatus:   domain.JobStatus(d.ToStatus),
			Timestamp:  d.Timestamp.UTC(),
		})
	}
	return events, nil
}

func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("job_events indexes: %w", err)
	}
	return nil
}
