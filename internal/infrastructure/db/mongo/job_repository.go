package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
)

const jobsCollection = "dispatch_jobs"

type JobRepository struct {
	col *mongo.Collection
}

var _ ports.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{col: db.Collection(jobsCollection)}
}

type jobDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	JobID         string             `bson:"job_id"`
	ScheduledBy   string             `bson:"scheduled_by"`
	Location      string             `bson:"location"`
	ScheduledTime time.Time          `bson:"scheduled_time"`
	Driver        *string            `bson:"driver"`
	TruckID       *string            `bson:"truck_id"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (d jobDocument) toDomain() *domain.DispatchJob {
	return &domain.DispatchJob{
		ID:            d.ID.Hex(),
		JobID:         d.JobID,
		ScheduledBy:   d.ScheduledBy,
		Location:      d.Location,
		ScheduledTime: d.ScheduledTime.UTC(),
		Driver:        d.Driver,
		TruckID:       d.TruckID,
		Status:        domain.JobStatus(d.Status),
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

// objectID maps a malformed id to ErrJobNotFound: no job can carry it.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrJobNotFound
	}
	return oid, nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.DispatchJob) (*domain.DispatchJob, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := jobDocument{
		ID:            primitive.NewObjectID(),
		JobID:         job.JobID,
		ScheduledBy:   job.ScheduledBy,
		Location:      job.Location,
		ScheduledTime: job.ScheduledTime.UTC(),
		Driver:        job.Driver,
		TruckID:       job.TruckID,
		Status:        string(job.Status),
		CreatedAt:     job.CreatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateJob
		}
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *JobRepository) find(ctx context.Context, filter bson.M) ([]*domain.DispatchJob, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find jobs: %w", err)
	}
	var docs []jobDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	jobs := make([]*domain.DispatchJob, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, d.toDomain())
	}
	return jobs, nil
}

func (r *JobRepository) ListAll(ctx context.Context) ([]*domain.DispatchJob, error) {
	return r.find(ctx, bson.M{})
}

func (r *JobRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DispatchJob, error) {
	return r.find(ctx, bson.M{"driver": driverID})
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.DispatchJob, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc jobDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateStatus only matches while the stored status is still from. On a miss
// it re-reads the job to tell a deleted job from a lost race.
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) (*domain.DispatchJob, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc jobDocument
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update job status: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrJobNotFound
	}
	return nil, domain.ErrInvalidTransition
}

func (r *JobRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

// EnsureIndexes creates the unique job_id index and the driver lookup index.
func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "job_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "driver", Value: 1}}},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("dispatch_jobs indexes: %w", err)
	}
	return nil
}
