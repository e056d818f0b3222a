package mongodb

import (
	"context"
	"fmt"
	"time"

	entity "game-exchange/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionStatus = "history_status"

	opTimeout = 5 * time.Second
)

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping Mongo: %w", err)
	}
	return client, nil
}

type HistoryRepository struct {
	collection *mongo.Collection
}

func NewHistoryRepository(client *mongo.Client, database string) *HistoryRepository {
	return &HistoryRepository{
		collection: client.Database(database).Collection(CollectionStatus),
	}
}

func (r *HistoryRepository) SaveHistoryStatus(ctx context.Context, doc *entity.HistoryStatus) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert history status to Mongo: %w", err)
	}
	return nil
}

// ListHistory returns the status changes recorded for one record, oldest
// first.
func (r *HistoryRepository) ListHistory(ctx context.Context, relatedType, relatedID string) ([]entity.HistoryStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"related_type": relatedType, "related_id": relatedID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query history status: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]entity.HistoryStatus, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode history status: %w", err)
	}
	return out, nil
}
