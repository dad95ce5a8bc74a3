package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Pesokrava/storefront/internal/domain"
)

const productEventsCollection = "product_events"

type productEventDocument struct {
	ID        string    `bson:"_id"`
	ProductID string    `bson:"product_id"`
	Type      string    `bson:"type"`
	Quantity  int       `bson:"quantity"`
	UserID    *string   `bson:"user_id,omitempty"`
	OrderID   *string   `bson:"order_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
}

type bucketDocument struct {
	Start      time.Time `bson:"_id"`
	Views      int       `bson:"views"`
	AddToCarts int       `bson:"add_to_carts"`
	Purchases  int       `bson:"purchases"`
}

// ProductEventRepository implements domain.ProductEventRepository as an append-only collection
type ProductEventRepository struct {
	collection *mongo.Collection
}

// NewProductEventRepository creates a new MongoDB product event repository
func NewProductEventRepository(db *mongo.Database) *ProductEventRepository {
	return &ProductEventRepository{collection: db.Collection(productEventsCollection)}
}

// EnsureIndexes creates the (product_id, timestamp) index used by bucket queries
func (r *ProductEventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

// Append stores events in one batch
func (r *ProductEventRepository) Append(ctx context.Context, events ...*domain.ProductEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(events))
	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = time.Now().UTC()
		}
		doc := productEventDocument{
			ID:        e.ID.String(),
			ProductID: e.ProductID.String(),
			Type:      string(e.Type),
			Quantity:  e.Quantity,
			Timestamp: e.Timestamp,
		}
		if e.UserID != nil {
			uid := e.UserID.String()
			doc.UserID = &uid
		}
		if e.OrderID != nil {
			oid := e.OrderID.String()
			doc.OrderID = &oid
		}
		docs = append(docs, doc)
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Buckets sums event quantities per hour or day between from and to
func (r *ProductEventRepository) Buckets(ctx context.Context, productID uuid.UUID, from, to time.Time, interval string) ([]domain.EventBucket, error) {
	if interval != "hour" && interval != "day" {
		return nil, domain.NewError(domain.ErrInvalidInput, fmt.Sprintf("unsupported interval %q", interval))
	}

	sumOf := func(eventType domain.EventType) bson.M {
		return bson.M{"$sum": bson.M{
			"$cond": bson.A{bson.M{"$eq": bson.A{"$type", string(eventType)}}, "$quantity", 0},
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"product_id": productID.String(),
			"timestamp":  bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"$dateTrunc": bson.M{"date": "$timestamp", "unit": interval}},
			"views":        sumOf(domain.EventView),
			"add_to_carts": sumOf(domain.EventAddToCart),
			"purchases":    sumOf(domain.EventPurchase),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bucketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	buckets := make([]domain.EventBucket, 0, len(docs))
	for _, d := range docs {
		buckets = append(buckets, domain.EventBucket{
			Start:      d.Start.UTC(),
			Views:      d.Views,
			AddToCarts: d.AddToCarts,
			Purchases:  d.Purchases,
		})
	}
	return buckets, nil
}
