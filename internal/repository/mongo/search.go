package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Pesokrava/storefront/internal/domain"
)

const productSearchCollection = "product_search"

type searchDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Category    string    `bson:"category"`
	Colors      []string  `bson:"colors"`
	IndexedAt   time.Time `bson:"indexed_at"`
}

// SearchIndex implements domain.ProductSearchIndex with a Mongo text index
type SearchIndex struct {
	collection *mongo.Collection
}

// NewSearchIndex creates a new product search index
func NewSearchIndex(db *mongo.Database) *SearchIndex {
	return &SearchIndex{collection: db.Collection(productSearchCollection)}
}

// EnsureIndexes creates the weighted text index
func (s *SearchIndex) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: "text"},
			{Key: "category", Value: "text"},
			{Key: "colors", Value: "text"},
			{Key: "description", Value: "text"},
		},
		Options: options.Index().
			SetName("product_text").
			SetWeights(bson.D{{Key: "name", Value: 10}, {Key: "category", Value: 5}, {Key: "colors", Value: 3}}),
	})
	return err
}

// Index upserts the searchable fields of a product
func (s *SearchIndex) Index(ctx context.Context, product *domain.Product) error {
	doc := searchDocument{
		ID:        product.ID.String(),
		Name:      product.Name,
		Category:  product.Category,
		Colors:    variantColors(product.Variants),
		IndexedAt: time.Now().UTC(),
	}
	if product.Description != nil {
		doc.Description = *product.Description
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Remove drops a product from the index
func (s *SearchIndex) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

// Search returns product ids ranked by text score
func (s *SearchIndex) Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []uuid.UUID{}, nil
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hits []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &hits); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func variantColors(variants []domain.Variant) []string {
	seen := make(map[string]struct{}, len(variants))
	colors := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.Color == "" {
			continue
		}
		if _, ok := seen[v.Color]; ok {
			continue
		}
		seen[v.Color] = struct{}{}
		colors = append(colors, v.Color)
	}
	return colors
}

var (
	_ domain.CartRepository         = (*CartRepository)(nil)
	_ domain.ProductEventRepository = (*ProductEventRepository)(nil)
	_ domain.ProductSearchIndex     = (*SearchIndex)(nil)
)
