package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Pesokrava/storefront/internal/domain"
)

const cartsCollection = "carts"

type cartItemDocument struct {
	ProductID string               `bson:"product_id"`
	VariantID *string              `bson:"variant_id,omitempty"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image,omitempty"`
	Size      string               `bson:"size,omitempty"`
	Color     string               `bson:"color,omitempty"`
}

type cartDocument struct {
	ID        string               `bson:"_id"`
	UserID    *string              `bson:"user_id,omitempty"`
	SessionID string               `bson:"session_id,omitempty"`
	Items     []cartItemDocument   `bson:"items"`
	Subtotal  primitive.Decimal128 `bson:"subtotal"`
	ItemCount int                  `bson:"item_count"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// CartRepository implements domain.CartRepository on a MongoDB collection
type CartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a new MongoDB cart repository
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection(cartsCollection)}
}

// EnsureIndexes creates the unique owner indexes
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"user_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"session_id": bson.M{"$exists": true}}),
		},
	})
	return err
}

// GetByOwner retrieves the cart for an owner
func (r *CartRepository) GetByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	filter, err := ownerFilter(owner)
	if err != nil {
		return nil, err
	}

	var doc cartDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// Save upserts the cart keyed by its owner
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	filter, err := ownerFilter(cart.Owner())
	if err != nil {
		return err
	}

	cart.Recalculate()
	cart.UpdatedAt = time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}

	doc, err := newCartDocument(cart)
	if err != nil {
		return err
	}

	_, err = r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}

// DeleteByOwner removes the owner's cart
func (r *CartRepository) DeleteByOwner(ctx context.Context, owner domain.CartOwner) error {
	filter, err := ownerFilter(owner)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, filter)
	return err
}

func ownerFilter(owner domain.CartOwner) (bson.M, error) {
	if !owner.Valid() {
		return nil, domain.NewError(domain.ErrInvalidInput, "cart owner must be a user or a guest session")
	}
	if owner.UserID != nil {
		return bson.M{"user_id": owner.UserID.String()}, nil
	}
	return bson.M{"session_id": owner.SessionID}, nil
}

func newCartDocument(cart *domain.Cart) (cartDocument, error) {
	subtotal, err := toDecimal128(cart.Subtotal)
	if err != nil {
		return cartDocument{}, err
	}

	doc := cartDocument{
		ID:        cart.ID.String(),
		SessionID: cart.SessionID,
		Items:     make([]cartItemDocument, 0, len(cart.Items)),
		Subtotal:  subtotal,
		ItemCount: cart.ItemCount,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	if cart.UserID != nil {
		uid := cart.UserID.String()
		doc.UserID = &uid
	}
	for _, item := range cart.Items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return cartDocument{}, err
		}
		line := cartItemDocument{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     price,
			Name:      item.Name,
			Image:     item.Image,
			Size:      item.Size,
			Color:     item.Color,
		}
		if item.VariantID != nil {
			vid := item.VariantID.String()
			line.VariantID = &vid
		}
		doc.Items = append(doc.Items, line)
	}
	return doc, nil
}

func (d cartDocument) toDomain() (*domain.Cart, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}

	cart := &domain.Cart{
		ID:        id,
		SessionID: d.SessionID,
		Items:     make([]domain.CartItem, 0, len(d.Items)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.UserID != nil {
		uid, err := uuid.Parse(*d.UserID)
		if err != nil {
			return nil, err
		}
		cart.UserID = &uid
	}

	for _, line := range d.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := fromDecimal128(line.Price)
		if err != nil {
			return nil, err
		}
		item := domain.CartItem{
			ProductID: productID,
			Quantity:  line.Quantity,
			Price:     price,
			Name:      line.Name,
			Image:     line.Image,
			Size:      line.Size,
			Color:     line.Color,
		}
		if line.VariantID != nil {
			vid, err := uuid.Parse(*line.VariantID)
			if err != nil {
				return nil, err
			}
			item.VariantID = &vid
		}
		cart.Items = append(cart.Items, item)
	}

	cart.Recalculate()
	return cart, nil
}
