package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection orders are kept in.
const CollectionName = "orders"

type itemDocument struct {
	ProductID string `bson:"product_id"`
	Title     string `bson:"title"`
	Price     string `bson:"price"`
	Image     string `bson:"image,omitempty"`
	Quantity  int    `bson:"quantity"`
}

// orderDocument keeps money as decimal strings so no precision is lost.
type orderDocument struct {
	ID           string         `bson:"_id"`
	Customer     Customer       `bson:"customer"`
	Items        []itemDocument `bson:"items"`
	Subtotal     string         `bson:"subtotal"`
	Shipping     string         `bson:"shipping"`
	Total        string         `bson:"total"`
	Status       string         `bson:"status"`
	CancelReason *string        `bson:"cancel_reason"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

func toDocument(o Order) orderDocument {
	doc := orderDocument{
		ID:           o.ID,
		Customer:     o.Customer,
		Items:        make([]itemDocument, len(o.Items)),
		Subtotal:     o.Totals.Subtotal.String(),
		Shipping:     o.Totals.Shipping.String(),
		Total:        o.Totals.Total.String(),
		Status:       string(o.Status),
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt.UTC(),
		UpdatedAt:    o.UpdatedAt.UTC(),
	}
	for i, it := range o.Items {
		doc.Items[i] = itemDocument{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price.String(),
			Image:     it.Image,
			Quantity:  it.Quantity,
		}
	}
	return doc
}

func fromDocument(doc orderDocument) (Order, error) {
	o := Order{
		ID:           doc.ID,
		Customer:     doc.Customer,
		Items:        make([]Item, len(doc.Items)),
		Status:       Status(doc.Status),
		CancelReason: doc.CancelReason,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	var err error
	if o.Totals.Subtotal, err = decimal.NewFromString(doc.Subtotal); err != nil {
		return Order{}, fmt.Errorf("subtotal: %w", err)
	}
	if o.Totals.Shipping, err = decimal.NewFromString(doc.Shipping); err != nil {
		return Order{}, fmt.Errorf("shipping: %w", err)
	}
	if o.Totals.Total, err = decimal.NewFromString(doc.Total); err != nil {
		return Order{}, fmt.Errorf("total: %w", err)
	}
	for i, it := range doc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return Order{}, fmt.Errorf("item %s price: %w", it.ProductID, err)
		}
		o.Items[i] = Item{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		}
	}
	return o, nil
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, o Order) (Order, error) {
	if _, err := r.coll.InsertOne(ctx, toDocument(o)); err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("find order: %w", err)
	}
	return fromDocument(doc)
}

func (r *MongoRepository) List(ctx context.Context) ([]Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) ListByStatus(ctx context.Context, statuses ...Status) ([]Order, error) {
	if len(statuses) == 0 {
		return []Order{}, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return r.find(ctx, bson.M{"status": bson.M{"$in": values}})
}

func (r *MongoRepository) ListByIDs(ctx context.Context, ids []string) ([]Order, error) {
	if len(ids) == 0 {
		return []Order{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, change StatusChange) (Order, error) {
	filter := bson.M{"_id": id, "status": string(change.From)}
	update := bson.M{"$set": bson.M{
		"status":        string(change.To),
		"cancel_reason": change.CancelReason,
		"updated_at":    change.At.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return Order{}, getErr
		}
		return Order{}, ErrStatusChanged
	}
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return fromDocument(doc)
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		o, err := fromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", doc.ID, err)
		}
		out = append(out, o)
	}
	return out, nil
}
