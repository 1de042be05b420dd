package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmehra2102/order-saga/internal/shipping/domain"
)

const collectionName = "shipments"

type shipmentDoc struct {
	ID                string     `bson:"_id"`
	OrderID           int64      `bson:"order_id"`
	TrackingNumber    string     `bson:"tracking_number"`
	Carrier           string     `bson:"carrier"`
	Status            string     `bson:"status"`
	EstimatedDelivery time.Time  `bson:"estimated_delivery"`
	ActualDelivery    *time.Time `bson:"actual_delivery,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
}

type Repository struct {
	log  *slog.Logger
	coll *mongo.Collection
}

// Connect dials uri and verifies the server answers.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// NewRepository ensures the unique order_id index before returning.
func NewRepository(ctx context.Context, log *slog.Logger, db *mongo.Database) (*Repository, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("order_id_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure shipment indexes: %w", err)
	}
	return &Repository{log: log, coll: coll}, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID int64) (domain.Shipment, error) {
	var doc shipmentDoc
	err := r.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Shipment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Shipment{}, err
	}
	return doc.toDomain(), nil
}

func (r *Repository) Create(ctx context.Context, s domain.Shipment) (domain.Shipment, bool, error) {
	_, err := r.coll.InsertOne(ctx, fromDomain(s))
	if mongo.IsDuplicateKeyError(err) {
		existing, err := r.FindByOrderID(ctx, s.OrderID)
		if err != nil {
			return domain.Shipment{}, false, fmt.Errorf("read conflicting shipment: %w", err)
		}
		r.log.DebugContext(ctx, "shipment insert lost to existing document", "order_id", s.OrderID)
		return existing, false, nil
	}
	if err != nil {
		return domain.Shipment{}, false, err
	}
	return s, true, nil
}

func fromDomain(s domain.Shipment) shipmentDoc {
	return shipmentDoc{
		ID:                s.ID,
		OrderID:           s.OrderID,
		TrackingNumber:    s.TrackingNumber,
		Carrier:           s.Carrier,
		Status:            string(s.Status),
		EstimatedDelivery: s.EstimatedDelivery,
		ActualDelivery:    s.ActualDelivery,
		CreatedAt:         s.CreatedAt,
	}
}

func (d shipmentDoc) toDomain() domain.Shipment {
	return domain.Shipment{
		ID:                d.ID,
		OrderID:           d.OrderID,
		TrackingNumber:    d.TrackingNumber,
		Carrier:           d.Carrier,
		Status:            domain.Status(d.Status),
		EstimatedDelivery: d.EstimatedDelivery,
		ActualDelivery:    d.ActualDelivery,
		CreatedAt:         d.CreatedAt,
	}
}
