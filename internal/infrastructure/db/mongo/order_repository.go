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

	"github.com/storefront/backoffice/internal/core/domain"
)

const (
	collectionOrders = "orders"
	sequenceItems    = "order_items"
)

// OrderRepository stores each order as one document with embedded items.
// Stock decrements and the insert share a multi-document transaction, which
// requires a replica set.
type OrderRepository struct {
	db       *mongo.Database
	col      *mongo.Collection
	products *ProductRepository
}

func NewOrderRepository(db *mongo.Database, products *ProductRepository) *OrderRepository {
	return &OrderRepository{db: db, col: db.Collection(collectionOrders), products: products}
}

type orderItemDoc struct {
	ID        int64                `bson:"id"`
	ProductID int64                `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

type orderDoc struct {
	ID               int64                `bson:"_id"`
	OrderDate        time.Time            `bson:"order_date"`
	CustomerName     string               `bson:"customer_name"`
	DigitalSignature string               `bson:"digital_signature"`
	TotalAmount      primitive.Decimal128 `bson:"total_amount"`
	Items            []orderItemDoc       `bson:"items"`
}

func newOrderDoc(o *domain.Order) (orderDoc, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}
	doc := orderDoc{
		ID:               o.ID,
		OrderDate:        o.OrderDate,
		CustomerName:     o.CustomerName,
		DigitalSignature: o.DigitalSignature,
		TotalAmount:      total,
		Items:            make([]orderItemDoc, len(o.Items)),
	}
	for i, it := range o.Items {
		price, err := toDecimal128(it.UnitPrice)
		if err != nil {
			return orderDoc{}, err
		}
		doc.Items[i] = orderItemDoc{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: price}
	}
	return doc, nil
}

func (d orderDoc) toDomain(products map[int64]*domain.Product) (*domain.Order, error) {
	total, err := fromDecimal128(d.TotalAmount)
	if err != nil {
		return nil, err
	}
	o := &domain.Order{
		ID:               d.ID,
		OrderDate:        d.OrderDate.UTC(),
		CustomerName:     d.CustomerName,
		DigitalSignature: d.DigitalSignature,
		TotalAmount:      total,
		Items:            make([]domain.OrderItem, len(d.Items)),
	}
	for i, it := range d.Items {
		price, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.Items[i] = domain.OrderItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
			Product:   products[it.ProductID],
		}
	}
	return o, nil
}

// Create reserves ids outside the transaction, so a rolled back order leaves
// a gap in the sequences.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order, policy domain.StockPolicy) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	orderID, err := nextID(ctx, r.db, collectionOrders)
	if err != nil {
		return err
	}
	var firstItem int64
	if n := int64(len(order.Items)); n > 0 {
		if firstItem, err = nextIDs(ctx, r.db, sequenceItems, n); err != nil {
			return err
		}
	}

	staged := *order
	staged.ID = orderID
	staged.Items = append([]domain.OrderItem(nil), order.Items...)
	for i := range staged.Items {
		staged.Items[i].ID = firstItem + int64(i)
	}
	doc, err := newOrderDoc(&staged)
	if err != nil {
		return err
	}

	sess, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, d := range staged.StockDemands() {
			if err := r.decrement(sc, d.ProductID, d.Quantity, policy); err != nil {
				return nil, err
			}
		}
		if _, err := r.col.InsertOne(sc, doc); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("create order: %w", err)
	}

	order.ID = staged.ID
	order.Items = staged.Items
	return nil
}

// decrement applies policy to one product inside the running transaction.
// A missing product is skipped.
func (r *OrderRepository) decrement(ctx context.Context, productID int64, qty int, policy domain.StockPolicy) error {
	col := r.products.col

	if policy == domain.StockPolicyReject {
		res, err := col.UpdateOne(ctx,
			bson.M{"_id": productID, "stock": bson.M{"$gte": qty}},
			bson.M{"$inc": bson.M{"stock": -qty}},
		)
		if err != nil {
			return fmt.Errorf("decrement stock %d: %w", productID, err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
		n, err := col.CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			return fmt.Errorf("decrement stock %d: %w", productID, err)
		}
		if n > 0 {
			return domain.ErrInsufficientStock
		}
		return nil
	}

	floor := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"stock": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$stock", qty}}}},
	}}}}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": productID}, floor); err != nil {
		return fmt.Errorf("decrement stock %d: %w", productID, err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	orders, err := r.expand(ctx, []orderDoc{doc})
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "order_date", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return r.expand(ctx, docs)
}

// expand resolves every referenced product with a single $in query.
func (r *OrderRepository) expand(ctx context.Context, docs []orderDoc) ([]*domain.Order, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, d := range docs {
		for _, it := range d.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}

	products, err := r.products.byIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Order, len(docs))
	for i, d := range docs {
		o, err := d.toDomain(products)
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}
