// Package mongo is the Document Store on MongoDB.
package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the app's queries rely on. The bookings
// idempotency index is what turns a repeated submission into ErrDuplicate.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		domain.BookingsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "idempotencyKey", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$type": "string"}}),
			},
		},
		domain.ReviewsCollection: {
			{Keys: bson.D{{Key: "hotelId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		domain.HotelsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "listed", Value: 1}, {Key: "name", Value: 1}}},
		},
		domain.UsersCollection: {
			{Keys: bson.D{{Key: "uid", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", coll)
		}
	}
	return nil
}

// Insert assigns a fresh id; any "_id" in doc is ignored.
func (s *Store) Insert(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id := uuid.NewString()
	body := bson.M{}
	for k, v := range doc {
		body[k] = v
	}
	body[domain.IDField] = id

	_, err := s.db.Collection(collection).InsertOne(ctx, body)
	if mongo.IsDuplicateKeyError(err) {
		err = errors.Mark(err, domain.ErrDuplicate)
	}
	observability.ObserveStore("mongo", collection, "insert", err)
	if err != nil {
		return "", domain.NewStoreError("insert", collection, err)
	}
	return id, nil
}

// QueryByField returns documents whose field equals value. orderBy "-x" sorts x descending.
func (s *Store) QueryByField(ctx context.Context, collection, field string, value any, orderBy string) ([]domain.Document, error) {
	opts := options.Find()
	if orderBy != "" {
		dir := 1
		if strings.HasPrefix(orderBy, "-") {
			dir, orderBy = -1, orderBy[1:]
		}
		opts.SetSort(bson.D{{Key: orderBy, Value: dir}})
	}

	out, err := s.find(ctx, collection, bson.M{field: value}, opts)
	observability.ObserveStore("mongo", collection, "query", err)
	if err != nil {
		return nil, domain.NewStoreError("query", collection, err)
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, collection string, filter bson.M, opts *options.FindOptions) ([]domain.Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, domain.Document(normalizeMap(m)))
	}
	return out, nil
}

// normalize turns driver-specific values into plain Go values.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	case bson.M:
		return normalizeMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}
