package audit

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the collection MongoStorage uses unless told otherwise.
const DefaultCollection = "audit_events"

type MongoStorage struct {
	coll *mongo.Collection
}

func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

// EnsureIndexes creates the indexes Query relies on.
func (m *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "resourceId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, len(events))
	for i, e := range events {
		docs[i] = e
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStorage) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	filter := bson.D{}
	for key, value := range map[string]string{
		"userId":     criteria.UserID,
		"action":     criteria.Action,
		"resourceId": criteria.ResourceID,
		"result":     string(criteria.Result),
	} {
		if value != "" {
			filter = append(filter, bson.E{Key: key, Value: value})
		}
	}
	if !criteria.Since.IsZero() {
		filter = append(filter, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: criteria.Since}}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(criteria.limit()))
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}
