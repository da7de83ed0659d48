package auth

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultAccountsCollection is the collection MongoStorage uses unless told otherwise.
const DefaultAccountsCollection = "accounts"

type accountDocument struct {
	ID               string    `bson:"_id"`
	Username         string    `bson:"username"`
	PasswordHash     []byte    `bson:"passwordHash"`
	Role             string    `bson:"role"`
	TwoFactorSecret  string    `bson:"twoFactorSecret,omitempty"`
	TwoFactorEnabled bool      `bson:"twoFactorEnabled"`
	EmergencyCodes   []string  `bson:"emergencyCodes,omitempty"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

func toDocument(a *Account) accountDocument {
	return accountDocument{
		ID:               a.ID.String(),
		Username:         a.Username,
		PasswordHash:     a.PasswordHash,
		Role:             string(a.Role),
		TwoFactorSecret:  a.TwoFactorSecret,
		TwoFactorEnabled: a.TwoFactorEnabled,
		EmergencyCodes:   a.EmergencyCodes,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (d accountDocument) account() (*Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:               id,
		Username:         d.Username,
		PasswordHash:     d.PasswordHash,
		Role:             Role(d.Role),
		TwoFactorSecret:  d.TwoFactorSecret,
		TwoFactorEnabled: d.TwoFactorEnabled,
		EmergencyCodes:   d.EmergencyCodes,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}, nil
}

// MongoStorage keeps accounts in a MongoDB collection. Conditional two-factor
// updates are single UpdateOne calls whose filter carries the precondition.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage returns a store over db.Collection(collection).
// Call EnsureIndexes once at startup.
func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultAccountsCollection
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique username index.
func (m *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStorage) CreateAccount(ctx context.Context, acc *Account) error {
	if _, err := m.coll.InsertOne(ctx, toDocument(acc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUsernameTaken
		}
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (m *MongoStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return m.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (m *MongoStorage) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	return m.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (m *MongoStorage) findOne(ctx context.Context, filter bson.D) (*Account, error) {
	var doc accountDocument
	if err := m.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}
	acc, err := doc.account()
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return acc, nil
}

// ListAccounts returns every account ordered by username.
func (m *MongoStorage) ListAccounts(ctx context.Context) ([]*Account, error) {
	cur, err := m.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	out := make([]*Account, 0, len(docs))
	for _, doc := range docs {
		acc, err := doc.account()
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, acc)
	}
	return out, nil
}

func (m *MongoStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	return m.update(ctx, id, nil, bson.D{{Key: "$set", Value: bson.D{{Key: "passwordHash", Value: hash}}}})
}

func (m *MongoStorage) UpdateRole(ctx context.Context, id uuid.UUID, from, to Role, resetTwoFactor bool) error {
	set := bson.D{{Key: "role", Value: string(to)}}
	unset := bson.D{{Key: "emergencyCodes", Value: ""}}
	if resetTwoFactor {
		set = append(set, bson.E{Key: "twoFactorEnabled", Value: false})
		unset = append(unset, bson.E{Key: "twoFactorSecret", Value: ""})
	}
	return m.update(ctx, id,
		bson.D{{Key: "role", Value: string(from)}},
		bson.D{{Key: "$set", Value: set}, {Key: "$unset", Value: unset}},
	)
}

func (m *MongoStorage) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MongoStorage) BeginTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string, codeHashes []string) error {
	set := bson.D{{Key: "twoFactorSecret", Value: sealedSecret}}
	if codeHashes != nil {
		set = append(set, bson.E{Key: "emergencyCodes", Value: codeHashes})
	}
	return m.update(ctx, id,
		bson.D{{Key: "twoFactorEnabled", Value: bson.D{{Key: "$ne", Value: true}}}},
		bson.D{{Key: "$set", Value: set}},
	)
}

func (m *MongoStorage) EnableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	return m.update(ctx, id,
		bson.D{
			{Key: "twoFactorEnabled", Value: bson.D{{Key: "$ne", Value: true}}},
			{Key: "twoFactorSecret", Value: sealedSecret},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: "twoFactorEnabled", Value: true}}}},
	)
}

func (m *MongoStorage) DisableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	return m.update(ctx, id,
		bson.D{
			{Key: "twoFactorEnabled", Value: true},
			{Key: "twoFactorSecret", Value: sealedSecret},
		},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: "twoFactorEnabled", Value: false}}},
			{Key: "$unset", Value: bson.D{{Key: "twoFactorSecret", Value: ""}}},
		},
	)
}

func (m *MongoStorage) ConsumeEmergencyCode(ctx context.Context, id uuid.UUID, codeHash string) error {
	return m.update(ctx, id,
		bson.D{
			{Key: "twoFactorEnabled", Value: true},
			{Key: "emergencyCodes", Value: codeHash},
		},
		clearTwoFactor,
	)
}

func (m *MongoStorage) ResetTwoFactor(ctx context.Context, id uuid.UUID) error {
	return m.update(ctx, id, nil, clearTwoFactor)
}

var clearTwoFactor = bson.D{
	{Key: "$set", Value: bson.D{{Key: "twoFactorEnabled", Value: false}}},
	{Key: "$unset", Value: bson.D{
		{Key: "twoFactorSecret", Value: ""},
		{Key: "emergencyCodes", Value: ""},
	}},
}

// update runs a single UpdateOne matching id plus cond. When nothing matches
// it tells a missing account apart from a failed precondition.
func (m *MongoStorage) update(ctx context.Context, id uuid.UUID, cond bson.D, update bson.D) error {
	filter := append(bson.D{{Key: "_id", Value: id.String()}}, cond...)
	update = append(slices.Clip(update), bson.E{Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}})

	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if len(cond) == 0 {
		return ErrAccountNotFound
	}
	n, err := m.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id.String()}})
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return ErrStateChanged
}
