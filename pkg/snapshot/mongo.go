package snapshot

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/shopfloor/pkg/config"
	"github.com/matzehuels/shopfloor/pkg/layout"
)

// mongoDocument is the stored shape: the snapshot JSON plus its digest, keyed
// by snapshot name.
type mongoDocument struct {
	Name    string    `bson:"_id"`
	Data    string    `bson:"data"`
	Digest  string    `bson:"digest"`
	SavedAt time.Time `bson:"saved_at"`
}

// MongoStore keeps one document per snapshot in a collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg config.Mongo) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, Retryable(fmt.Errorf("ping mongo: %w", err))
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}, nil
}

// Load finds the document for name. No document is a miss (nil, nil).
func (s *MongoStore) Load(ctx context.Context, name string) (*layout.Snapshot, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, Retryable(fmt.Errorf("mongo find: %w", err))
	}
	return Decode([]byte(doc.Data))
}

// Save upserts the document for name.
func (s *MongoStore) Save(ctx context.Context, name string, snap *layout.Snapshot) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	doc := mongoDocument{
		Name:    name,
		Data:    string(data),
		Digest:  Digest(snap),
		SavedAt: s.now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, opts); err != nil {
		return Retryable(fmt.Errorf("mongo replace: %w", err))
	}
	return nil
}

// Delete removes the document for name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return Retryable(fmt.Errorf("mongo delete: %w", err))
	}
	return nil
}

// Ping checks the connection to the server.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return Retryable(fmt.Errorf("mongo ping: %w", err))
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
