package databases

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/config"
)

const kvCollectionName = "kv"

// kvDocument is the shape of one key-value pair in the kv collection
type kvDocument struct {
	ID        string `bson:"_id"`
	Namespace string `bson:"namespace"`
	Key       string `bson:"key"`
	Value     []byte `bson:"value"`
}

type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore uses the values from the config to connect a mongo client and
// returns a KeyValueStore backed by a single collection
func NewMongoStore(ctx context.Context, conf *config.Config) (KeyValueStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URL))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	coll := client.Database(conf.DatabaseName).Collection(kvCollectionName)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
	})
	if err != nil {
		zap.S().With(err).Warn("failed to create kv index")
	}
	return &mongoStore{client: client, coll: coll}, nil
}

func documentID(namespace, key string) string {
	return namespace + "|" + key
}

func (s *mongoStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": documentID(namespace, key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (s *mongoStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	doc := kvDocument{ID: documentID(namespace, key), Namespace: namespace, Key: key, Value: value}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *mongoStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": documentID(namespace, key)})
	return err
}

func (s *mongoStore) Keys(ctx context.Context, namespace, prefix string) ([]string, error) {
	filter := bson.M{
		"namespace": namespace,
		"key":       bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)},
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"key": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []kvDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(docs))
	for _, d := range docs {
		keys = append(keys, d.Key)
	}
	return keys, nil
}

func (s *mongoStore) CompareAndSwap(ctx context.Context, namespace, key string, prev, next []byte) (bool, error) {
	id := documentID(namespace, key)
	if prev == nil {
		_, err := s.coll.InsertOne(ctx, kvDocument{ID: id, Namespace: namespace, Key: key, Value: next})
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return err == nil, err
	}
	if bytes.Equal(prev, next) {
		cur, err := s.Get(ctx, namespace, key)
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return err == nil && bytes.Equal(cur, prev), err
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "value": prev},
		bson.M{"$set": bson.M{"value": next}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
