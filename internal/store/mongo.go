package store

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database. It is constructed
// once at startup and injected; there is no package-level client.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB, pings it and returns a ready store.
// The database name is taken from the URI path when present.
func OpenMongo(ctx context.Context, mongoURI string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	dbName := databaseName(mongoURI)
	log.Printf("✅ Connected to MongoDB (database %q)", dbName)

	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// databaseName extracts the database from a connection string of the form
// mongodb://.../database_name?..., defaulting to "thoughtstream".
func databaseName(mongoURI string) string {
	dbName := "thoughtstream"
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			dbName = dbPart
		}
	}
	return dbName
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNoDocument
	}
	return err
}

func (s *MongoStore) Find(ctx context.Context, collection string, q Query, sort *Sort, out interface{}) error {
	filter := bson.M{}
	for field, value := range q.Eq {
		filter[field] = value
	}
	// Equality against an array field matches documents whose array contains
	// the value, which is exactly the Contains contract.
	for field, value := range q.Contains {
		filter[field] = value
	}

	findOptions := options.Find()
	if sort != nil {
		order := 1
		if sort.Desc {
			order = -1
		}
		findOptions.SetSort(bson.D{{Key: sort.Field, Value: order}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) UpdateByID(ctx context.Context, collection, id string, u Update) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}

	update := bson.M{}
	if len(u.Set) > 0 {
		update["$set"] = bson.M(u.Set)
	}
	if len(u.Push) > 0 {
		update["$push"] = bson.M(u.Push)
	}
	if len(u.AddToSet) > 0 {
		update["$addToSet"] = bson.M(u.AddToSet)
	}
	if len(u.Pull) > 0 {
		pull := bson.M{}
		for path, matcher := range u.Pull {
			if m, ok := matcher.(map[string]interface{}); ok {
				pull[path] = bson.M(m)
			} else {
				pull[path] = matcher
			}
		}
		update["$pull"] = pull
	}
	if len(update) == 0 {
		return nil
	}

	res, err := s.db.Collection(collection).UpdateByID(ctx, oid, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(disconnectCtx)
}
