package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/spektr-org/podes/engine"
)

// MongoSource reads every document of a collection, sorted by id_desa.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects and pings the primary.
func OpenMongo(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoSource, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(20).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetRetryReads(true).
		SetReadPreference(readpref.Primary())

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSource{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Villages implements Source.
func (m *MongoSource) Villages(ctx context.Context) ([]engine.VillageRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: engine.FieldID, Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find villages: %w", err)
	}
	defer cursor.Close(ctx)

	var out []engine.VillageRecord
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode village: %w", err)
		}
		out = append(out, recordFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate villages: %w", err)
	}
	return out, nil
}

// Close implements Source.
func (m *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// recordFromDoc converts a BSON document, dropping _id.
func recordFromDoc(doc bson.M) engine.VillageRecord {
	rec := engine.NewVillageRecord("", "", "", nil)
	for k, raw := range doc {
		if k == "_id" {
			continue
		}
		if v := bsonValue(raw); !v.IsAbsent() {
			rec.Set(k, v)
		}
	}
	return rec
}

func bsonValue(raw any) engine.Value {
	switch x := raw.(type) {
	case primitive.Decimal128:
		return engine.ParseNumber(x.String())
	case primitive.Null, primitive.Undefined:
		return engine.Absent()
	case primitive.DateTime:
		return engine.Text(x.Time().UTC().Format("2006-01-02"))
	case primitive.ObjectID:
		return engine.Text(x.Hex())
	}
	return engine.ParseValue(raw)
}
