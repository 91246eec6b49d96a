package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// Backend stores every collection as documents keyed by _id. The record "id"
// field maps to _id on the way in and back on the way out.
//
// The activity collection is not kept: the store re-derives the feed from
// readings and appointments when it refreshes.
type Backend struct {
	db *mongo.Database
}

var _ ports.Backend = (*Backend)(nil)

func NewBackend(db *mongo.Database) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Get(ctx context.Context, c ports.Collection, f ports.Filter) ([]ports.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := b.db.Collection(string(c)).Find(ctx, toFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c, err)
	}
	defer cur.Close(ctx)

	out := []ports.Record{}
	for cur.Next(ctx) {
		rec, err := fromDocument(cur.Current)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c, err)
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c, err)
	}
	return out, nil
}

// Put upserts r by id.
func (b *Backend) Put(ctx context.Context, c ports.Collection, r ports.Record) (string, error) {
	if c == ports.CollectionActivity {
		return r.ID(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := r.ID()
	if id == "" {
		id = uuid.NewString()
	}
	doc := toDocument(id, r)
	_, err := b.db.Collection(string(c)).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("put %s/%s: %w", c, id, err)
	}
	return id, nil
}

func (b *Backend) Update(ctx context.Context, c ports.Collection, id string, p ports.Patch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	for k, v := range p {
		if k == "id" || k == "_id" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}
	res, err := b.db.Collection(string(c)).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	if res.MatchedCount == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (b *Backend) Remove(ctx context.Context, c ports.Collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := b.db.Collection(string(c)).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", c, id, err)
	}
	if res.DeletedCount == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

// Ping checks that the database answers commands.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// EnsureIndexes creates the lookup indexes the store's filters rely on.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[ports.Collection][]mongo.IndexModel{
		ports.CollectionReadings: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		},
		ports.CollectionAppointments: {
			{Keys: bson.D{{Key: "clientId", Value: 1}}},
			{Keys: bson.D{{Key: "practitionerId", Value: 1}}},
		},
		ports.CollectionProfiles: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ports.CollectionAccounts: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for c, indexes := range plan {
		if _, err := b.db.Collection(string(c)).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes %s: %w", c, err)
		}
	}
	return nil
}

func toFilter(f ports.Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		if k == "id" {
			k = "_id"
		}
		out[k] = v
	}
	return out
}

func toDocument(id string, r ports.Record) bson.M {
	doc := bson.M{"_id": id}
	for k, v := range r {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return doc
}

// fromDocument converts a raw document to a record through relaxed extended
// JSON, so numbers, arrays and sub-documents come back as plain JSON values.
func fromDocument(raw bson.Raw) (ports.Record, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, err
	}
	var rec ports.Record
	if err := json.Unmarshal(ext, &rec); err != nil {
		return nil, err
	}
	if id, ok := rec["_id"]; ok {
		rec["id"] = id
		delete(rec, "_id")
	}
	return rec, nil
}
