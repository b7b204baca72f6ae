// Package mongo stores one document per user in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
	"github.com/Vijaykv5/Intereractive-GD/internal/store"
)

// Server error codes for oversized documents.
var tooLargeCodes = map[int32]bool{
	10334: true, // BSONObjectTooLarge
	17419: true, // update result exceeds max size
	17420: true,
}

// Store is a store.Store backed by a single collection.
type Store struct {
	client   *mongo.Client
	coll     *mongo.Collection
	maxBytes int
}

// Open connects, pings and ensures the unique user_id index.
func Open(ctx context.Context, uri, database, collection string, maxBytes int) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := NewWithClient(client, database, collection, maxBytes)
	if _, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *mongo.Client, database, collection string, maxBytes int) *Store {
	return &Store{
		client:   client,
		coll:     client.Database(database).Collection(collection),
		maxBytes: maxBytes,
	}
}

func (s *Store) Records() store.Records { return &records{s: s} }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Close() error { return s.client.Disconnect(context.Background()) }

type records struct{ s *Store }

func (r *records) UpsertProfile(ctx context.Context, id model.Identity) error {
	_, err := r.s.coll.UpdateOne(ctx,
		bson.M{"user_id": id.UserID},
		bson.M{
			"$set": bson.M{"email": id.Email, "name": id.Name, "picture": id.Picture},
			"$setOnInsert": bson.M{
				"topic":          "",
				"speech_entries": bson.A{},
				"screenshots":    bson.A{},
				"doc_bytes":      store.ProfileSize(id),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return mapErr(err, r.s.maxBytes)
	}
	return nil
}

func (r *records) AppendSpeech(ctx context.Context, userID, topic string, e model.SpeechEntry) error {
	return r.push(ctx, userID, topic, "speech_entries", e, store.ItemSize(e.Text))
}

func (r *records) AppendScreenshot(ctx context.Context, userID, topic string, sh model.Screenshot) error {
	return r.push(ctx, userID, topic, "screenshots", sh, store.ItemSize(sh.ImageData))
}

// push ensures the document exists, then appends under a size guard in one update.
func (r *records) push(ctx context.Context, userID, topic, field string, item interface{}, size int) error {
	_, err := r.s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": bson.M{
			"topic":          "",
			"speech_entries": bson.A{},
			"screenshots":    bson.A{},
			"doc_bytes":      store.RecordOverhead,
		}},
		options.Update().SetUpsert(true),
	)
	// a concurrent first write may win the insert
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return mapErr(err, r.s.maxBytes)
	}

	res, err := r.s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "doc_bytes": bson.M{"$lte": r.s.maxBytes - size}},
		bson.M{
			"$set":  bson.M{"topic": topic},
			"$push": bson.M{field: item},
			"$inc":  bson.M{"doc_bytes": size},
		},
	)
	if err != nil {
		return mapErr(err, r.s.maxBytes)
	}
	if res.MatchedCount == 0 {
		var cur struct {
			DocBytes int `bson:"doc_bytes"`
		}
		_ = r.s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cur)
		return &model.CapacityError{Limit: r.s.maxBytes, Size: cur.DocBytes + size}
	}
	return nil
}

func (r *records) Get(ctx context.Context, userID string) (*model.UserRecord, error) {
	var rec model.UserRecord
	err := r.s.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrUserNotFound()
	}
	if err != nil {
		return nil, err
	}
	if rec.SpeechEntries == nil {
		rec.SpeechEntries = []model.SpeechEntry{}
	}
	if rec.Screenshots == nil {
		rec.Screenshots = []model.Screenshot{}
	}
	return &rec, nil
}

func (r *records) SetEvaluation(ctx context.Context, userID string, ev model.StoredEvaluation) error {
	res, err := r.s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"gd_evaluation": ev}},
	)
	if err != nil {
		return mapErr(err, r.s.maxBytes)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound()
	}
	return nil
}

func mapErr(err error, limit int) error {
	if isTooLarge(err) {
		return &model.CapacityError{Limit: limit}
	}
	return err
}

func isTooLarge(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if tooLargeCodes[int32(e.Code)] {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && tooLargeCodes[ce.Code] {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "too large")
}
