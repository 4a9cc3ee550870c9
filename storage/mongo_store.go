package storage

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"listing-search/models"
)

// MongoStore reads and imports listings in the backend's MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and binds database/collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// FetchListings matches query as a case-insensitive literal against location.
func (ms *MongoStore) FetchListings(ctx context.Context, query string) ([]*models.Listing, error) {
	return ms.find(ctx, listingFilter(query, nil))
}

// FetchFilters requires every feature to be present and returns the sorted
// distinct features of the whole collection.
func (ms *MongoStore) FetchFilters(ctx context.Context, searchTerm string, features []string) (*models.FiltersResponse, error) {
	listings, err := ms.find(ctx, listingFilter(searchTerm, features))
	if err != nil {
		return nil, err
	}

	raw, err := ms.collection.Distinct(ctx, "features", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo: distinct features: %w", err)
	}
	vocab := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			vocab = append(vocab, s)
		}
	}
	sort.Strings(vocab)

	return &models.FiltersResponse{Features: vocab, Listings: listings}, nil
}

// Import inserts listings whose URL is not stored yet.
func (ms *MongoStore) Import(ctx context.Context, listings []*models.Listing) (int, error) {
	inserted := 0
	for _, l := range listings {
		res, err := ms.collection.UpdateOne(ctx,
			bson.M{"url": l.URL},
			bson.M{"$setOnInsert": l},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return inserted, fmt.Errorf("mongo: upsert %s: %w", l.URL, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (ms *MongoStore) Close() error {
	return ms.client.Disconnect(context.Background())
}

func (ms *MongoStore) find(ctx context.Context, filter bson.M) ([]*models.Listing, error) {
	cursor, err := ms.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo: find: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []*models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("mongo: decode listings: %w", err)
	}
	return listings, nil
}

func listingFilter(search string, features []string) bson.M {
	filter := bson.M{}
	if s := strings.TrimSpace(search); s != "" {
		filter["location"] = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	if len(features) > 0 {
		filter["features"] = bson.M{"$all": features}
	}
	return filter
}
