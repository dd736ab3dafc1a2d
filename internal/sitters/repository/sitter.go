package repository

import (
	"context"
	"errors"
	"fmt"

	sitterserrors "petsitter/internal/sitters/errors"
	"petsitter/pkg/config"
	mongotx "petsitter/pkg/db/mongo"
	"petsitter/pkg/geo"
	"petsitter/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Sitters"
)

// Facets are the exact-match search criteria pushed down to storage.
type Facets struct {
	ServiceType string
	AnimalID    string
	Option      string
	// Box, when set, restricts results to sitters with coordinates inside it.
	Box *geo.Box
}

// SitterRepository reads sitter cards. Profiles are written by the profile
// service; this service never mutates them.
type SitterRepository interface {
	FindByID(ctx context.Context, id string) (*model.SitterSummary, error)
	Find(ctx context.Context, facets Facets) ([]*model.SitterSummary, error)
}

type mongoSitterRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSitterRepository(cfg *config.Config) SitterRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSitterRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSitterRepository) FindByID(ctx context.Context, id string) (*model.SitterSummary, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sitter model.SitterSummary
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sitter); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sitterserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sitter: %w", err)
	}
	return &sitter, nil
}

func (r *mongoSitterRepository) Find(ctx context.Context, facets Facets) ([]*model.SitterSummary, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, BuildFilter(facets), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sitters: %w", err)
	}
	defer cursor.Close(ctx)

	sitters := []*model.SitterSummary{}
	if err := cursor.All(ctx, &sitters); err != nil {
		return nil, fmt.Errorf("failed to decode sitters: %w", err)
	}
	return sitters, nil
}

func BuildFilter(f Facets) bson.M {
	filter := bson.M{}
	if f.ServiceType != "" {
		filter["services."+f.ServiceType+".active"] = true
	}
	if f.AnimalID != "" {
		filter["animal_ids"] = f.AnimalID
	}
	if f.Option != "" {
		filter["options"] = f.Option
	}
	if f.Box != nil {
		filter["latitude"] = bson.M{"$gte": f.Box.MinLat, "$lte": f.Box.MaxLat}
		if f.Box.AllLongitudes {
			filter["longitude"] = bson.M{"$exists": true, "$ne": nil}
		} else {
			filter["longitude"] = bson.M{"$gte": f.Box.MinLon, "$lte": f.Box.MaxLon}
		}
	}
	return filter
}
