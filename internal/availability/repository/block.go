package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "petsitter/internal/availability/errors"
	"petsitter/pkg/calendar"
	"petsitter/pkg/config"
	mongotx "petsitter/pkg/db/mongo"
	"petsitter/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "AvailabilityBlocks"
)

type BlockRepository interface {
	// ListBlocks returns every block of the sitter, restricted to window when
	// one is given. There is no page limit.
	ListBlocks(ctx context.Context, sitterID string, window *calendar.DayRange) ([]*model.AvailabilityBlock, error)
	FindByID(ctx context.Context, id string) (*model.AvailabilityBlock, error)
	InsertBlock(ctx context.Context, block *model.AvailabilityBlock) error
	// InsertBlockRange blocks every day of r that is not blocked yet and
	// returns the blocks it created.
	InsertBlockRange(ctx context.Context, sitterID string, r calendar.DayRange, reason string) ([]*model.AvailabilityBlock, error)
	DeleteBlock(ctx context.Context, id string) error
}

type mongoBlockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBlockRepository(cfg *config.Config) BlockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBlockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return mongotx.WithTimeout(ctx, timeout)
}

func (r *mongoBlockRepository) ListBlocks(ctx context.Context, sitterID string, window *calendar.DayRange) ([]*model.AvailabilityBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"sitter_id": sitterID}
	if window != nil {
		// Days are stored as YYYY-MM-DD strings, which sort chronologically.
		filter["date"] = bson.M{"$gte": window.Start, "$lte": window.End}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find blocks: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []*model.AvailabilityBlock{}
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocks: %w", err)
	}
	return blocks, nil
}

func (r *mongoBlockRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var block model.AvailabilityBlock
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&block); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find block: %w", err)
	}
	return &block, nil
}

func (r *mongoBlockRepository) InsertBlock(ctx context.Context, block *model.AvailabilityBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	block.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, block)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", availabilityerrors.ErrAlreadyBlocked, block.Date)
		}
		return fmt.Errorf("failed to insert block: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		block.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBlockRepository) InsertBlockRange(ctx context.Context, sitterID string, dr calendar.DayRange, reason string) ([]*model.AvailabilityBlock, error) {
	var created []*model.AvailabilityBlock

	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		created = nil

		existing, err := r.ListBlocks(sessCtx, sitterID, &dr)
		if err != nil {
			return err
		}
		taken := make(map[calendar.Day]bool, len(existing))
		for _, b := range existing {
			taken[b.Date] = true
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		var docs []any
		for _, day := range dr.Days() {
			if taken[day] {
				continue
			}
			block := &model.AvailabilityBlock{SitterID: sitterID, Date: day, Reason: reason, CreatedAt: now}
			created = append(created, block)
			docs = append(docs, block)
		}
		if len(docs) == 0 {
			return nil
		}

		result, err := r.collection.InsertMany(sessCtx, docs)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: concurrent block in %s", availabilityerrors.ErrAlreadyBlocked, dr)
			}
			return fmt.Errorf("failed to insert blocks: %w", err)
		}
		for i, id := range result.InsertedIDs {
			if oid, ok := id.(primitive.ObjectID); ok {
				created[i].ID = oid.Hex()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *mongoBlockRepository) DeleteBlock(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrNotFound
	}
	return nil
}
