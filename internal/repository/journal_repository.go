package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/models"
)

// JournalRepository persists journals with their embedded pages. A journal and
// its pages live in one document, so every write here is atomic at the storage
// layer. There is no version check; concurrent updates are last-writer-wins.
type JournalRepository interface {
	Insert(ctx context.Context, journal *models.Journal) (*models.Journal, error)
	// FindByID fails with httperr.ErrNotFound when no journal has the id.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error)
	// Replace overwrites the whole document, pages included.
	Replace(ctx context.Context, journal *models.Journal) error
	// Delete removes the journal and all embedded pages in one operation.
	// Fails with httperr.ErrNotFound when the id does not exist.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MongoJournalRepository stores journals in a MongoDB collection.
type MongoJournalRepository struct {
	journals *mongo.Collection
}

func NewMongoJournalRepository(db *mongo.Database) *MongoJournalRepository {
	return &MongoJournalRepository{journals: db.Collection("journals")}
}

// EnsureIndexes creates the index backing ownership-scoped listing.
func (r *MongoJournalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.journals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create user_id index: %w", err)
	}
	return nil
}

func (r *MongoJournalRepository) Insert(ctx context.Context, journal *models.Journal) (*models.Journal, error) {
	res, err := r.journals.InsertOne(ctx, journal)
	if err != nil {
		return nil, fmt.Errorf("insert journal: %w", err)
	}
	journal.ID = res.InsertedID.(primitive.ObjectID)
	return journal, nil
}

func (r *MongoJournalRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Journal, error) {
	var journal models.Journal
	err := r.journals.FindOne(ctx, bson.M{"_id": id}).Decode(&journal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.ErrNotFound
		}
		return nil, fmt.Errorf("find journal: %w", err)
	}
	return &journal, nil
}

func (r *MongoJournalRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Journal, error) {
	findOptions := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.journals.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find journals: %w", err)
	}
	defer cursor.Close(ctx)

	journals := []models.Journal{}
	if err := cursor.All(ctx, &journals); err != nil {
		return nil, fmt.Errorf("decode journals: %w", err)
	}
	return journals, nil
}

func (r *MongoJournalRepository) Replace(ctx context.Context, journal *models.Journal) error {
	res, err := r.journals.ReplaceOne(ctx, bson.M{"_id": journal.ID}, journal)
	if err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	if res.MatchedCount == 0 {
		return httperr.ErrNotFound
	}
	return nil
}

func (r *MongoJournalRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.journals.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	if res.DeletedCount == 0 {
		return httperr.ErrNotFound
	}
	return nil
}
