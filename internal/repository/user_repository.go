package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openjournal/journal-backend/internal/httperr"
	"github.com/openjournal/journal-backend/internal/models"
	"github.com/openjournal/journal-backend/pkg/utils"
)

// UserRepository is the credential store. Plaintext passwords cross this
// boundary only on the way in; what is stored and compared is always the
// Argon2id hash.
type UserRepository interface {
	// Create registers a new user. Fails with httperr.ErrConflict when the
	// username is taken. The returned user never carries the stored hash.
	Create(ctx context.Context, username, password string) (*models.User, error)
	// Verify checks a username/password pair. Any failure (unknown user or
	// wrong password) comes back as httperr.ErrUnauthorized.
	Verify(ctx context.Context, username, password string) (*models.User, error)
	// FindByUsername resolves a user by username, httperr.ErrUnauthorized when
	// absent. Used by the auth guard to re-resolve token principals.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// MongoUserRepository stores users in a MongoDB collection.
type MongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection("users")}
}

// EnsureIndexes creates the unique index on username.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	log.Println("✅ MongoDB user indexes ensured")
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, username, password string) (*models.User, error) {
	err := r.users.FindOne(ctx, bson.M{"username": username}).Err()
	if err == nil {
		return nil, httperr.ErrConflict
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		CreatedAt: now,
		UpdatedAt: now,
		Username:  username,
		Password:  hash,
	}

	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		// The unique index may win a race the FindOne above missed
		if mongo.IsDuplicateKeyError(err) {
			return nil, httperr.ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	user.Password = ""
	return &user, nil
}

func (r *MongoUserRepository) Verify(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, httperr.ErrUnauthorized
	}

	user.Password = ""
	return &user, nil
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, httperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.Password = ""
	return &user, nil
}
