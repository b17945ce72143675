package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth_backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// UsersCollection is the MongoDB collection holding accounts.
const UsersCollection = "users"

type userDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Name           string        `bson:"name"`
	Email          string        `bson:"email"`
	Password       string        `bson:"password"`
	ProfilePicture string        `bson:"profile_picture"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

func toDocument(u *models.User) userDocument {
	return userDocument{
		Name:           u.Name,
		Email:          u.Email,
		Password:       u.PasswordHash,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.Password,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

type UserMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserMongo(coll *mongo.Collection) *UserMongo {
	return &UserMongo{coll: coll, now: time.Now}
}

var _ Users = (*UserMongo)(nil)

func (r *UserMongo) Create(ctx context.Context, u *models.User) error {
	now := r.now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	doc := toDocument(u)
	doc.ID = bson.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserMongo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find user by email %q: %w", email, err)
	}
	return u, nil
}

// GetByID treats an ID that is not a valid ObjectID as unknown.
func (r *UserMongo) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	u, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find user by id %q: %w", id, err)
	}
	return u, nil
}

func (r *UserMongo) UpdateProfilePicture(ctx context.Context, id, url string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	update := bson.M{"$set": bson.M{
		"profile_picture": url,
		"updated_at":      r.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update profile picture for %q: %w", id, err)
	}
	return doc.toModel(), nil
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toModel(), nil
}
