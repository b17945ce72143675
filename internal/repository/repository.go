package repository

import (
	"context"
	"database/sql"
	"errors"

	"auth_backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrEmailTaken is returned by Create when the store already holds the email.
var ErrEmailTaken = errors.New("email already registered")

// Users is the persistence contract for accounts.
// Lookups return (nil, nil) when nothing matches.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, id, url string) (*models.User, error)
}

type Repository struct {
	Users Users
}

// NewSQLiteRepository backs the repository with an embedded SQLite database.
func NewSQLiteRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
	}
}

// NewMongoRepository backs the repository with a MongoDB database.
func NewMongoRepository(db *mongo.Database) *Repository {
	return &Repository{
		Users: NewUserMongo(db.Collection(UsersCollection)),
	}
}
