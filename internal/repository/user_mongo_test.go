package repository

import (
	"context"
	"testing"
	"time"

	"auth_backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUserDocument_RoundTripsModel(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	u := &models.User{
		Name:           "Ana",
		Email:          "a@x.com",
		PasswordHash:   "$2a$10$hash",
		ProfilePicture: "https://cdn/a.png",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	doc := toDocument(u)
	doc.ID = bson.NewObjectID()

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back userDocument
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := back.toModel()
	if got.ID != doc.ID.Hex() {
		t.Fatalf("id: got %q, want %q", got.ID, doc.ID.Hex())
	}
	if got.PasswordHash != u.PasswordHash || got.Email != u.Email || got.ProfilePicture != u.ProfilePicture {
		t.Fatalf("unexpected model: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at: got %v, want %v", got.CreatedAt, now)
	}
}

func TestUserMongo_MalformedIDIsUnknownUser(t *testing.T) {
	// The collection is never touched for IDs that cannot be ObjectIDs.
	repo := NewUserMongo(nil)

	u, err := repo.GetByID(context.Background(), "not-an-object-id")
	if err != nil || u != nil {
		t.Fatalf("GetByID: expected (nil, nil), got (%+v, %v)", u, err)
	}

	u, err = repo.UpdateProfilePicture(context.Background(), "not-an-object-id", "https://cdn/x.png")
	if err != nil || u != nil {
		t.Fatalf("UpdateProfilePicture: expected (nil, nil), got (%+v, %v)", u, err)
	}
}
