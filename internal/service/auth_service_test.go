package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"auth_backend/internal/models"
	"auth_backend/internal/repository"
	"auth_backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc    *AuthService
	users  *memUsers
	images *fakeImages
	tokens *TokenCodec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUsers()
	images := &fakeImages{url: "https://cdn.example.com/p.png"}
	tokens := newTestCodec(t, "test-secret")
	return &authFixture{
		svc:    NewAuthService(users, NewPasswordHasher(bcrypt.MinCost), tokens, images),
		users:  users,
		images: images,
		tokens: tokens,
	}
}

func requireClientError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ClientError, got %T: %v", err, err)
	}
	if ce.Status != status || ce.Message != msg {
		t.Fatalf("expected %d %q, got %d %q", status, msg, ce.Status, ce.Message)
	}
}

func requireInternalError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		t.Fatalf("expected internal error, got client error %d %q", ce.Status, ce.Message)
	}
}

// --- SignUp ---

func TestAuthService_SignUp_SuccessPersistsHashAndIssuesToken(t *testing.T) {
	f := newAuthFixture(t)

	u, token, err := f.svc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if u.ID == "" || u.Name != "Ana" || u.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.PasswordHash == "secret1" {
		t.Fatal("expected hashed password not equal to raw password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not verify with original password: %v", err)
	}

	id, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id != u.ID {
		t.Fatalf("token subject %q, want %q", id, u.ID)
	}
	if f.users.count() != 1 {
		t.Fatalf("expected 1 stored user, got %d", f.users.count())
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   SignUpInput
		msg  string
	}{
		{"missing name", SignUpInput{Email: "a@x.com", Password: "secret1"}, MsgFillAllFields},
		{"missing email", SignUpInput{Name: "Ana", Password: "secret1"}, MsgFillAllFields},
		{"missing password", SignUpInput{Name: "Ana", Email: "a@x.com"}, MsgFillAllFields},
		{"short password", SignUpInput{Name: "Ana", Email: "a@x.com", Password: "12345"}, MsgPasswordTooShort},
		{"password over bcrypt limit", SignUpInput{Name: "Ana", Email: "a@x.com", Password: strings.Repeat("p", 73)}, MsgPasswordTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, _, err := f.svc.SignUp(context.Background(), tc.in)
			requireClientError(t, err, http.StatusBadRequest, tc.msg)
			if f.users.createCalls != 0 {
				t.Fatalf("expected no Create calls, got %d", f.users.createCalls)
			}
		})
	}
}

func TestAuthService_SignUp_ExactlySixCharactersIsEnough(t *testing.T) {
	f := newAuthFixture(t)
	if _, _, err := f.svc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "a@x.com", Password: "123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Length counts characters, not bytes or UTF-16 units.
func TestAuthService_SignUp_PasswordLengthCountsCharacters(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "a@x.com", Password: "😀😀😀"})
	requireClientError(t, err, http.StatusBadRequest, MsgPasswordTooShort)

	if _, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "a@x.com", Password: "ääääää"}); err != nil {
		t.Fatalf("six two-byte characters must be accepted: %v", err)
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	_, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Other", Email: "a@x.com", Password: "secret2"})
	requireClientError(t, err, http.StatusBadRequest, MsgUserExists)

	if f.users.count() != 1 {
		t.Fatalf("expected no new record, got %d users", f.users.count())
	}
	if f.users.createCalls != 1 {
		t.Fatalf("expected Create to be skipped for existing email, got %d calls", f.users.createCalls)
	}
}

func TestAuthService_SignUp_StoreRaceMapsToUserExists(t *testing.T) {
	f := newAuthFixture(t)
	f.users.createErr = repository.ErrEmailTaken

	_, _, err := f.svc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	requireClientError(t, err, http.StatusBadRequest, MsgUserExists)
}

func TestAuthService_SignUp_PersistFailureIssuesNoToken(t *testing.T) {
	f := newAuthFixture(t)
	f.users.createErr = errors.New("db down")

	u, token, err := f.svc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	requireInternalError(t, err)
	if u != nil || token != "" {
		t.Fatalf("expected no user and no token, got %+v %q", u, token)
	}
}

func TestAuthService_SignUp_LookupFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.getByEmailErr = errors.New("query failed")

	_, _, err := f.svc.SignUp(context.Background(), SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	requireInternalError(t, err)
}

// --- Login ---

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	created, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	t.Run("success", func(t *testing.T) {
		u, token, err := f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if u.ID != created.ID {
			t.Fatalf("expected id %q, got %q", created.ID, u.ID)
		}
		if id, err := f.tokens.Verify(token); err != nil || id != created.ID {
			t.Fatalf("token verify = %q, %v", id, err)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, _, errWrong := f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
		requireClientError(t, errWrong, http.StatusBadRequest, MsgInvalidCredential)

		_, _, errUnknown := f.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
		requireClientError(t, errUnknown, http.StatusBadRequest, MsgInvalidCredential)

		if errWrong.Error() != errUnknown.Error() {
			t.Fatalf("messages differ: %q vs %q", errWrong, errUnknown)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, LoginInput{Email: "a@x.com"})
		requireClientError(t, err, http.StatusBadRequest, MsgFillAllFields)
		_, _, err = f.svc.Login(ctx, LoginInput{Password: "secret1"})
		requireClientError(t, err, http.StatusBadRequest, MsgFillAllFields)
	})
}

func TestAuthService_Login_CorruptHashIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	if err := f.users.Create(context.Background(), &models.User{Name: "Ana", Email: "a@x.com", PasswordHash: "garbage"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, _, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	requireInternalError(t, err)
}

func TestAuthService_SignUpThenLogin_EndToEnd(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		email := fmt.Sprintf("user%d@x.com", i)
		u, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "N", Email: email, Password: "secret1"})
		if err != nil {
			t.Fatalf("SignUp(%s): %v", email, err)
		}
		got, _, err := f.svc.Login(ctx, LoginInput{Email: email, Password: "secret1"})
		if err != nil {
			t.Fatalf("Login(%s): %v", email, err)
		}
		if got.ID != u.ID {
			t.Fatalf("Login(%s) id %q, want %q", email, got.ID, u.ID)
		}
	}
}

// --- UpdateProfilePicture ---

func TestAuthService_UpdateProfilePicture(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture(t)
		u, _, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ana", Email: "a@x.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("SignUp: %v", err)
		}

		updated, err := f.svc.UpdateProfilePicture(ctx, u, "data:image/png;base64,AAAA")
		if err != nil {
			t.Fatalf("UpdateProfilePicture: %v", err)
		}
		if updated.ProfilePicture != "https://cdn.example.com/p.png" {
			t.Fatalf("unexpected picture %q", updated.ProfilePicture)
		}
		if f.images.lastUserID != u.ID || f.images.lastSource != "data:image/png;base64,AAAA" {
			t.Fatalf("uploader got (%q, %q)", f.images.lastUserID, f.images.lastSource)
		}
	})

	t.Run("missing picture", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.UpdateProfilePicture(ctx, &models.User{ID: "user-1"}, "")
		requireClientError(t, err, http.StatusBadRequest, MsgProvidePicture)
		if f.images.calls != 0 {
			t.Fatal("uploader must not be called without a picture")
		}
	})

	t.Run("invalid image", func(t *testing.T) {
		f := newAuthFixture(t)
		f.images.err = fmt.Errorf("%w: not an image", storage.ErrInvalidImage)
		_, err := f.svc.UpdateProfilePicture(ctx, &models.User{ID: "user-1"}, "hello")
		requireClientError(t, err, http.StatusBadRequest, MsgInvalidPicture)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := newAuthFixture(t)
		f.images.err = errors.New("s3 unavailable")
		_, err := f.svc.UpdateProfilePicture(ctx, &models.User{ID: "user-1"}, "data:image/png;base64,AAAA")
		requireInternalError(t, err)
		if f.users.updateCalls != 0 {
			t.Fatal("store must not be updated after a failed upload")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.updateErr = errors.New("write failed")
		_, err := f.svc.UpdateProfilePicture(ctx, &models.User{ID: "user-1"}, "data:image/png;base64,AAAA")
		requireInternalError(t, err)
	})

	t.Run("user vanished", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.UpdateProfilePicture(ctx, &models.User{ID: "user-404"}, "data:image/png;base64,AAAA")
		requireClientError(t, err, http.StatusUnauthorized, MsgNoUserFound)
	})
}
