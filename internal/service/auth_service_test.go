package service

import (
	"context"
	"errors"
	"testing"

	"archetypes/internal/model"
)

// memUserRepo is an in-memory repository.UserRepo for auth tests.
type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := NewAuthService(newMemUserRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, "arjuna", "gandiva")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if registered.Token == "" || registered.UserID == "" {
		t.Fatalf("Register() returned incomplete response: %+v", registered)
	}

	loggedIn, err := svc.Login(ctx, "arjuna", "gandiva")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if loggedIn.UserID != registered.UserID {
		t.Errorf("Login() user ID = %q, want %q", loggedIn.UserID, registered.UserID)
	}

	claims, err := svc.ValidateToken(loggedIn.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != registered.UserID || claims.Username != "arjuna" {
		t.Errorf("claims = %+v, want user %q", claims, registered.UserID)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newMemUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "karna", "kavacha"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if _, err := svc.Register(ctx, "karna", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register() duplicate error = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterEmptyFields(t *testing.T) {
	svc := NewAuthService(newMemUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Register() empty username error = %v", err)
	}
	if _, err := svc.Register(ctx, "user", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Register() empty password error = %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(newMemUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "yudhi", "dharma"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if _, err := svc.Login(ctx, "yudhi", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "dharma"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newMemUserRepo())

	if _, err := svc.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	issuer := NewAuthService(newMemUserRepo())
	resp, err := issuer.Register(context.Background(), "bhima", "mace")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	verifier := NewAuthService(newMemUserRepo())
	if _, err := verifier.ValidateToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() with foreign signature = %v, want ErrInvalidToken", err)
	}
}
