package auth

import (
	"context"
	"testing"
	"time"
)

type mockStore struct {
	users map[string]*User
}

func newMockStore() *mockStore {
	return &mockStore{users: map[string]*User{}}
}

func (m *mockStore) Create(ctx context.Context, u *User) error {
	m.users[u.Email] = u
	return nil
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return m.users[email], nil
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, []byte("test-secret"))

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Ana@Uni.edu",
		Password: "supersecret",
		Name:     "Ana",
		Career:   "Ingenieria",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Email != "ana@uni.edu" {
		t.Errorf("expected lowercased email, got %s", u.Email)
	}
	if u.Role != "student" {
		t.Errorf("expected default role student, got %s", u.Role)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@uni.edu", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	claims, err := svc.ParseToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != u.ID {
		t.Errorf("expected subject %s, got %s", u.ID, claims.Subject)
	}
	if claims.Role != "student" {
		t.Errorf("expected role claim student, got %s", claims.Role)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(newMockStore(), nil, []byte("test-secret"))

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "ana@uni.edu",
		Password: "short",
		Name:     "Ana",
	}); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, []byte("test-secret"))

	req := RegisterRequest{Email: "ana@uni.edu", Password: "supersecret", Name: "Ana"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, []byte("test-secret"))

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "ana@uni.edu", Password: "supersecret", Name: "Ana",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "ana@uni.edu", Password: "wrongpass"}); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, []byte("test-secret"))

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "ana@uni.edu", Password: "supersecret", Name: "Ana",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	past := time.Now().Add(-48 * time.Hour)
	svc.WithClock(func() time.Time { return past })
	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@uni.edu", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	svc.WithClock(time.Now)
	if _, err := svc.ParseToken(context.Background(), resp.Token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
