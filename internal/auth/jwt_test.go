package auth_test

import (
	"testing"
	"time"

	"github.com/alciverdev/farmatup-API/internal/auth"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
)

func testUser() user.User {
	return user.User{
		ID:    42,
		Email: "jane@x.com",
		Role:  user.RoleAdmin,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", 8*time.Hour)

	token, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	claims, err := m.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "jane@x.com" {
		t.Errorf("claims.Email = %q, want jane@x.com", claims.Email)
	}
	if claims.Role != user.RoleAdmin {
		t.Errorf("claims.Role = %q, want ADMIN", claims.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	if _, err := m.VerifyAccessToken(token); err == nil {
		t.Fatal("VerifyAccessToken accepted an expired token")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := auth.NewManager("secret-a", time.Hour).GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken returned error: %v", err)
	}

	if _, err := auth.NewManager("secret-b", time.Hour).VerifyAccessToken(token); err == nil {
		t.Fatal("VerifyAccessToken accepted a token signed with another secret")
	}
}
