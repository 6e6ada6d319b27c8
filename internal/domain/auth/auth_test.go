package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", RoleName: RoleManager, Locale: "ko"}, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.RoleName != RoleManager || claims.Locale != "ko" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	token, _ := GenerateToken("secret", Claims{UserID: "u1", RoleName: RoleHR}, time.Hour)
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("expected signature error")
	}

	expired, _ := GenerateToken("secret", Claims{UserID: "u1", RoleName: RoleHR}, -time.Minute)
	if _, err := ParseToken("secret", expired); err == nil {
		t.Fatal("expected expiry error")
	}

	unknownRole, _ := GenerateToken("secret", Claims{UserID: "u1", RoleName: "admin"}, time.Hour)
	if _, err := ParseToken("secret", unknownRole); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestUserContextRoles(t *testing.T) {
	if (UserContext{RoleName: RoleEmployee}).CanManage() {
		t.Fatal("employee must not manage")
	}
	if !(UserContext{RoleName: RoleHR}).CanManage() {
		t.Fatal("hr must manage")
	}
	if !(UserContext{RoleName: RoleManager}).HasRole(RoleHR, RoleManager) {
		t.Fatal("expected manager role match")
	}
}
