package utils

import (
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("user-123", "student")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("user_id = %q, muốn %q", claims.UserID, "user-123")
	}
	if claims.Role != "student" {
		t.Errorf("role = %q, muốn %q", claims.Role, "student")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := GenerateToken("user-123", "teacher")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := VerifyToken(token); err == nil {
		t.Fatal("token ký bằng secret khác phải bị từ chối")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := VerifyToken("không.phải.jwt"); err == nil {
		t.Fatal("chuỗi rác phải bị từ chối")
	}
}

func TestMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateToken("u", "student"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("GenerateToken err = %v, muốn ErrMissingSecret", err)
	}
	if _, err := VerifyToken("x.y.z"); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("VerifyToken err = %v, muốn ErrMissingSecret", err)
	}
}
