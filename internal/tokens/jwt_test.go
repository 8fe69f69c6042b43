package tokens

import (
	"testing"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-signing-key")

	tok, err := m.GenerateAccessToken("user-1", "operator")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "operator" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.TokenType != Access {
		t.Errorf("token type = %s, want access", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("jti should be set")
	}
}

func TestValidateWrongKey(t *testing.T) {
	tok, err := NewManager("key-a").GenerateAccessToken("user-1", "operator")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("key-b").ValidateToken(tok); err == nil {
		t.Error("token signed with another key should fail validation")
	}
}

func TestValidateGarbage(t *testing.T) {
	if _, err := NewManager("key").ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token should fail validation")
	}
}

func TestRefreshTokenType(t *testing.T) {
	m := NewManager("key")
	tok, err := m.GenerateRefreshToken("user-1", "operator")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.TokenType != Refresh {
		t.Errorf("token type = %s, want refresh", claims.TokenType)
	}
}
