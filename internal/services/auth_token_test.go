package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("backend-only-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tokenExpiry(tok); got != exp.Unix() {
		t.Fatalf("exp=%d want %d", got, exp.Unix())
	}
	if got := tokenExpiry("tok-u1"); got != 0 {
		t.Fatalf("opaque token exp=%d", got)
	}
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte("k"))
	if got := tokenExpiry(noExp); got != 0 {
		t.Fatalf("no exp claim=%d", got)
	}
}
