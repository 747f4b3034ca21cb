package judgestub

import (
	"testing"
	"time"

	"codebench/internal/testutil"
	pkgerrors "codebench/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthenticatorDisabledWithoutSecret(t *testing.T) {
	testutil.AssertTrue(t, NewAuthenticator(AuthConfig{}) == nil, "no secret disables auth")
}

func TestAuthenticate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	auth := NewAuthenticator(AuthConfig{Secret: "s3cret", Issuer: "codebench"})
	auth.now = func() time.Time { return now }

	valid, err := auth.Issue("dev", time.Hour)
	testutil.AssertNoError(t, err)
	subject, err := auth.Authenticate(valid)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, subject, "dev")

	expired, err := auth.Issue("dev", -time.Minute)
	testutil.AssertNoError(t, err)

	other := NewAuthenticator(AuthConfig{Secret: "s3cret", Issuer: "elsewhere"})
	other.now = auth.now
	foreign, err := other.Issue("dev", time.Hour)
	testutil.AssertNoError(t, err)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		TokenType:        "refresh",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "dev", Issuer: "codebench", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	testutil.AssertNoError(t, err)

	tests := []struct {
		name  string
		token string
		code  pkgerrors.ErrorCode
	}{
		{name: "missing", token: "", code: pkgerrors.Unauthorized},
		{name: "garbage", token: "not.a.jwt", code: pkgerrors.TokenInvalid},
		{name: "expired", token: expired, code: pkgerrors.TokenExpired},
		{name: "wrong issuer", token: foreign, code: pkgerrors.TokenInvalid},
		{name: "refresh token", token: refresh, code: pkgerrors.TokenInvalid},
	}
	for _, tt := range tests {
		_, err := auth.Authenticate(tt.token)
		testutil.AssertEqual(t, pkgerrors.GetCode(err), tt.code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	testutil.AssertEqual(t, extractBearerToken("Bearer abc"), "abc")
	testutil.AssertEqual(t, extractBearerToken("bearer  abc "), "abc")
	testutil.AssertEqual(t, extractBearerToken("Basic abc"), "")
	testutil.AssertEqual(t, extractBearerToken(""), "")
}
