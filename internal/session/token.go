package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// bearerToken wraps a raw access token. When the token is a JWT its exp
// claim becomes the expiry; the signature is not checked since only the
// backend holds the key.
func bearerToken(raw string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, ok := jwtExpiry(raw); ok {
		tok.Expiry = exp
	}
	return tok
}

func jwtExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// header renders the Authorization header value for tok.
func header(tok *oauth2.Token) string {
	if tok == nil {
		tok = &oauth2.Token{}
	}
	return tok.Type() + " " + tok.AccessToken
}
