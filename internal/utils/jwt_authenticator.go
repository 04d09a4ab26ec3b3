package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// AuthenticatedUser holds the claims extracted from a validated JWT.
type AuthenticatedUser struct {
	Sub      string   `json:"sub"`
	Iss      string   `json:"iss"`
	ClientId string   `json:"client_id"`
	Exp      int64    `json:"exp"`
	Iat      int64    `json:"iat"`
	Aud      []string `json:"aud"`
	Roles    []string `json:"roles"`
	Scopes   []string `json:"scopes"`
}

// JwtAuthenticator validates bearer tokens against a remote JWKS
// endpoint. The key set is cached to avoid hitting the endpoint on
// every request.
type JwtAuthenticator struct {
	JwksUri string

	mu        sync.Mutex
	cacheTTL  time.Duration
	cachedSet jwk.Set
	fetchedAt time.Time
}

// NewJwtAuthenticator creates an authenticator for the given JWKS URI.
func NewJwtAuthenticator(jwksUri string) *JwtAuthenticator {
	return &JwtAuthenticator{
		JwksUri:  jwksUri,
		cacheTTL: 5 * time.Minute,
	}
}

// ValidateToken verifies the token's signature against the JWKS keys and
// its standard time claims, and returns the mapped user on success.
func (a *JwtAuthenticator) ValidateToken(tokenString string) (*AuthenticatedUser, error) {
	if a.JwksUri == "" {
		return nil, errors.New("JWKS URI not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		kid, _ := t.Header["kid"].(string)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		key, err := a.fetchKey(ctx, kid)
		if err != nil {
			return nil, err
		}

		var raw interface{}
		if err := key.Raw(&raw); err != nil {
			return nil, fmt.Errorf("failed to extract raw key: %w", err)
		}
		return raw, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return a.mapClaimsToUser(claims)
}

// fetchKey resolves a signing key by id, fetching (and caching) the
// remote key set as needed.
func (a *JwtAuthenticator) fetchKey(ctx context.Context, kid string) (jwk.Key, error) {
	set, err := a.keySet(ctx)
	if err != nil {
		return nil, err
	}

	if kid != "" {
		if key, ok := set.LookupKeyID(kid); ok {
			return key, nil
		}
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}

	// No kid header: usable only when the set holds a single key.
	if set.Len() == 1 {
		key, _ := set.Key(0)
		return key, nil
	}
	return nil, errors.New("token has no kid and JWKS holds multiple keys")
}

func (a *JwtAuthenticator) keySet(ctx context.Context) (jwk.Set, error) {
	a.mu.Lock()
	if a.cachedSet != nil && time.Since(a.fetchedAt) < a.cacheTTL {
		set := a.cachedSet
		a.mu.Unlock()
		return set, nil
	}
	a.mu.Unlock()

	set, err := jwk.Fetch(ctx, a.JwksUri)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	a.mu.Lock()
	a.cachedSet = set
	a.fetchedAt = time.Now()
	a.mu.Unlock()
	return set, nil
}

func (a *JwtAuthenticator) mapClaimsToUser(claims map[string]interface{}) (*AuthenticatedUser, error) {
	user := &AuthenticatedUser{}

	if sub, ok := claims["sub"].(string); ok {
		user.Sub = sub
	}
	if iss, ok := claims["iss"].(string); ok {
		user.Iss = iss
	}
	if clientId, ok := claims["client_id"].(string); ok {
		user.ClientId = clientId
	}
	if exp, ok := claims["exp"].(float64); ok {
		user.Exp = int64(exp)
	}
	if iat, ok := claims["iat"].(float64); ok {
		user.Iat = int64(iat)
	}

	// aud may arrive as a single string or a list.
	switch aud := claims["aud"].(type) {
	case string:
		user.Aud = []string{aud}
	case []interface{}:
		user.Aud = toStringSlice(aud)
	}

	if roles, ok := claims["roles"].([]interface{}); ok {
		user.Roles = toStringSlice(roles)
	}
	if scopes, ok := claims["scopes"].([]interface{}); ok {
		user.Scopes = toStringSlice(scopes)
	}

	return user, nil
}

func toStringSlice(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
