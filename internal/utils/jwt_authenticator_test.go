package utils

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyID = "studio-signing-key"

// jwksFixture serves a one-key JWK set over HTTP and signs tokens with
// the matching private key.
type jwksFixture struct {
	privateKey *rsa.PrivateKey
	server     *httptest.Server
	requests   int
}

func newJwksFixture(t *testing.T) *jwksFixture {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.FromRaw(&privateKey.PublicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, testKeyID))
	require.NoError(t, key.Set(jwk.AlgorithmKey, "RS256"))
	require.NoError(t, key.Set(jwk.KeyUsageKey, "sig"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))

	fx := &jwksFixture{privateKey: privateKey}
	fx.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fx.requests++
		w.Header().Set("Content-Type", "application/json")
		raw, err := json.Marshal(set)
		if err != nil {
			http.Error(w, "marshal jwks", http.StatusInternalServerError)
			return
		}
		w.Write(raw)
	}))
	t.Cleanup(fx.server.Close)
	return fx
}

func (fx *jwksFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(fx.privateKey)
	require.NoError(t, err)
	return signed
}

func ownerClaims(aud any) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": "designer-7",
		"iss": "https://auth.postcraft.example",
		"aud": aud,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}
}

func TestNewJwtAuthenticator(t *testing.T) {
	jwksUri := "https://auth.postcraft.example/.well-known/jwks.json"
	auth := NewJwtAuthenticator(jwksUri)

	assert.Equal(t, jwksUri, auth.JwksUri)
	assert.Equal(t, 5*time.Minute, auth.cacheTTL)
}

func TestValidateTokenWithoutJwksUri(t *testing.T) {
	auth := NewJwtAuthenticator("")

	_, err := auth.ValidateToken("dummy.jwt.token")
	require.Error(t, err)
	assert.Equal(t, "JWKS URI not configured", err.Error())
}

func TestMapClaimsToUser(t *testing.T) {
	auth := NewJwtAuthenticator("https://auth.postcraft.example/.well-known/jwks.json")

	user, err := auth.mapClaimsToUser(map[string]interface{}{
		"sub": "designer-7",
		"iss": "https://auth.postcraft.example",
		"exp": 1234567890.0,
		"aud": []interface{}{"template-studio", "asset-store"},
	})
	require.NoError(t, err)

	// sub is the claim the service consumes: it becomes the template
	// owner id on create and copy
	assert.Equal(t, "designer-7", user.Sub)
	assert.Equal(t, "https://auth.postcraft.example", user.Iss)
	assert.Equal(t, int64(1234567890), user.Exp)
	assert.Equal(t, []string{"template-studio", "asset-store"}, user.Aud)
}

func TestMapClaimsToUserWithSingleAudience(t *testing.T) {
	auth := NewJwtAuthenticator("https://auth.postcraft.example/.well-known/jwks.json")

	// aud may arrive as a bare string instead of an array
	user, err := auth.mapClaimsToUser(map[string]interface{}{"aud": "template-studio"})
	require.NoError(t, err)
	assert.Equal(t, []string{"template-studio"}, user.Aud)
}

func TestValidateToken(t *testing.T) {
	fx := newJwksFixture(t)
	auth := NewJwtAuthenticator(fx.server.URL)

	user, err := auth.ValidateToken(fx.sign(t, ownerClaims([]string{"template-studio"})))
	require.NoError(t, err)

	assert.Equal(t, "designer-7", user.Sub)
	assert.Equal(t, "https://auth.postcraft.example", user.Iss)
	assert.Equal(t, []string{"template-studio"}, user.Aud)
}

func TestValidateTokenWrongKey(t *testing.T) {
	fx := newJwksFixture(t)
	auth := NewJwtAuthenticator(fx.server.URL)

	// Signed with a key the JWKS endpoint does not serve
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, ownerClaims("template-studio"))
	token.Header["kid"] = testKeyID
	forged, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = auth.ValidateToken(forged)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	fx := newJwksFixture(t)
	auth := NewJwtAuthenticator(fx.server.URL)

	claims := ownerClaims("template-studio")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	claims["iat"] = time.Now().Add(-2 * time.Hour).Unix()

	_, err := auth.ValidateToken(fx.sign(t, claims))
	assert.Error(t, err)
}

func TestJWKSCaching(t *testing.T) {
	fx := newJwksFixture(t)
	auth := NewJwtAuthenticator(fx.server.URL)
	token := fx.sign(t, ownerClaims("template-studio"))

	for i := 0; i < 3; i++ {
		_, err := auth.ValidateToken(token)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, fx.requests, "repeat validations inside the TTL reuse the cached key set")
}

func TestFetchKeyTimeout(t *testing.T) {
	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer hang.Close()
	// jwk.Fetch runs the GET on a background httprc worker that is not
	// bound to the caller's context, so the request outlives fetchKey;
	// drop the connection first or Close waits on the hung handler.
	defer hang.CloseClientConnections()

	auth := NewJwtAuthenticator(hang.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := auth.fetchKey(ctx, testKeyID)
	assert.Error(t, err)
}
