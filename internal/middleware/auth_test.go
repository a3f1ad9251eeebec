package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/repositories/memory"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, userID uint, expires time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID,
		Email:  "u@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func run(mw echo.MiddlewareFunc, header string) (uint, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got uint
	err := mw(func(c echo.Context) error {
		got, _ = c.Get(UserIDKey).(uint)
		return nil
	})(c)
	return got, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	mw := JWTAuthMiddleware("secret")

	t.Run("valid token sets user id", func(t *testing.T) {
		id, err := run(mw, "Bearer "+signed(t, "secret", 7, time.Now().Add(time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, uint(7), id)
	})

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"bad signature":  "Bearer " + signed(t, "other", 7, time.Now().Add(time.Hour)),
		"expired":        "Bearer " + signed(t, "secret", 7, time.Now().Add(-time.Hour)),
		"no user id":     "Bearer " + signed(t, "secret", 0, time.Now().Add(time.Hour)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := run(mw, header)
			assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		})
	}
}

type stubVerifier map[string]string

func (v stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := v[idToken]
	if !ok {
		return nil, errors.New("token revoked")
	}
	return &auth.Token{UID: uid}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	uid := "fb-alice"
	users := memory.NewUserStore(models.User{ID: 3, Username: "alice", FirebaseUID: &uid})
	mw := FirebaseAuthMiddleware(stubVerifier{"good": uid, "orphan": "fb-nobody"}, users)

	id, err := run(mw, "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	_, err = run(mw, "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(mw, "Bearer orphan")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
