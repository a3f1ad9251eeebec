package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/middleware"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/push"
	"github.com/anonto42/cinetrack/backend/internal/router"
	"github.com/anonto42/cinetrack/backend/pkg/config"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiSecret = "client-test"

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(apiSecret))
	require.NoError(t, err)
	return s
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	stores := router.MemoryStores()
	cfg := &config.Config{QueueMode: "memory", PushWorkers: 1, PushQueueSize: 8}
	queue, err := router.NewPushQueue(context.Background(), cfg, stores.Devices, push.NewLogSender(logging.Discard()), logging.Discard())
	require.NoError(t, err)
	queue.Run(context.Background())
	t.Cleanup(queue.Stop)

	e := echo.New()
	router.SetupRoutes(e, stores, middleware.JWTAuthMiddleware(apiSecret), queue, logging.Discard())
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func follow(t *testing.T, baseURL string, as, target uint) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/users/"+strconv.FormatUint(uint64(target), 10)+"/follow", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer(t, as))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_AgainstServer(t *testing.T) {
	srv := newAPIServer(t)
	ctx := context.Background()

	// bob and dave ask to follow carol, who is private
	follow(t, srv.URL, 2, 3)
	follow(t, srv.URL, 4, 3)

	carol := NewAPI(srv.URL+"/", bearer(t, 3))

	stats, err := carol.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.PendingRequestsCount)
	assert.Zero(t, stats.FollowersCount)

	unread, err := carol.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	feed, err := carol.Notifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.NotificationNewFollowRequest, feed[0].Type)
	assert.Equal(t, "dave", *feed[0].RelatedUsername)

	users, err := carol.SearchUsers(ctx, "A")
	require.NoError(t, err)
	names := []string{}
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "dave"}, names)

	r := NewReconciler(carol, nil, logging.Discard(), ReconcilerConfig{})
	b := r.Refresh(ctx)
	assert.Equal(t, Badges{Unread: 2, Pending: 2, Total: 2 + 2 + b.Engagement, Engagement: b.Engagement}, b)
}

func TestAPI_StatusError(t *testing.T) {
	srv := newAPIServer(t)

	_, err := NewAPI(srv.URL, "not-a-jwt").Stats(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.NotEmpty(t, se.Message)

	_, err = NewAPI(srv.URL, bearer(t, 1)).SearchUsers(context.Background(), "   ")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
}
