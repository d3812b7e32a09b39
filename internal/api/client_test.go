package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := log.New()
	logger.SetOutput(io.Discard)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, log.NewEntry(logger), metrics.NewClientMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"}, nil, nil)
	require.Error(t, err)
}

func TestListShops_DecodesAndSendsHeaders(t *testing.T) {
	rating := 4.5
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/customer/shops", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "unieats-client/"))
		writeJSON(w, http.StatusOK, []domain.Shop{
			{ID: 1, ShopName: "Pizza Place", City: "Springfield", Rating: &rating},
			{ID: 2, ShopName: "Noodle Bar"},
		})
	}))

	shops, err := c.ListShops(context.Background())
	require.NoError(t, err)
	require.Len(t, shops, 2)
	require.Equal(t, "Pizza Place", shops[0].ShopName)
	require.Equal(t, 4.5, shops[0].RatingOrZero())
	require.Nil(t, shops[1].Rating)
}

func TestDoJSON_StatusErrorMessage(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message from body", status: http.StatusConflict, body: `{"message":"Email already exists"}`, message: "Email already exists"},
		{name: "no body", status: http.StatusInternalServerError, body: ``, message: "HTTP error! status: 500"},
		{name: "non json body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, message: "HTTP error! status: 502"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))

			err := c.RegisterCustomer(context.Background(), domain.CustomerRegistration{Email: "a@b.co"})
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			require.Equal(t, tc.status, statusErr.Code)
			require.Equal(t, tc.message, statusErr.Error())
			require.False(t, IsTransport(err))
		})
	}
}

func TestDoJSON_TransportError(t *testing.T) {
	c, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	_, err := c.ListShops(context.Background())
	require.ErrorIs(t, err, ErrTransport)
	require.Zero(t, StatusCode(err))
}

func TestDoJSON_UnauthorizedAndLoginRedirect(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/me":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.Redirect(w, r, "/login", http.StatusFound)
		}
	}))

	_, err := c.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = c.ListFoods(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestLogin_SessionCookieAndFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/perform_login":
			require.NoError(t, r.ParseForm())
			if r.PostForm.Get("username") == "jane@uni.edu" && r.PostForm.Get("password") == "secret" {
				http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "sess-1", Path: "/"})
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			http.Redirect(w, r, "/login?error=true", http.StatusFound)
		case "/api/auth/me":
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value != "sess-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 7, "email": "jane@uni.edu", "name": "Jane", "role": "CUSTOMER", "isActive": true,
			})
		case "/logout":
			http.Redirect(w, r, "/login?logout=true", http.StatusFound)
		}
	}))

	ctx := context.Background()
	require.ErrorIs(t, c.Login(ctx, "jane@uni.edu", "wrong"), domain.ErrInvalidCredentials)
	require.Empty(t, c.SessionID())

	require.NoError(t, c.Login(ctx, "jane@uni.edu", "secret"))
	require.Equal(t, "sess-1", c.SessionID())

	user, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.RoleCustomer, user.Role)
	require.Equal(t, int64(7), user.ID)

	require.NoError(t, c.Logout(ctx))
	require.Empty(t, c.SessionID())
}

func TestRestoreSession(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, domain.User{ID: 1, Name: cookie.Value})
	}))

	c.RestoreSession("restored")
	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "restored", user.Name)
}

func TestFoodEndpoints(t *testing.T) {
	var calls []string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/shop/foods":
			var in domain.Food
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Zero(t, in.ID)
			in.ID = 11
			writeJSON(w, http.StatusOK, in)
		case r.Method == http.MethodPut && r.URL.Path == "/api/shop/foods/11":
			var in domain.Food
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, int64(11), in.ID)
			writeJSON(w, http.StatusOK, in)
		case r.URL.Path == "/api/customer/foods/404":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))

	ctx := context.Background()
	created, err := c.CreateFood(ctx, domain.Food{ID: 99, Name: "Burger", Price: 8.5})
	require.NoError(t, err)
	require.Equal(t, int64(11), created.ID)

	updated, err := c.UpdateFood(ctx, 11, domain.Food{Name: "Burger XL"})
	require.NoError(t, err)
	require.Equal(t, "Burger XL", updated.Name)

	require.NoError(t, c.ToggleAvailability(ctx, 11))
	require.NoError(t, c.ToggleFeatured(ctx, 11))
	require.NoError(t, c.DeleteFood(ctx, 11))

	_, err = c.GetFood(ctx, 404)
	require.True(t, errors.Is(err, domain.ErrFoodNotFound))

	require.Equal(t, []string{
		"POST /api/shop/foods",
		"PUT /api/shop/foods/11",
		"POST /api/shop/foods/11/toggle-availability",
		"POST /api/shop/foods/11/toggle-featured",
		"DELETE /api/shop/foods/11",
		"GET /api/customer/foods/404",
	}, calls)
}

func TestEmailExists(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"exists": r.URL.Query().Get("email") == "taken@uni.edu"})
	}))

	exists, err := c.EmailExists(context.Background(), "taken@uni.edu")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = c.EmailExists(context.Background(), "free@uni.edu")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPing(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/", r.URL.Path)
		w.WriteHeader(http.StatusFound)
	}))
	require.NoError(t, c.Ping(context.Background()))

	srv.Close()
	require.True(t, IsTransport(c.Ping(context.Background())))
}
