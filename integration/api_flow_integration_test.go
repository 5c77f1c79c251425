package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"ringslot/internal/auth"
	"ringslot/internal/config"
	"ringslot/internal/server"
)

func setupTestServer(t *testing.T, db *sqlx.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:           "0",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	// nil email service: notifications are skipped
	srv := server.New(db, cfg, nil)
	return srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterBookCancelOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	router := setupTestServer(t, db)

	// register opens a session straight away
	w := doJSON(t, router, "POST", "/auth/register",
		`{"email": "anna@example.com", "password": "secret1", "full_name": "Anna K"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var authResp struct {
		Token string `json:"token"`
		User  struct {
			ID int `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))
	require.NotEmpty(t, authResp.Token)

	userID := authResp.User.ID
	subID := createTestSubscription(t, db, userID, 8)
	slotID := createTestSlot(t, db, 1, "18:00")

	// book
	w = doJSON(t, router, "POST", fmt.Sprintf("/slots/%d/book", slotID), "", authResp.Token)
	require.Equal(t, http.StatusCreated, w.Code)

	var bookResp struct {
		Booking struct {
			ID int `json:"id"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bookResp))

	require.Equal(t, "booked", slotStatus(t, db, slotID))
	require.Equal(t, 1, usedSessions(t, db, subID))

	// booking the same slot again conflicts
	w = doJSON(t, router, "POST", fmt.Sprintf("/slots/%d/book", slotID), "", authResp.Token)
	require.Equal(t, http.StatusConflict, w.Code)

	// cancel
	w = doJSON(t, router, "POST", fmt.Sprintf("/bookings/%d/cancel", bookResp.Booking.ID), "", authResp.Token)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, "available", slotStatus(t, db, slotID))
	require.Equal(t, 0, usedSessions(t, db, subID))
}

func TestVerifyAndLogoutOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	router := setupTestServer(t, db)

	w := doJSON(t, router, "POST", "/auth/register",
		`{"email": "anna@example.com", "password": "secret1", "full_name": "Anna K"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var authResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))

	w = doJSON(t, router, "POST", "/auth/verify", "", authResp.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "anna@example.com")

	w = doJSON(t, router, "POST", "/auth/logout", "", authResp.Token)
	require.Equal(t, http.StatusOK, w.Code)

	// the token is dead now
	w = doJSON(t, router, "POST", "/auth/verify", "", authResp.Token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// logging out again still succeeds
	w = doJSON(t, router, "POST", "/auth/logout", "", authResp.Token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLoginKeepsOtherSessionsAlive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	router := setupTestServer(t, db)

	w := doJSON(t, router, "POST", "/auth/register",
		`{"email": "anna@example.com", "password": "secret1", "full_name": "Anna K"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var first struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doJSON(t, router, "POST", "/auth/login",
		`{"email": "anna@example.com", "password": "secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.NotEqual(t, first.Token, second.Token)

	// both sessions verify
	w = doJSON(t, router, "POST", "/auth/verify", "", first.Token)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "POST", "/auth/verify", "", second.Token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	cleanDatabase(t, db)

	router := setupTestServer(t, db)

	w := doJSON(t, router, "POST", "/auth/register",
		`{"email": "anna@example.com", "password": "secret1", "full_name": "Anna K"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var authResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))

	// a client is not an admin
	w = doJSON(t, router, "GET", "/admin/clients", "", authResp.Token)
	require.Equal(t, http.StatusForbidden, w.Code)

	// no token at all
	w = doJSON(t, router, "GET", "/admin/clients", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
