package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/service/catalog"
	"github.com/KasumiMercury/voltahome/internal/service/item"
	"github.com/KasumiMercury/voltahome/internal/service/status"
)

var testNow = time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)

type stubVerifier struct {
	sessions map[string]*domain.Session
}

func (v stubVerifier) Verify(token string) (*domain.Session, error) {
	if s, ok := v.sessions[token]; ok {
		return s, nil
	}
	return nil, errors.New("invalid token")
}

var testVerifier = stubVerifier{sessions: map[string]*domain.Session{
	"owner-token": {UserID: "owner-1", Email: "owner@example.com", Name: "Owner"},
	"admin-token": {UserID: "admin-1", Email: "admin@example.com", Name: "Admin"},
}}

type stubAdminChecker struct {
	admins map[string]bool
	err    error
}

func (c stubAdminChecker) IsAdmin(_ context.Context, session *domain.Session) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.admins[session.UserID], nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(testVerifier))
	return r
}

func doRequest(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	return doRequestWithUA(r, method, path, token, body, "")
}

func doRequestWithUA(r http.Handler, method, path, token, body, userAgent string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newItemRouter(t *testing.T) (*gin.Engine, *domain.MockItemRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := domain.NewMockItemRepository(ctrl)
	calc := status.NewCalculator(catalog.Default(), time.UTC, func() time.Time { return testNow })
	h := NewItemHandler(item.NewService(repo, catalog.Default(), calc), calc)

	r := newRouter()
	items := r.Group("/api/v1/items", RequireSession())
	items.GET("", h.HandleList)
	items.POST("", h.HandleCreate)
	items.PATCH("/:id", h.HandleUpdate)
	items.DELETE("/:id", h.HandleDelete)
	return r, repo
}

func TestItemRoutesRequireSession(t *testing.T) {
	r, _ := newItemRouter(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token"},
		{name: "unknown token", token: "forged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/api/v1/items", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthorized", decode(t, w)["error"])
		})
	}
}

func TestListItemsAnnotatesStatus(t *testing.T) {
	r, repo := newItemRouter(t)

	repo.EXPECT().ListByOwner(gomock.Any(), "owner-1").Return([]*domain.MaintenanceItem{
		{
			ID:                   "i1",
			OwnerID:              "owner-1",
			Name:                 "Smoke detector",
			Category:             domain.CategoryBattery,
			ItemType:             "9V",
			DateLastServiced:     time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC),
			ExpectedDurationDays: 180,
			Image:                "data:image/png;base64,AAAA",
		},
	}, nil)

	w := doRequest(r, http.MethodGet, "/api/v1/items", "owner-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	got := items[0].(map[string]any)
	assert.Equal(t, "2024-11-13", got["dateLastServiced"])
	assert.Equal(t, float64(200), got["daysSinceChange"])
	assert.Equal(t, float64(111), got["percentUsed"])
	assert.Equal(t, float64(100), got["displayPercent"])
	assert.Equal(t, "replace", got["status"])
	assert.Equal(t, "red", got["statusColor"])
}

func TestCreateItemValidation(t *testing.T) {
	r, _ := newItemRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "nope"},
		{name: "missing name", body: `{"itemType":"AA","dateLastServiced":"2025-05-01","image":"x"}`},
		{name: "blank name", body: `{"name":"  ","itemType":"AA","dateLastServiced":"2025-05-01","image":"x"}`},
		{name: "bad date", body: `{"name":"Remote","itemType":"AA","dateLastServiced":"05/01/2025","image":"x"}`},
		{name: "zero duration", body: `{"name":"Remote","itemType":"AA","dateLastServiced":"2025-05-01","image":"x","expectedDurationDays":0}`},
		{name: "duration too long", body: `{"name":"Remote","itemType":"AA","dateLastServiced":"2025-05-01","image":"x","expectedDurationDays":3651}`},
		{name: "missing image", body: `{"name":"Remote","itemType":"AA","dateLastServiced":"2025-05-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/items", "owner-token", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation_error", decode(t, w)["error"])
		})
	}
}

func TestCreateItemUsesCatalogDefault(t *testing.T) {
	r, repo := newItemRouter(t)

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, it *domain.MaintenanceItem) (*domain.MaintenanceItem, error) {
			assert.Equal(t, "owner-1", it.OwnerID)
			assert.Equal(t, domain.CategoryBattery, it.Category)
			assert.Equal(t, 120, it.ExpectedDurationDays)
			assert.Equal(t, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), it.DateLastServiced)
			created := *it
			created.ID = "new-id"
			return &created, nil
		})

	body := `{"name":"Remote","itemType":"AAA","dateLastServiced":"2025-05-02","image":"data:x"}`
	w := doRequest(r, http.MethodPost, "/api/v1/items", "owner-token", body)
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode(t, w)["item"].(map[string]any)
	assert.Equal(t, "new-id", got["id"])
	assert.Equal(t, float64(30), got["daysSinceChange"])
	assert.Equal(t, "good", got["status"])
}

func TestUpdateItemServicedAction(t *testing.T) {
	r, repo := newItemRouter(t)

	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().UpdateFields(gomock.Any(), "owner-1", "i1", domain.ItemFields{DateLastServiced: &today}).
		Return(&domain.MaintenanceItem{
			ID:                   "i1",
			OwnerID:              "owner-1",
			DateLastServiced:     today,
			ExpectedDurationDays: 180,
		}, nil)

	w := doRequest(r, http.MethodPatch, "/api/v1/items/i1", "owner-token", `{"action":"serviced"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w)["item"].(map[string]any)
	assert.Equal(t, "2025-06-01", got["dateLastServiced"])
	assert.Equal(t, float64(0), got["daysSinceChange"])
	assert.Equal(t, "green", got["statusColor"])
}

func TestUpdateItemErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(repo *domain.MockItemRepository)
		wantStatus int
		wantError  string
	}{
		{
			name:       "unknown action",
			body:       `{"action":"replaced"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "empty update",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "zero duration",
			body:       `{"expectedDurationDays":0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name: "other owner's item",
			body: `{"name":"Hallway detector"}`,
			setup: func(repo *domain.MockItemRepository) {
				repo.EXPECT().UpdateFields(gomock.Any(), "owner-1", "i1", gomock.Any()).
					Return(nil, domain.ErrItemNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name: "store failure",
			body: `{"name":"Hallway detector"}`,
			setup: func(repo *domain.MockItemRepository) {
				repo.EXPECT().UpdateFields(gomock.Any(), "owner-1", "i1", gomock.Any()).
					Return(nil, errors.New("connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newItemRouter(t)
			if tt.setup != nil {
				tt.setup(repo)
			}

			w := doRequest(r, http.MethodPatch, "/api/v1/items/i1", "owner-token", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decode(t, w)["error"])
		})
	}
}

func TestDeleteItem(t *testing.T) {
	r, repo := newItemRouter(t)

	repo.EXPECT().Delete(gomock.Any(), "owner-1", "i1").Return(nil)
	repo.EXPECT().Delete(gomock.Any(), "owner-1", "missing").Return(domain.ErrItemNotFound)

	w := doRequest(r, http.MethodDelete, "/api/v1/items/i1", "owner-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = doRequest(r, http.MethodDelete, "/api/v1/items/missing", "owner-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogList(t *testing.T) {
	r := newRouter()
	r.GET("/api/v1/catalog", NewCatalogHandler(catalog.Default()).HandleList)

	w := doRequest(r, http.MethodGet, "/api/v1/catalog", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(catalog.GlobalFallbackDays), body["fallbackDays"])
	assert.NotEmpty(t, body["categories"])
}

func TestCheckAdmin(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		checker       stubAdminChecker
		wantStatus    int
		wantAuth      bool
		wantAdmin     bool
		wantUserEmail string
	}{
		{
			name:       "anonymous",
			wantStatus: http.StatusOK,
		},
		{
			name:          "regular user",
			token:         "owner-token",
			wantStatus:    http.StatusOK,
			wantAuth:      true,
			wantUserEmail: "owner@example.com",
		},
		{
			name:          "admin",
			token:         "admin-token",
			checker:       stubAdminChecker{admins: map[string]bool{"admin-1": true}},
			wantStatus:    http.StatusOK,
			wantAuth:      true,
			wantAdmin:     true,
			wantUserEmail: "admin@example.com",
		},
		{
			name:       "directory failure",
			token:      "admin-token",
			checker:    stubAdminChecker{err: errors.New("mongo down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter()
			r.GET("/api/v1/auth/check-admin", NewAdminHandler(tt.checker).HandleCheckAdmin)

			w := doRequest(r, http.MethodGet, "/api/v1/auth/check-admin", tt.token, "")
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			body := decode(t, w)
			assert.Equal(t, tt.wantAuth, body["isAuthenticated"])
			assert.Equal(t, tt.wantAdmin, body["isAdmin"])
			if tt.wantUserEmail == "" {
				assert.Nil(t, body["user"])
				return
			}
			assert.Equal(t, tt.wantUserEmail, body["user"].(map[string]any)["email"])
		})
	}
}
