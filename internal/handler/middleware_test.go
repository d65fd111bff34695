package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/apperr"
	"github.com/grandslambert/backend-cms/pkg/middleware"
)

// stubAuthService resolves a fixed permission set for every principal.
type stubAuthService struct {
	set domain.PermissionSet
	err error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, *service.TokenPair, error) {
	return nil, nil, apperr.Unauthorized("")
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	return nil, apperr.Unauthorized("")
}

func (s *stubAuthService) Logout(ctx context.Context, p service.Principal, accessExpiry time.Time) error {
	return nil
}

func (s *stubAuthService) Resolve(ctx context.Context, p service.Principal) (domain.PermissionSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func (s *stubAuthService) Impersonate(ctx context.Context, actor service.Principal, targetUserID string) (*domain.User, *service.TokenPair, error) {
	return nil, nil, apperr.Forbidden("switch_user")
}

func (s *stubAuthService) SwitchBack(ctx context.Context, current service.Principal) (*domain.User, *service.TokenPair, error) {
	return nil, nil, apperr.NotImpersonating()
}

// stubAPIKeyService accepts one known secret.
type stubAPIKeyService struct {
	secret string
	user   *domain.User
	key    *domain.APIKey
}

func (s *stubAPIKeyService) Create(ctx context.Context, actor service.Principal, input service.CreateAPIKeyInput) (*domain.APIKey, string, error) {
	return nil, "", apperr.Internal(nil)
}

func (s *stubAPIKeyService) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	return nil, nil
}

func (s *stubAPIKeyService) Revoke(ctx context.Context, actor service.Principal, userID, id string) error {
	return nil
}

func (s *stubAPIKeyService) Delete(ctx context.Context, actor service.Principal, userID, id string) error {
	return nil
}

func (s *stubAPIKeyService) Authenticate(ctx context.Context, secret string) (*domain.User, *domain.APIKey, error) {
	if secret == s.secret {
		key := s.key
		if key == nil {
			key = &domain.APIKey{UserID: s.user.ID, IsActive: true}
		}
		return s.user, key, nil
	}
	return nil, nil, apperr.Unauthorized("invalid api key")
}

func performRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func authedRouter(userID string, superAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeySuperAdmin, superAdmin)
		c.Next()
	})
	return r
}

func TestRequirePermission(t *testing.T) {
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

	t.Run("granted permission passes through", func(t *testing.T) {
		auth := &stubAuthService{set: domain.RolePermissions{PermEditPosts: true}}
		r := authedRouter("user-1", false)
		r.GET("/sites/:site_id/posts", RequirePermission(auth, PermEditPosts), ok)

		w := performRequest(r, http.MethodGet, "/sites/site-1/posts")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing permission rejects with 403 naming it", func(t *testing.T) {
		auth := &stubAuthService{set: domain.NoPermissions{}}
		r := authedRouter("user-1", false)
		r.GET("/sites/:site_id/posts", RequirePermission(auth, PermEditPosts), ok)

		w := performRequest(r, http.MethodGet, "/sites/site-1/posts")
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Error.Message != "missing required permission: "+PermEditPosts {
			t.Errorf("message = %q", body.Error.Message)
		}
	})

	t.Run("inactive tenant error propagates its status", func(t *testing.T) {
		auth := &stubAuthService{err: apperr.TenantInactive("site-1")}
		r := authedRouter("user-1", false)
		r.GET("/sites/:site_id/posts", RequirePermission(auth, PermEditPosts), ok)

		w := performRequest(r, http.MethodGet, "/sites/site-1/posts")
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("super admin set grants everything", func(t *testing.T) {
		auth := &stubAuthService{set: domain.SuperAdminPermissions{}}
		r := authedRouter("root-1", true)
		r.GET("/sites/:site_id/posts", RequirePermission(auth, PermManageOptions), ok)

		w := performRequest(r, http.MethodGet, "/sites/site-1/posts")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keys := &stubAPIKeyService{
		secret: "good-secret",
		user:   &domain.User{ID: "user-7", RoleID: "role-1", SuperAdmin: false, IsActive: true},
	}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(APIKeyAuth(keys))
		r.GET("/whoami", func(c *gin.Context) {
			id, _ := middleware.GetUserID(c)
			c.JSON(http.StatusOK, gin.H{"user_id": id})
		})
		return r
	}

	t.Run("valid key sets the principal", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-API-Key", "good-secret")
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.UserID != "user-7" {
			t.Errorf("user_id = %q, want user-7", body.UserID)
		}
	})

	t.Run("invalid key rejects with 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("X-API-Key", "wrong")
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing header passes through unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.UserID != "" {
			t.Errorf("user_id = %q, want empty", body.UserID)
		}
	})
}

func TestAPIKeyAuthScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	boundSite := "site-1"
	keys := &stubAPIKeyService{
		secret: "good-secret",
		user:   &domain.User{ID: "user-7", RoleID: "role-1", IsActive: true},
		key: &domain.APIKey{
			UserID:      "user-7",
			Permissions: map[string]bool{PermEditPosts: true},
			TenantID:    &boundSite,
			IsActive:    true,
		},
	}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(APIKeyAuth(keys))
		r.GET("/sites/:site_id/posts", func(c *gin.Context) {
			p := principalFrom(c)
			c.JSON(http.StatusOK, gin.H{
				"key_tenant": p.KeyTenantID,
				"edit_posts": p.KeyPermissions[PermEditPosts],
			})
		})
		return r
	}

	t.Run("bound site passes and exposes the key scope", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sites/site-1/posts", nil)
		req.Header.Set("X-API-Key", "good-secret")
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body struct {
			KeyTenant string `json:"key_tenant"`
			EditPosts bool   `json:"edit_posts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.KeyTenant != boundSite {
			t.Errorf("key_tenant = %q, want %q", body.KeyTenant, boundSite)
		}
		if !body.EditPosts {
			t.Error("expected the key's permission map on the principal")
		}
	})

	t.Run("another site rejected with 403", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sites/site-2/posts", nil)
		req.Header.Set("X-API-Key", "good-secret")
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

type captureAuditStore struct {
	entries []*domain.ActivityLogEntry
}

func (s *captureAuditStore) Insert(ctx context.Context, entry *domain.ActivityLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func TestRequestMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &captureAuditStore{}
	trail := audit.NewLogger(store)

	r := gin.New()
	r.Use(RequestMetadata())
	r.POST("/things", func(c *gin.Context) {
		trail.Record(c.Request.Context(), &domain.ActivityLogEntry{
			ActorID:    "u1",
			Action:     domain.ActionCreate,
			ObjectType: "thing",
		})
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	req.RemoteAddr = "203.0.113.9:51234"
	req.Header.Set("User-Agent", "cms-cli/1.0")
	r.ServeHTTP(w, req)

	if len(store.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(store.entries))
	}
	entry := store.entries[0]
	if entry.IPAddress != "203.0.113.9" {
		t.Errorf("ip = %q, want 203.0.113.9", entry.IPAddress)
	}
	if entry.UserAgent != "cms-cli/1.0" {
		t.Errorf("user agent = %q, want cms-cli/1.0", entry.UserAgent)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

	t.Run("super admin passes", func(t *testing.T) {
		r := authedRouter("root-1", true)
		r.POST("/sites", RequireSuperAdmin(), ok)

		w := performRequest(r, http.MethodPost, "/sites")
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("regular user rejected", func(t *testing.T) {
		r := authedRouter("user-1", false)
		r.POST("/sites", RequireSuperAdmin(), ok)

		w := performRequest(r, http.MethodPost, "/sites")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("super admin behind a scoped key rejected", func(t *testing.T) {
		r := authedRouter("root-1", true)
		r.Use(func(c *gin.Context) {
			c.Set(contextKeyAPIKeyPermissions, map[string]bool{PermEditPosts: true})
			c.Next()
		})
		r.POST("/sites", RequireSuperAdmin(), ok)

		w := performRequest(r, http.MethodPost, "/sites")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperr.NotFound("post", "p1"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperr.Conflict("slug already exists"), http.StatusConflict, "CONFLICT"},
		{"in use", apperr.InUse("term", 3), http.StatusConflict, "IN_USE"},
		{"untyped error collapses to opaque 500", context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}
