package di

import (
	"time"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/handler"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/config"
	"github.com/grandslambert/backend-cms/pkg/database"
)

// TokenBlacklist is the revocation store shared by the auth service (which
// revokes) and the JWT middleware (which checks). Both the in-memory and the
// Redis implementations satisfy it.
type TokenBlacklist interface {
	Revoke(jti string, expiresAt time.Time)
	IsRevoked(jti string) bool
}

// Container holds all dependencies for the CMS backend
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Blacklist TokenBlacklist
	Stores    *tenantstore.Registry
	Types     *contenttype.Registry
	Auditor   *audit.Logger

	// Repositories
	UserRepo       repository.UserRepository
	RoleRepo       repository.RoleRepository
	TenantRepo     repository.TenantRepository
	MembershipRepo repository.MembershipRepository
	ActivityRepo   repository.ActivityRepository
	APIKeyRepo     repository.APIKeyRepository

	// Services
	AuthService       service.AuthService
	UserService       service.UserService
	TenantService     service.TenantService
	RoleService       service.RoleService
	MembershipService service.MembershipService
	PostTypeService   service.PostTypeService
	TaxonomyService   service.TaxonomyService
	TermService       service.TermService
	PostService       service.PostService
	MenuService       service.MenuService
	MediaService      service.MediaService
	SettingService    service.SettingService
	ActivityService   service.ActivityService
	APIKeyService     service.APIKeyService

	// Handlers
	Handlers handler.Handlers
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB *database.PostgresDB
	// Strategy is the tenant content store backend (postgres shared tables,
	// surreal table-per-tenant, or memory in tests)
	Strategy  tenantstore.Strategy
	Blacklist TokenBlacklist
	JWT       config.JWTConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Blacklist: cfg.Blacklist,
	}

	pool := cfg.DB.Pool()

	// Repositories
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.RoleRepo = repository.NewPostgresRoleRepository(pool)
	c.TenantRepo = repository.NewPostgresTenantRepository(pool)
	c.MembershipRepo = repository.NewPostgresMembershipRepository(pool)
	c.ActivityRepo = repository.NewPostgresActivityRepository(pool)
	c.APIKeyRepo = repository.NewPostgresAPIKeyRepository(pool)

	// Tenant content store. The tenant repository doubles as the checker, so
	// a deactivated site blocks content access immediately.
	checker := repository.NewTenantStatusChecker(c.TenantRepo)
	c.Stores = tenantstore.NewRegistry(cfg.Strategy, checker)
	c.Types = contenttype.NewRegistry(c.Stores)
	c.Auditor = audit.NewLogger(c.ActivityRepo)

	// Services
	c.AuthService = service.NewAuthService(c.UserRepo, c.RoleRepo, c.MembershipRepo, cfg.Blacklist, c.Auditor, cfg.JWT)
	c.UserService = service.NewUserService(c.UserRepo, c.Auditor)
	c.TenantService = service.NewTenantService(c.TenantRepo, c.Stores, c.Auditor)
	c.RoleService = service.NewRoleService(c.RoleRepo, c.Auditor)
	c.MembershipService = service.NewMembershipService(c.MembershipRepo, c.UserRepo, c.RoleRepo, c.Auditor)
	c.PostTypeService = service.NewPostTypeService(c.Stores, c.Types, c.Auditor)
	c.TaxonomyService = service.NewTaxonomyService(c.Stores, c.Types, c.Auditor)
	c.TermService = service.NewTermService(c.Stores, c.Types, c.Auditor)
	c.PostService = service.NewPostService(c.Stores, c.Types, c.TermService, c.Auditor)
	c.MenuService = service.NewMenuService(c.Stores, c.Types, c.Auditor)
	c.MediaService = service.NewMediaService(c.Stores, c.Auditor)
	c.SettingService = service.NewSettingService(c.Stores, c.Auditor)
	c.ActivityService = service.NewActivityService(c.ActivityRepo)
	c.APIKeyService = service.NewAPIKeyService(c.APIKeyRepo, c.UserRepo, c.Auditor)

	// Handlers
	c.Handlers = handler.Handlers{
		Health:     handler.NewHealthHandler(c.DB),
		Auth:       handler.NewAuthHandler(c.AuthService, cfg.JWT.AccessTokenTTL),
		User:       handler.NewUserHandler(c.UserService),
		Tenant:     handler.NewTenantHandler(c.TenantService),
		Role:       handler.NewRoleHandler(c.RoleService),
		Membership: handler.NewMembershipHandler(c.MembershipService),
		PostType:   handler.NewPostTypeHandler(c.PostTypeService),
		Taxonomy:   handler.NewTaxonomyHandler(c.TaxonomyService),
		Term:       handler.NewTermHandler(c.TermService),
		Post:       handler.NewPostHandler(c.PostService, c.UserService, c.TermService),
		Menu:       handler.NewMenuHandler(c.MenuService),
		Media:      handler.NewMediaHandler(c.MediaService),
		Setting:    handler.NewSettingHandler(c.SettingService),
		Activity:   handler.NewActivityHandler(c.ActivityService),
		APIKey:     handler.NewAPIKeyHandler(c.APIKeyService),
	}

	return c
}
