package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/grandslambert/backend-cms/internal/service"
	"github.com/grandslambert/backend-cms/pkg/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	User       *UserHandler
	Tenant     *TenantHandler
	Role       *RoleHandler
	Membership *MembershipHandler
	PostType   *PostTypeHandler
	Taxonomy   *TaxonomyHandler
	Term       *TermHandler
	Post       *PostHandler
	Menu       *MenuHandler
	Media      *MediaHandler
	Setting    *SettingHandler
	Activity   *ActivityHandler
	APIKey     *APIKeyHandler
}

// RouterConfig holds the router's cross-cutting settings.
type RouterConfig struct {
	// Debug switches gin out of release mode
	Debug bool
	// CORSOrigin is the allowed origin for the admin frontend
	CORSOrigin string
	// JWTSecret validates bearer tokens
	JWTSecret string
	// Blacklist rejects revoked tokens; nil disables the check
	Blacklist middleware.TokenBlacklist
	// RateLimiter limits requests per client IP; nil disables limiting
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with all routes mounted. Login, refresh
// and the health probes are the only unauthenticated paths; everything else
// sits behind the JWT middleware, and site-scoped mutations additionally
// resolve the caller's permissions on the routed site.
func NewRouter(cfg RouterConfig, h Handlers, auth service.AuthService, keys service.APIKeyService) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: cfg.CORSOrigin != "*",
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimiter))
	}

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	api := r.Group("/api/v1")
	api.Use(RequestMetadata())
	api.Use(APIKeyAuth(keys))
	api.Use(middleware.JWTMiddleware(&middleware.JWTConfig{
		Secret: cfg.JWTSecret,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Blacklist: cfg.Blacklist,
	}))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", h.User.Me)
		authGroup.POST("/impersonate", h.Auth.Impersonate)
		authGroup.POST("/switch-back", h.Auth.SwitchBack)
	}

	me := api.Group("/me")
	me.Use(ValidateUUIDParams("id"))
	{
		me.GET("/sites", h.Membership.ListMine)
		me.GET("/api-keys", h.APIKey.List)
		me.POST("/api-keys", h.APIKey.Create)
		me.POST("/api-keys/:id/revoke", h.APIKey.Revoke)
		me.DELETE("/api-keys/:id", h.APIKey.Delete)
	}

	// Network-level administration. Users, roles, sites and the global
	// activity feed belong to the network, not to any one site.
	users := api.Group("/users")
	users.Use(ValidateUUIDParams("id"))
	{
		users.GET("/:id", h.User.GetByID)
		users.GET("", RequireSuperAdmin(), h.User.List)
		users.POST("", RequireSuperAdmin(), h.User.Create)
		users.PUT("/:id", RequireSuperAdmin(), h.User.Update)
		users.DELETE("/:id", RequireSuperAdmin(), h.User.Delete)
	}

	roles := api.Group("/roles")
	roles.Use(ValidateUUIDParams("id"))
	{
		roles.GET("", h.Role.List)
		roles.GET("/:id", h.Role.GetByID)
		roles.POST("", RequireSuperAdmin(), h.Role.Create)
		roles.PUT("/:id", RequireSuperAdmin(), h.Role.Update)
		roles.DELETE("/:id", RequireSuperAdmin(), h.Role.Delete)
	}

	activity := api.Group("/activity", RequireSuperAdmin(), ValidateUUIDParams("id"))
	{
		activity.GET("", h.Activity.List)
		activity.GET("/:id", h.Activity.GetByID)
	}

	sites := api.Group("/sites")
	sites.Use(ValidateUUIDParams("site_id"))
	{
		sites.GET("", h.Tenant.List)
		sites.POST("", RequireSuperAdmin(), h.Tenant.Create)
		sites.GET("/:site_id", h.Tenant.GetByID)
		sites.PUT("/:site_id", RequireSuperAdmin(), h.Tenant.Update)
		sites.DELETE("/:site_id", RequireSuperAdmin(), h.Tenant.Delete)
	}

	// Site-scoped routes. The permission guards resolve against the site in
	// the path, so one token works across every site the user belongs to.
	site := api.Group("/sites/:site_id")
	site.Use(ValidateUUIDParams("site_id", "user_id"))
	{
		members := site.Group("/members")
		{
			members.GET("", RequirePermission(auth, PermListUsers), h.Membership.List)
			members.POST("", RequirePermission(auth, PermPromoteUsers), h.Membership.Add)
			members.PUT("/:user_id", RequirePermission(auth, PermPromoteUsers), h.Membership.ChangeRole)
			members.DELETE("/:user_id", RequirePermission(auth, PermPromoteUsers), h.Membership.Remove)
		}

		postTypes := site.Group("/post-types")
		{
			postTypes.GET("", h.PostType.List)
			postTypes.GET("/:name", h.PostType.GetByName)
			postTypes.POST("", RequirePermission(auth, PermManageTypes), h.PostType.Create)
			postTypes.PUT("/:name", RequirePermission(auth, PermManageTypes), h.PostType.Update)
			postTypes.DELETE("/:name", RequirePermission(auth, PermManageTypes), h.PostType.Delete)
		}

		taxonomies := site.Group("/taxonomies")
		{
			taxonomies.GET("", h.Taxonomy.List)
			taxonomies.GET("/:taxonomy", h.Taxonomy.GetByName)
			taxonomies.POST("", RequirePermission(auth, PermManageTypes), h.Taxonomy.Create)
			taxonomies.PUT("/:taxonomy", RequirePermission(auth, PermManageTypes), h.Taxonomy.Update)
			taxonomies.DELETE("/:taxonomy", RequirePermission(auth, PermManageTypes), h.Taxonomy.Delete)

			terms := taxonomies.Group("/:taxonomy/terms")
			{
				terms.GET("", h.Term.List)
				terms.GET("/:id", h.Term.GetByID)
				terms.POST("", RequirePermission(auth, PermManageCategories), h.Term.Create)
				terms.PUT("/:id", RequirePermission(auth, PermManageCategories), h.Term.Update)
				terms.DELETE("/:id", RequirePermission(auth, PermManageCategories), h.Term.Delete)
			}
		}

		content := site.Group("/content/:type")
		{
			content.GET("", h.Post.List)
			content.GET("/:id", h.Post.GetByID)
			content.POST("", RequirePermission(auth, PermEditPosts), h.Post.Create)
			content.PUT("/:id", RequirePermission(auth, PermEditPosts), h.Post.Update)
			content.DELETE("/:id", RequirePermission(auth, PermDeletePosts), h.Post.Delete)
		}

		menus := site.Group("/menus")
		{
			menus.GET("", h.Menu.List)
			menus.GET("/:menu_id", h.Menu.GetByID)
			menus.GET("/:menu_id/tree", h.Menu.Tree)
			menus.GET("/:menu_id/items", h.Menu.ListItems)
			menus.POST("", RequirePermission(auth, PermManageMenus), h.Menu.Create)
			menus.PUT("/:menu_id", RequirePermission(auth, PermManageMenus), h.Menu.Update)
			menus.DELETE("/:menu_id", RequirePermission(auth, PermManageMenus), h.Menu.Delete)
			menus.POST("/:menu_id/items", RequirePermission(auth, PermManageMenus), h.Menu.AddItem)
			menus.PUT("/:menu_id/items/:item_id", RequirePermission(auth, PermManageMenus), h.Menu.UpdateItem)
			menus.DELETE("/:menu_id/items/:item_id", RequirePermission(auth, PermManageMenus), h.Menu.DeleteItem)
			menus.PUT("/:menu_id/reorder", RequirePermission(auth, PermManageMenus), h.Menu.Reorder)
		}

		media := site.Group("/media")
		{
			media.GET("", h.Media.List)
			media.GET("/:id", h.Media.GetByID)
			media.POST("", RequirePermission(auth, PermUploadFiles), h.Media.Create)
			media.PUT("/:id", RequirePermission(auth, PermUploadFiles), h.Media.Update)
			media.DELETE("/:id", RequirePermission(auth, PermUploadFiles), h.Media.Delete)
		}

		settings := site.Group("/settings")
		{
			settings.GET("", h.Setting.List)
			settings.GET("/:key", h.Setting.Get)
			settings.PUT("/:key", RequirePermission(auth, PermManageOptions), h.Setting.Set)
			settings.DELETE("/:key", RequirePermission(auth, PermManageOptions), h.Setting.Delete)
		}

		site.GET("/activity", RequirePermission(auth, PermViewActivity), h.Activity.ListForSite)
	}

	return r
}
