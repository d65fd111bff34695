package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/pkg/apperr"
	"github.com/grandslambert/backend-cms/pkg/config"
	"github.com/grandslambert/backend-cms/pkg/middleware"
)

// Principal is the authenticated identity extracted from a request token or
// API key.
type Principal struct {
	UserID         string
	Role           string
	TenantID       string
	SuperAdmin     bool
	ImpersonatorID string
	TokenID        string
	// KeyPermissions is set for API key sessions whose key carries its own
	// permission map; it caps whatever the owner's role resolves to.
	KeyPermissions map[string]bool
	// KeyTenantID is set for API key sessions whose key is bound to one site.
	KeyTenantID string
}

// Impersonating reports whether the session carries an original actor.
func (p Principal) Impersonating() bool { return p.ImpersonatorID != "" }

// AuditActorID returns the id audit entries are recorded against. Through an
// impersonated session this is the original actor, so trails stay
// attributable.
func (p Principal) AuditActorID() string {
	if p.ImpersonatorID != "" {
		return p.ImpersonatorID
	}
	return p.UserID
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenRevoker blacklists token ids until their natural expiry.
type TokenRevoker interface {
	Revoke(jti string, expiresAt time.Time)
}

// AuthService defines the interface for authentication, permission
// resolution and impersonation
type AuthService interface {
	// Login verifies credentials and issues a token pair
	Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error)
	// Refresh exchanges a valid refresh token for a new pair
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the current token pair
	Logout(ctx context.Context, p Principal, accessExpiry time.Time) error
	// Resolve returns the principal's permission set on the current tenant
	Resolve(ctx context.Context, p Principal) (domain.PermissionSet, error)
	// Impersonate switches the session to the target user
	Impersonate(ctx context.Context, actor Principal, targetUserID string) (*domain.User, *TokenPair, error)
	// SwitchBack restores the original actor's session
	SwitchBack(ctx context.Context, current Principal) (*domain.User, *TokenPair, error)
}

type authService struct {
	users       repository.UserRepository
	roles       repository.RoleRepository
	memberships repository.MembershipRepository
	revoker     TokenRevoker
	auditor     *audit.Logger
	jwtCfg      config.JWTConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	memberships repository.MembershipRepository,
	revoker TokenRevoker,
	auditor *audit.Logger,
	jwtCfg config.JWTConfig,
) AuthService {
	return &authService{
		users:       users,
		roles:       roles,
		memberships: memberships,
		revoker:     revoker,
		auditor:     auditor,
		jwtCfg:      jwtCfg,
	}
}

// Login verifies credentials and issues a token pair
func (s *authService) Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issuePair(user, "")
	if err != nil {
		return nil, nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:    user.ID,
		Action:     domain.ActionLogin,
		ObjectType: "user",
		ObjectID:   user.ID,
	})
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != middleware.TokenTypeRefresh {
		return nil, apperr.Unauthorized("token is not a refresh token")
	}
	userID, _ := claims["user_id"].(string)
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Unauthorized("user no longer active")
	}
	impersonatorID, _ := claims["impersonator_id"].(string)
	return s.issuePair(user, impersonatorID)
}

// Logout revokes the current token pair
func (s *authService) Logout(ctx context.Context, p Principal, accessExpiry time.Time) error {
	if p.TokenID != "" && s.revoker != nil {
		s.revoker.Revoke(p.TokenID, accessExpiry)
	}
	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:        p.AuditActorID(),
		ImpersonatorID: p.ImpersonatorID,
		Action:         domain.ActionLogout,
		ObjectType:     "user",
		ObjectID:       p.UserID,
	})
	return nil
}

// Resolve returns the principal's permission set on the current tenant. A
// super admin resolves to the always-true variant regardless of role data; a
// principal without a membership on the tenant resolves to zero permissions,
// which is not an error. API key sessions resolve through the key's own
// scope: a site-bound key holds nothing on any other site, and a key with a
// permission map caps the owner's role at that map.
func (s *authService) Resolve(ctx context.Context, p Principal) (domain.PermissionSet, error) {
	base, err := s.resolveRole(ctx, p)
	if err != nil {
		return nil, err
	}
	if p.KeyTenantID != "" && p.KeyTenantID != p.TenantID {
		return domain.NoPermissions{}, nil
	}
	if p.KeyPermissions != nil {
		return domain.KeyScopedPermissions{Base: base, Allowed: p.KeyPermissions}, nil
	}
	return base, nil
}

func (s *authService) resolveRole(ctx context.Context, p Principal) (domain.PermissionSet, error) {
	if p.SuperAdmin {
		return domain.SuperAdminPermissions{}, nil
	}
	if p.TenantID == "" {
		return domain.NoPermissions{}, nil
	}
	membership, err := s.memberships.Get(ctx, p.TenantID, p.UserID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return domain.NoPermissions{}, nil
	}
	role, err := s.roles.GetByID(ctx, membership.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return domain.NoPermissions{}, nil
	}
	return domain.RolePermissions(role.Permissions), nil
}

// Impersonate switches the session to the target user. The returned tokens
// carry the original actor's id so switching back needs no server-side
// state.
func (s *authService) Impersonate(ctx context.Context, actor Principal, targetUserID string) (*domain.User, *TokenPair, error) {
	if err := s.checkImpersonationRight(ctx, actor); err != nil {
		return nil, nil, err
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, apperr.NotFound("user", targetUserID)
	}
	if target.SuperAdmin && !actor.SuperAdmin {
		return nil, nil, apperr.Forbidden("impersonate_super_admin")
	}
	if !target.SuperAdmin {
		count, err := s.memberships.CountByUser(ctx, target.ID)
		if err != nil {
			return nil, nil, err
		}
		// A session with zero site access is useless and points at a data
		// error upstream.
		if count == 0 {
			return nil, nil, apperr.Validation("user_id", "target user has no site memberships")
		}
	}

	originalActorID := actor.AuditActorID()
	pair, err := s.issuePair(target, originalActorID)
	if err != nil {
		return nil, nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:     originalActorID,
		Action:      domain.ActionImpersonateStart,
		ObjectType:  "user",
		ObjectID:    target.ID,
		ObjectLabel: target.Username,
	})
	return target, pair, nil
}

// SwitchBack restores the original actor's session
func (s *authService) SwitchBack(ctx context.Context, current Principal) (*domain.User, *TokenPair, error) {
	if !current.Impersonating() {
		return nil, nil, apperr.NotImpersonating()
	}
	original, err := s.users.GetByID(ctx, current.ImpersonatorID)
	if err != nil {
		return nil, nil, err
	}
	if original == nil || !original.IsActive {
		return nil, nil, apperr.Unauthorized("original actor no longer active")
	}

	pair, err := s.issuePair(original, "")
	if err != nil {
		return nil, nil, err
	}

	s.auditor.Record(ctx, &domain.ActivityLogEntry{
		ActorID:    original.ID,
		Action:     domain.ActionImpersonateStop,
		ObjectType: "user",
		ObjectID:   current.UserID,
	})
	return original, pair, nil
}

// checkImpersonationRight allows super admins and holders of the admin role
// on the current tenant.
func (s *authService) checkImpersonationRight(ctx context.Context, actor Principal) error {
	if actor.SuperAdmin {
		return nil
	}
	if actor.TenantID == "" {
		return apperr.Forbidden("switch_user")
	}
	membership, err := s.memberships.Get(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperr.Forbidden("switch_user")
	}
	role, err := s.roles.GetByID(ctx, membership.RoleID)
	if err != nil {
		return err
	}
	if role == nil || role.Name != domain.RoleAdmin {
		return apperr.Forbidden("switch_user")
	}
	return nil
}

func (s *authService) issuePair(user *domain.User, impersonatorID string) (*TokenPair, error) {
	now := time.Now()
	access, err := s.signToken(user, impersonatorID, middleware.TokenTypeAccess, now, s.jwtCfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user, impersonatorID, middleware.TokenTypeRefresh, now, s.jwtCfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtCfg.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *authService) signToken(user *domain.User, impersonatorID, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     user.ID,
		"super_admin": user.SuperAdmin,
		"typ":         typ,
		"jti":         uuid.New().String(),
		"iss":         s.jwtCfg.Issuer,
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}
	if impersonatorID != "" {
		claims["impersonator_id"] = impersonatorID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// parseToken validates signature and expiry and returns the claims.
func (s *authService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, middleware.ErrInvalidToken
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Unauthorized("invalid token claims")
	}
	return claims, nil
}
