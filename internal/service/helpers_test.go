package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/grandslambert/backend-cms/internal/audit"
	"github.com/grandslambert/backend-cms/internal/contenttype"
	"github.com/grandslambert/backend-cms/internal/domain"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/apperr"
)

type allowAllTenants struct{}

func (allowAllTenants) CheckTenant(ctx context.Context, tenantID string) error { return nil }

// memoryAuditStore collects activity entries in memory for assertions.
type memoryAuditStore struct {
	mu      sync.Mutex
	entries []*domain.ActivityLogEntry
}

func (s *memoryAuditStore) Insert(ctx context.Context, entry *domain.ActivityLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryAuditStore) last() *domain.ActivityLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1]
}

type testEnv struct {
	stores     *tenantstore.Registry
	types      *contenttype.Registry
	auditStore *memoryAuditStore
	auditor    *audit.Logger
}

// newTestEnv builds a tenant store over the in-memory strategy, provisioned
// with the built-in content types for the given tenant.
func newTestEnv(t *testing.T, tenantID string) *testEnv {
	t.Helper()
	stores := tenantstore.NewRegistry(tenantstore.NewMemoryStrategy(), allowAllTenants{})
	ctx := context.Background()
	if err := stores.Provision(ctx, tenantID); err != nil {
		t.Fatalf("provision: %v", err)
	}
	seedContentTypes(t, ctx, stores, tenantID)

	auditStore := &memoryAuditStore{}
	return &testEnv{
		stores:     stores,
		types:      contenttype.NewRegistry(stores),
		auditStore: auditStore,
		auditor:    audit.NewLogger(auditStore),
	}
}

func seedContentTypes(t *testing.T, ctx context.Context, stores *tenantstore.Registry, tenantID string) {
	t.Helper()
	types, err := stores.Collection(ctx, tenantID, tenantstore.KindPostTypes)
	if err != nil {
		t.Fatalf("post types collection: %v", err)
	}
	for _, pt := range domain.DefaultPostTypes() {
		doc, err := tenantstore.EncodeDocument(pt)
		if err != nil {
			t.Fatalf("encode post type: %v", err)
		}
		if _, err := types.Insert(ctx, doc); err != nil {
			t.Fatalf("seed post type %s: %v", pt.Name, err)
		}
	}
	taxonomies, err := stores.Collection(ctx, tenantID, tenantstore.KindTaxonomies)
	if err != nil {
		t.Fatalf("taxonomies collection: %v", err)
	}
	for _, tx := range domain.DefaultTaxonomies() {
		doc, err := tenantstore.EncodeDocument(tx)
		if err != nil {
			t.Fatalf("encode taxonomy: %v", err)
		}
		if _, err := taxonomies.Insert(ctx, doc); err != nil {
			t.Fatalf("seed taxonomy %s: %v", tx.Name, err)
		}
	}
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return apperr.Conflict("username already in use")
		}
		if existing.Email == user.Email {
			return apperr.Conflict("email already in use")
		}
	}
	if user.ID == "" {
		r.seq++
		user.ID = "user-" + strconv.Itoa(r.seq)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, page, limit int, isActive *bool, search string) ([]*domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*domain.User
	for _, id := range ids {
		user := r.users[id]
		if isActive != nil && user.IsActive != *isActive {
			continue
		}
		copied := *user
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperr.NotFound("user", user.ID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// fakeRoleRepo is an in-memory RoleRepository.
type fakeRoleRepo struct {
	mu    sync.Mutex
	seq   int
	roles map[string]*domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *fakeRoleRepo) Create(ctx context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role.ID == "" {
		r.seq++
		role.ID = "role-" + strconv.Itoa(r.seq)
	}
	copied := *role
	r.roles[role.ID] = &copied
	return nil
}

func (r *fakeRoleRepo) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, nil
	}
	copied := *role
	return &copied, nil
}

func (r *fakeRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			copied := *role
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.roles))
	for id := range r.roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.Role, 0, len(ids))
	for _, id := range ids {
		copied := *r.roles[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRoleRepo) Update(ctx context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.ID]; !ok {
		return apperr.NotFound("role", role.ID)
	}
	copied := *role
	r.roles[role.ID] = &copied
	return nil
}

func (r *fakeRoleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, id)
	return nil
}

type membershipKey struct {
	tenantID string
	userID   string
}

// fakeMembershipRepo is an in-memory MembershipRepository.
type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships map[membershipKey]*domain.SiteMembership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: make(map[membershipKey]*domain.SiteMembership)}
}

func (r *fakeMembershipRepo) Create(ctx context.Context, m *domain.SiteMembership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey{tenantID: m.TenantID, userID: m.UserID}
	if _, ok := r.memberships[key]; ok {
		return apperr.Conflict("user is already a member of this site")
	}
	copied := *m
	r.memberships[key] = &copied
	return nil
}

func (r *fakeMembershipRepo) Get(ctx context.Context, tenantID, userID string) (*domain.SiteMembership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipKey{tenantID: tenantID, userID: userID}]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMembershipRepo) ListByUser(ctx context.Context, userID string) ([]*domain.SiteMembership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SiteMembership
	for _, m := range r.memberships {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.SiteMembership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SiteMembership
	for _, m := range r.memberships {
		if m.TenantID == tenantID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) UpdateRole(ctx context.Context, tenantID, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.memberships[membershipKey{tenantID: tenantID, userID: userID}]
	if !ok {
		return apperr.NotFound("membership", tenantID+"/"+userID)
	}
	m.RoleID = roleID
	return nil
}

func (r *fakeMembershipRepo) Delete(ctx context.Context, tenantID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memberships, membershipKey{tenantID: tenantID, userID: userID})
	return nil
}

func (r *fakeMembershipRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.memberships {
		if m.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeRevoker records revoked token ids.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Time)}
}

func (r *fakeRevoker) Revoke(jti string, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = expiresAt
}
