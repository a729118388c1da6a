package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
)

// memStore - общая память для фейковых репозиториев сервисного слоя.
type memStore struct {
	mu        sync.Mutex
	seq       uint64
	teams     map[uint64]entities.Team
	users     map[uint64]entities.User
	equipment map[uint64]entities.Equipment
	requests  map[uint64]entities.MaintenanceRequest
	history   []entities.RequestHistory
}

func newMemStore() *memStore {
	return &memStore{
		teams:     make(map[uint64]entities.Team),
		users:     make(map[uint64]entities.User),
		equipment: make(map[uint64]entities.Equipment),
		requests:  make(map[uint64]entities.MaintenanceRequest),
	}
}

func (m *memStore) nextID() uint64 {
	m.seq++
	return m.seq
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// --- заявки ---

type fakeRequestRepo struct{ m *memStore }

var _ repositories.MaintenanceRequestRepositoryInterface = (*fakeRequestRepo)(nil)

func (r *fakeRequestRepo) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := *req
	out.ID = r.m.nextID()
	r.m.requests[out.ID] = out
	return &out, nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	req, ok := r.m.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeRequestRepo) UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.requests[req.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *req
	r.m.requests[req.ID] = out
	return &out, nil
}

func (r *fakeRequestRepo) List(ctx context.Context, scope authz.Scope, filter dto.RequestFilter) ([]entities.MaintenanceRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []entities.MaintenanceRequest{}
	for _, req := range r.m.requests {
		req := req
		if !scope.Allows(&req) || !matchesFilter(req, filter) {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func matchesFilter(req entities.MaintenanceRequest, f dto.RequestFilter) bool {
	if f.Type != "" && req.Type != f.Type {
		return false
	}
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.TeamID != nil && (!req.TeamID.Valid || req.TeamID.Uint64 != *f.TeamID) {
		return false
	}
	if f.EquipmentID != nil && req.EquipmentID != *f.EquipmentID {
		return false
	}
	if f.ScheduledFrom != nil && (!req.ScheduledAt.Valid || req.ScheduledAt.Time.Before(*f.ScheduledFrom)) {
		return false
	}
	if f.ScheduledTo != nil && (!req.ScheduledAt.Valid || req.ScheduledAt.Time.After(*f.ScheduledTo)) {
		return false
	}
	return true
}

func (r *fakeRequestRepo) Delete(ctx context.Context, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.requests[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.m.requests, id)
	return nil
}

func (r *fakeRequestRepo) CountOpenByEquipment(ctx context.Context, equipmentIDs []uint64) (map[uint64]int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	wanted := make(map[uint64]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		wanted[id] = true
	}
	out := make(map[uint64]int)
	for _, req := range r.m.requests {
		if wanted[req.EquipmentID] && !req.Status.IsTerminal() {
			out[req.EquipmentID]++
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) Counters(ctx context.Context, scope authz.Scope, now time.Time) (*repositories.RequestCounters, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := &repositories.RequestCounters{}
	for _, req := range r.m.requests {
		req := req
		if !scope.Allows(&req) {
			continue
		}
		out.Total++
		if req.Status == constants.StatusInProgress {
			out.InProgress++
		}
		if req.DueAt.Valid && req.DueAt.Time.Before(now) && !req.Status.IsTerminal() {
			out.Overdue++
		}
	}
	return out, nil
}

// --- оборудование ---

type fakeEquipmentRepo struct{ m *memStore }

var _ repositories.EquipmentRepositoryInterface = (*fakeEquipmentRepo)(nil)

func (r *fakeEquipmentRepo) Create(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.equipment {
		if existing.Code == e.Code {
			return nil, apperrors.ErrConflict
		}
	}
	out := *e
	out.ID = r.m.nextID()
	r.m.equipment[out.ID] = out
	return &out, nil
}

func (r *fakeEquipmentRepo) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *fakeEquipmentRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[uint64]entities.Equipment)
	for _, id := range ids {
		if e, ok := r.m.equipment[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (r *fakeEquipmentRepo) List(ctx context.Context) ([]entities.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]entities.Equipment, 0, len(r.m.equipment))
	for _, e := range r.m.equipment {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEquipmentRepo) Update(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.equipment[e.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *e
	r.m.equipment[e.ID] = out
	return &out, nil
}

func (r *fakeEquipmentRepo) Delete(ctx context.Context, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.equipment[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.m.equipment, id)
	return nil
}

func (r *fakeEquipmentRepo) Count(ctx context.Context) (uint64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return uint64(len(r.m.equipment)), nil
}

func (r *fakeEquipmentRepo) MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.equipment[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.IsScrapped = true
	r.m.equipment[id] = e
	return nil
}

func (r *fakeEquipmentRepo) SetLastMaintenanceInTx(ctx context.Context, tx pgx.Tx, id uint64, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.equipment[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	e.LastMaintenanceAt = null.TimeFrom(at)
	r.m.equipment[id] = e
	return nil
}

// --- команды ---

type fakeTeamRepo struct{ m *memStore }

var _ repositories.TeamRepositoryInterface = (*fakeTeamRepo)(nil)

func (r *fakeTeamRepo) Create(ctx context.Context, t *entities.Team) (*entities.Team, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := *t
	out.ID = r.m.nextID()
	r.m.teams[out.ID] = out
	return &out, nil
}

func (r *fakeTeamRepo) FindByID(ctx context.Context, id uint64) (*entities.Team, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.teams[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTeamRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Team, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[uint64]entities.Team)
	for _, id := range ids {
		if t, ok := r.m.teams[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]entities.Team, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]entities.Team, 0, len(r.m.teams))
	for _, t := range r.m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, t *entities.Team) (*entities.Team, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.teams[t.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *t
	r.m.teams[t.ID] = out
	return &out, nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.teams[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.m.teams, id)
	return nil
}

// --- пользователи ---

type fakeUserRepo struct{ m *memStore }

var _ repositories.UserRepositoryInterface = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) Create(ctx context.Context, u *entities.User) (*entities.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, apperrors.ErrConflict
		}
	}
	out := *u
	out.ID = r.m.nextID()
	r.m.users[out.ID] = out
	return &out, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make(map[uint64]entities.User)
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]entities.User, error) {
	return r.filter(func(entities.User) bool { return true }), nil
}

func (r *fakeUserRepo) ListByTeam(ctx context.Context, teamID uint64) ([]entities.User, error) {
	return r.filter(func(u entities.User) bool { return u.TeamID.Valid && u.TeamID.Uint64 == teamID }), nil
}

func (r *fakeUserRepo) filter(keep func(entities.User) bool) []entities.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []entities.User{}
	for _, u := range r.m.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeUserRepo) Update(ctx context.Context, u *entities.User) (*entities.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *u
	r.m.users[u.ID] = out
	return &out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

// --- история ---

type fakeHistoryRepo struct{ m *memStore }

var _ repositories.RequestHistoryRepositoryInterface = (*fakeHistoryRepo)(nil)

func (r *fakeHistoryRepo) CreateInTx(ctx context.Context, tx pgx.Tx, events []entities.RequestHistory) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range events {
		e.ID = r.m.nextID()
		e.CreatedAt = time.Now()
		r.m.history = append(r.m.history, e)
	}
	return nil
}

func (r *fakeHistoryRepo) FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []entities.RequestHistory{}
	for _, e := range r.m.history {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- кеш ---

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

var _ repositories.CacheRepositoryInterface = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string), ttl: make(map[string]time.Duration)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case string:
		c.data[key] = v
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = "?"
	}
	c.ttl[key] = expiration
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttl, k)
	}
	return nil
}

func (c *fakeCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	if n == 1 {
		c.ttl[key] = ttl
	}
	return n, nil
}
