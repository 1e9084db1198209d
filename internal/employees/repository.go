package employees

import (
	"context"
	"errors"
	"sync"

	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository persists employees together with their referenced skill-level
// documents. Reads return employees with the skill populated.
type Repository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, e *models.Employee, skill *models.SkillLevel) (string, error)
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
	// Update rewrites the employee fields and its skill document.
	// Returns ErrDuplicateEmail when the new email collides with another record.
	Update(ctx context.Context, e *models.Employee, skill *models.SkillLevel) error
	// Delete removes the employee and its skill document.
	Delete(ctx context.Context, id string) error
}

// MemoryRepository is the in-memory implementation used by unit tests and
// by the server when MongoDB is unavailable (degraded mode).
type MemoryRepository struct {
	mu     sync.RWMutex
	store  map[string]*models.Employee
	skills map[string]*models.SkillLevel
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		store:  make(map[string]*models.Employee),
		skills: make(map[string]*models.SkillLevel),
	}
}

func (m *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.store {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) Create(ctx context.Context, e *models.Employee, skill *models.SkillLevel) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	skill.ID = primitive.NewObjectID().Hex()
	e.ID = primitive.NewObjectID().Hex()
	e.SkillID = skill.ID
	m.skills[skill.ID] = skill
	m.store[e.ID] = e
	return e.ID, nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Employee, 0, len(m.store))
	for _, e := range m.store {
		cp := *e
		if s, ok := m.skills[e.SkillID]; ok {
			sc := *s
			cp.Skill = &sc
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	if s, ok := m.skills[e.SkillID]; ok {
		sc := *s
		cp.Skill = &sc
	}
	return &cp, nil
}

func (m *MemoryRepository) Update(ctx context.Context, e *models.Employee, skill *models.SkillLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[e.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.store {
		if id != e.ID && other.Email == e.Email {
			return ErrDuplicateEmail
		}
	}
	e.SkillID = cur.SkillID
	skill.ID = cur.SkillID
	m.skills[cur.SkillID] = skill
	m.store[e.ID] = e
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.skills, e.SkillID)
	delete(m.store, id)
	return nil
}
