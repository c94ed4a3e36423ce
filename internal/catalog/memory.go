package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used for tests, local development and
// the seeded demo catalog.
type MemoryStore struct {
	mu     sync.RWMutex
	assets []HairstyleAsset
	nextID int64
	now    func() time.Time

	// Error injection
	QueryError   error
	ExcerptError error
	ListError    error
	GetError     error
	InsertError  error
	ExistsError  error
}

// NewMemoryStore creates a store preloaded with assets. Assets without an ID get one assigned.
func NewMemoryStore(assets ...HairstyleAsset) *MemoryStore {
	m := &MemoryStore{nextID: 1, now: time.Now}
	for i := range assets {
		a := assets[i]
		_ = m.Insert(context.Background(), &a)
	}
	return m
}

// Insert appends the asset, assigning an ID when it has none.
func (m *MemoryStore) Insert(_ context.Context, asset *HairstyleAsset) error {
	if m.InsertError != nil {
		return NewStoreError("insert", m.InsertError)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if asset.ID == 0 {
		asset.ID = m.nextID
	}
	if asset.ID >= m.nextID {
		m.nextID = asset.ID + 1
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = m.now()
	}
	m.assets = append(m.assets, cloneAsset(*asset))
	return nil
}

// ExistsByNameOrURL reports whether a stored asset shares the name or image URL.
func (m *MemoryStore) ExistsByNameOrURL(_ context.Context, name, imageURL string) (bool, error) {
	if m.ExistsError != nil {
		return false, NewStoreError("exists", m.ExistsError)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.assets {
		if (name != "" && a.Name == name) || (imageURL != "" && a.ImageURL == imageURL) {
			return true, nil
		}
	}
	return false, nil
}

// QueryByShapeAndGender matches shapes case-insensitively against face_shape_match.
func (m *MemoryStore) QueryByShapeAndGender(_ context.Context, shapes []string, genders []Gender) ([]HairstyleAsset, error) {
	if m.QueryError != nil {
		return nil, NewStoreError("query", m.QueryError)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []HairstyleAsset
	for _, a := range m.assets {
		if !slices.Contains(genders, a.Gender) {
			continue
		}
		if !overlaps(a.FaceShapeMatch, shapes) {
			continue
		}
		out = append(out, cloneAsset(a))
	}
	return out, nil
}

// CatalogExcerpt returns the first limit assets in insertion order.
func (m *MemoryStore) CatalogExcerpt(_ context.Context, limit int) ([]HairstyleAsset, error) {
	if m.ExcerptError != nil {
		return nil, NewStoreError("excerpt", m.ExcerptError)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.assets))
	if n <= 0 {
		return nil, nil
	}
	out := make([]HairstyleAsset, 0, n)
	for _, a := range m.assets[:n] {
		out = append(out, cloneAsset(a))
	}
	return out, nil
}

// ListAll returns every asset, newest first.
func (m *MemoryStore) ListAll(_ context.Context) ([]HairstyleAsset, error) {
	if m.ListError != nil {
		return nil, NewStoreError("list", m.ListError)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HairstyleAsset, 0, len(m.assets))
	for i := len(m.assets) - 1; i >= 0; i-- {
		out = append(out, cloneAsset(m.assets[i]))
	}
	return out, nil
}

// Get returns the asset with id, or nil.
func (m *MemoryStore) Get(_ context.Context, id int64) (*HairstyleAsset, error) {
	if m.GetError != nil {
		return nil, NewStoreError("get", m.GetError)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.assets {
		if a.ID == id {
			c := cloneAsset(a)
			return &c, nil
		}
	}
	return nil, nil
}

// Len returns the number of stored assets.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assets)
}

func overlaps(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func cloneAsset(a HairstyleAsset) HairstyleAsset {
	a.Tags = slices.Clone(a.Tags)
	a.FaceShapeMatch = slices.Clone(a.FaceShapeMatch)
	return a
}
