package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/schoolhub/internal/domain/school"
)

type SchoolsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]school.School
}

func NewSchoolsRepo() *SchoolsRepo {
	return &SchoolsRepo{
		items: make(map[int64]school.School),
	}
}

func (r *SchoolsRepo) Create(ctx context.Context, req school.CreateSchoolRequest) (school.School, error) {
	s := school.NewFromCreateRequest(req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(0, s.Name) {
		return school.School{}, school.ErrNameTaken
	}

	r.nextID++
	s.ID = r.nextID
	r.items[s.ID] = s

	return s, nil
}

func (r *SchoolsRepo) GetByID(ctx context.Context, id int64) (school.School, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]
	if !ok {
		return school.School{}, school.ErrNotFound
	}

	return s, nil
}

func (r *SchoolsRepo) List(ctx context.Context, filter school.ListSchoolsFilter) ([]school.School, int, error) {
	r.mu.RLock()
	all := make([]school.School, 0, len(r.items))
	for _, s := range r.items {
		all = append(all, s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return page(all, filter.Offset, filter.Limit), len(all), nil
}

func (r *SchoolsRepo) Update(ctx context.Context, id int64, patch school.Patch) (school.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok {
		return school.School{}, school.ErrNotFound
	}

	patch.Apply(&s)

	if r.nameTakenLocked(id, s.Name) {
		return school.School{}, school.ErrNameTaken
	}

	s.UpdatedAt = time.Now().UTC()
	r.items[id] = s

	return s, nil
}

func (r *SchoolsRepo) Delete(ctx context.Context, id int64) (school.School, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.items[id]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	delete(r.items, id)

	return s, nil
}

func (r *SchoolsRepo) nameTakenLocked(selfID int64, name string) bool {
	for id, s := range r.items {
		if id != selfID && s.Name == name {
			return true
		}
	}

	return false
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}

	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return all[offset:end]
}
