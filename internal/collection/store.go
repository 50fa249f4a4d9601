// Package collection holds the in-memory photo collection and selection set
// for one browsing session. The store is the single mutable shared resource
// in the core: all mutation goes through its methods, and every read returns
// a consistent snapshot.
package collection

import (
	"sync"

	"github.com/commons-systems/photosync/internal/photo"
)

// Store holds the current photos (insertion order = display order, no
// duplicate ids) and the selected id set. Invariant after every mutation:
// selected ids are a subset of the current photo ids.
type Store struct {
	mu       sync.RWMutex
	photos   []photo.Photo
	index    map[int64]struct{}
	selected map[int64]struct{}
}

// NewStore creates an empty collection store.
func NewStore() *Store {
	return &Store{
		index:    make(map[int64]struct{}),
		selected: make(map[int64]struct{}),
	}
}

// Replace sets the collection to the given photos (deduplicated by id, first
// occurrence wins) and clears the selection.
func (s *Store) Replace(photos []photo.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photos = s.photos[:0]
	s.index = make(map[int64]struct{}, len(photos))
	s.selected = make(map[int64]struct{})
	for _, p := range photos {
		if _, ok := s.index[p.ID]; ok {
			continue
		}
		s.index[p.ID] = struct{}{}
		s.photos = append(s.photos, p)
	}
}

// Merge appends photos whose id is not already present. Existing photos keep
// their position; new unique photos follow in input order. Returns the number
// of photos added.
func (s *Store) Merge(photos []photo.Photo) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range photos {
		if _, ok := s.index[p.ID]; ok {
			continue
		}
		s.index[p.ID] = struct{}{}
		s.photos = append(s.photos, p)
		added++
	}
	return added
}

// Remove drops a photo from the collection and prunes it from the selection.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	delete(s.selected, id)
	for i, p := range s.photos {
		if p.ID == id {
			s.photos = append(s.photos[:i], s.photos[i+1:]...)
			break
		}
	}
	return true
}

// ToggleSelect flips the selection state of id, or forces it when force is
// non-nil. No-op (returns false) when id is not in the collection.
func (s *Store) ToggleSelect(id int64, force *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false
	}

	_, isSelected := s.selected[id]
	want := !isSelected
	if force != nil {
		want = *force
	}
	if want {
		s.selected[id] = struct{}{}
	} else {
		delete(s.selected, id)
	}
	return true
}

// SelectAll selects every photo in the collection.
func (s *Store) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.index {
		s.selected[id] = struct{}{}
	}
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[int64]struct{})
}

// Clear resets the store to its initial empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = nil
	s.index = make(map[int64]struct{})
	s.selected = make(map[int64]struct{})
}

// Photos returns a copy of the collection in display order.
func (s *Store) Photos() []photo.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]photo.Photo, len(s.photos))
	copy(out, s.photos)
	return out
}

// SnapshotSelected returns the selected photos in collection order.
func (s *Store) SnapshotSelected() []photo.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]photo.Photo, 0, len(s.selected))
	for _, p := range s.photos {
		if _, ok := s.selected[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SelectedIDs returns the selected ids in collection order.
func (s *Store) SelectedIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.selected))
	for _, p := range s.photos {
		if _, ok := s.selected[p.ID]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

// Get returns the photo with the given id.
func (s *Store) Get(id int64) (photo.Photo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.index[id]; !ok {
		return photo.Photo{}, false
	}
	for _, p := range s.photos {
		if p.ID == id {
			return p, true
		}
	}
	return photo.Photo{}, false
}

// Len returns the number of photos in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// SelectedCount returns the number of selected photos.
func (s *Store) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}
