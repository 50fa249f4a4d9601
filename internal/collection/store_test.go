package collection

import (
	"reflect"
	"testing"

	"github.com/commons-systems/photosync/internal/photo"
)

func testPhotos(ids ...int64) []photo.Photo {
	photos := make([]photo.Photo, 0, len(ids))
	for _, id := range ids {
		photos = append(photos, photo.Photo{
			ID:      id,
			BestURL: "best",
			Sizes:   []photo.Size{{Tier: "x", URL: "best", Width: 604}},
		})
	}
	return photos
}

func ids(photos []photo.Photo) []int64 {
	out := make([]int64, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.ID)
	}
	return out
}

// assertSelectionSubset fails when a selected id is not in the collection.
func assertSelectionSubset(t *testing.T, s *Store) {
	t.Helper()
	inCollection := map[int64]bool{}
	for _, p := range s.Photos() {
		inCollection[p.ID] = true
	}
	for _, id := range s.SelectedIDs() {
		if !inCollection[id] {
			t.Errorf("selected id %d not in collection", id)
		}
	}
}

func TestReplaceClearsSelection(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2, 3))
	s.SelectAll()

	s.Replace(testPhotos(4, 5))

	if got := s.SelectedCount(); got != 0 {
		t.Errorf("SelectedCount after replace = %d; want 0", got)
	}
	if got := ids(s.Photos()); !reflect.DeepEqual(got, []int64{4, 5}) {
		t.Errorf("Photos after replace = %v; want [4 5]", got)
	}
	assertSelectionSubset(t, s)
}

func TestReplaceDeduplicatesInput(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2, 1, 3, 2))

	if got := ids(s.Photos()); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("Photos = %v; want [1 2 3]", got)
	}
}

func TestMergeDedupAndOrder(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))

	added := s.Merge(testPhotos(2, 3, 1, 4))
	if added != 2 {
		t.Errorf("Merge added = %d; want 2", added)
	}
	if got := ids(s.Photos()); !reflect.DeepEqual(got, []int64{1, 2, 3, 4}) {
		t.Errorf("Photos = %v; want [1 2 3 4]", got)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))

	s.Merge(testPhotos(3, 4))
	once := ids(s.Photos())
	s.Merge(testPhotos(3, 4))
	twice := ids(s.Photos())

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent: %v vs %v", once, twice)
	}
}

func TestMergePreservesSelection(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))
	on := true
	s.ToggleSelect(1, &on)

	s.Merge(testPhotos(3))

	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("SelectedIDs = %v; want [1]", got)
	}
	assertSelectionSubset(t, s)
}

func TestToggleSelect(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))

	if !s.ToggleSelect(1, nil) {
		t.Fatal("ToggleSelect(1) = false; want true")
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("SelectedIDs = %v; want [1]", got)
	}

	// Toggle again deselects.
	s.ToggleSelect(1, nil)
	if got := s.SelectedCount(); got != 0 {
		t.Errorf("SelectedCount = %d; want 0", got)
	}

	// Force on twice stays selected.
	on := true
	s.ToggleSelect(2, &on)
	s.ToggleSelect(2, &on)
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []int64{2}) {
		t.Errorf("SelectedIDs = %v; want [2]", got)
	}

	// Unknown id is a no-op.
	if s.ToggleSelect(99, nil) {
		t.Error("ToggleSelect(99) = true; want false")
	}
	assertSelectionSubset(t, s)
}

func TestRemovePrunesSelection(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2, 3))
	s.SelectAll()

	if !s.Remove(2) {
		t.Fatal("Remove(2) = false; want true")
	}
	if got := ids(s.Photos()); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("Photos = %v; want [1 3]", got)
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Errorf("SelectedIDs = %v; want [1 3]", got)
	}
	assertSelectionSubset(t, s)
}

func TestSnapshotSelectedInCollectionOrder(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(5, 3, 8, 1))
	on := true
	s.ToggleSelect(1, &on)
	s.ToggleSelect(3, &on)

	if got := ids(s.SnapshotSelected()); !reflect.DeepEqual(got, []int64{3, 1}) {
		t.Errorf("SnapshotSelected = %v; want [3 1]", got)
	}
}

func TestSelectionInvariantUnderMixedOperations(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2, 3))
	s.SelectAll()
	s.Merge(testPhotos(4, 5))
	s.ToggleSelect(4, nil)
	s.Remove(1)
	s.Replace(testPhotos(7, 8))
	s.ToggleSelect(7, nil)
	s.ClearSelection()
	s.Merge(testPhotos(9))
	s.SelectAll()

	assertSelectionSubset(t, s)
	if got := s.SelectedCount(); got != 3 {
		t.Errorf("SelectedCount = %d; want 3", got)
	}
}

func TestClearResetsEverything(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))
	s.SelectAll()
	s.Clear()

	if s.Len() != 0 || s.SelectedCount() != 0 {
		t.Errorf("Clear left %d photos, %d selected", s.Len(), s.SelectedCount())
	}
}

func TestGet(t *testing.T) {
	s := NewStore()
	s.Replace(testPhotos(1, 2))

	if p, ok := s.Get(2); !ok || p.ID != 2 {
		t.Errorf("Get(2) = %v, %v; want photo 2, true", p.ID, ok)
	}
	if _, ok := s.Get(99); ok {
		t.Error("Get(99) = true; want false")
	}
}
