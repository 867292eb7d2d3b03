package domain

import (
	"sort"
	"sync"
)

// Favorites keeps the favorited album and singer ids for the lifetime of the
// process.
type Favorites struct {
	albums  map[int64]struct{}
	singers map[int64]struct{}
	mux     sync.RWMutex
}

// NewFavorites creates empty favorite sets
func NewFavorites() *Favorites {
	return &Favorites{
		albums:  make(map[int64]struct{}),
		singers: make(map[int64]struct{}),
	}
}

// ToggleAlbum flips the album id and reports whether it is now a favorite
func (f *Favorites) ToggleAlbum(id int64) bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	return toggle(f.albums, id)
}

// ToggleSinger flips the singer id and reports whether it is now a favorite
func (f *Favorites) ToggleSinger(id int64) bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	return toggle(f.singers, id)
}

// IsAlbum reports whether the album id is a favorite
func (f *Favorites) IsAlbum(id int64) bool {
	f.mux.RLock()
	defer f.mux.RUnlock()
	_, ok := f.albums[id]
	return ok
}

// IsSinger reports whether the singer id is a favorite
func (f *Favorites) IsSinger(id int64) bool {
	f.mux.RLock()
	defer f.mux.RUnlock()
	_, ok := f.singers[id]
	return ok
}

// AlbumIDs returns the favorited album ids in ascending order
func (f *Favorites) AlbumIDs() []int64 {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return sortedIDs(f.albums)
}

// SingerIDs returns the favorited singer ids in ascending order
func (f *Favorites) SingerIDs() []int64 {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return sortedIDs(f.singers)
}

func toggle(set map[int64]struct{}, id int64) bool {
	if _, ok := set[id]; ok {
		delete(set, id)
		return false
	}
	set[id] = struct{}{}
	return true
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
