package world

import (
	"sort"

	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// DiffStore хранит тайлы, отличающиеся от процедурного рельефа.
// Наличие ключа означает, что клетка изменялась; отсутствие: что её
// состояние берётся из генератора. Записи живут до рестарта сессии.
type DiffStore struct {
	tiles map[uint64]tile.Tile
}

// DiffEntry - запись хранилища для сериализации
type DiffEntry struct {
	Pos  vec.Vec2  `json:"pos"`
	Tile tile.Tile `json:"tile"`
}

func NewDiffStore() *DiffStore {
	return &DiffStore{tiles: make(map[uint64]tile.Tile)}
}

// Get возвращает сохранённый снимок тайла как есть, без схлопывания в Empty
func (d *DiffStore) Get(pos vec.Vec2) (tile.Tile, bool) {
	t, ok := d.tiles[pos.Key()]
	return t, ok
}

func (d *DiffStore) Has(pos vec.Vec2) bool {
	_, ok := d.tiles[pos.Key()]
	return ok
}

// Set записывает снимок тайла
func (d *DiffStore) Set(pos vec.Vec2, t tile.Tile) {
	t.Clamp()
	d.tiles[pos.Key()] = t
}

func (d *DiffStore) Len() int {
	return len(d.tiles)
}

// Reset очищает хранилище при рестарте игры
func (d *DiffStore) Reset() {
	d.tiles = make(map[uint64]tile.Tile)
}

// Entries возвращает все записи, упорядоченные по ключу
func (d *DiffStore) Entries() []DiffEntry {
	keys := make([]uint64, 0, len(d.tiles))
	for k := range d.tiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]DiffEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, DiffEntry{Pos: vec.FromKey(k), Tile: d.tiles[k]})
	}
	return entries
}
