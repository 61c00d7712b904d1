package game

import (
	"sort"

	"github.com/annel0/alien-planet/internal/world/tile"
)

// Inventory - собранные ресурсы по видам тайлов
type Inventory struct {
	counts map[tile.Kind]int
}

func NewInventory() *Inventory {
	return &Inventory{counts: make(map[tile.Kind]int)}
}

func (inv *Inventory) Add(kind tile.Kind) {
	inv.counts[kind]++
}

func (inv *Inventory) Count(kind tile.Kind) int {
	return inv.counts[kind]
}

// Total - общее число предметов
func (inv *Inventory) Total() int {
	total := 0
	for _, n := range inv.counts {
		total += n
	}
	return total
}

// Snapshot возвращает копию по именам видов
func (inv *Inventory) Snapshot() map[string]int {
	out := make(map[string]int, len(inv.counts))
	for k, n := range inv.counts {
		out[k.String()] = n
	}
	return out
}

// Kinds - собранные виды в порядке перечисления
func (inv *Inventory) Kinds() []tile.Kind {
	kinds := make([]tile.Kind, 0, len(inv.counts))
	for k := range inv.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Restore заменяет содержимое снимком; неизвестные имена пропускаются
func (inv *Inventory) Restore(snapshot map[string]int) {
	inv.Reset()
	for name, n := range snapshot {
		if k, err := tile.ParseKind(name); err == nil && n > 0 {
			inv.counts[k] = n
		}
	}
}

func (inv *Inventory) Reset() {
	inv.counts = make(map[tile.Kind]int)
}
