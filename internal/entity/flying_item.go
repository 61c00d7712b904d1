package entity

import (
	"encoding/json"

	"github.com/annel0/alien-planet/internal/vec"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// FlyingItem - выпавший ресурс, который игрок может подобрать
type FlyingItem struct {
	Pos        vec.Vec2Float
	Velocity   vec.Vec2Float
	Kind       tile.Kind
	IsGrounded bool
	Rotation   float64 // градусы, только для отрисовки
	state      State
}

// NewFlyingItem создаёт падающий предмет
func NewFlyingItem(pos, velocity vec.Vec2Float, kind tile.Kind, rotation float64) *FlyingItem {
	return &FlyingItem{
		Pos:      pos,
		Velocity: velocity,
		Kind:     kind,
		Rotation: rotation,
		state:    Falling,
	}
}

// State возвращает имя текущего состояния
func (it *FlyingItem) State() string {
	if it.state == nil {
		return ""
	}
	return it.state.Name()
}

// IsConsumed сообщает, что предмет подобран и подлежит удалению
func (it *FlyingItem) IsConsumed() bool {
	return it.state == Consumed
}

func (it *FlyingItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Kind       string  `json:"kind"`
		State      string  `json:"state"`
		IsGrounded bool    `json:"is_grounded"`
		Rotation   float64 `json:"rotation"`
	}{it.Pos.X, it.Pos.Y, it.Kind.String(), it.State(), it.IsGrounded, it.Rotation})
}

// FlyingItems хранит предметы в порядке появления
type FlyingItems struct {
	items []*FlyingItem
}

func NewFlyingItems() *FlyingItems {
	return &FlyingItems{}
}

// Spawn добавляет предмет
func (f *FlyingItems) Spawn(item *FlyingItem) {
	f.items = append(f.items, item)
}

// Update обновляет предметы от новых к старым и удаляет подобранные одним проходом.
// Возвращает число подобранных за кадр предметов.
func (f *FlyingItems) Update(env *ItemEnv) int {
	for i := len(f.items) - 1; i >= 0; i-- {
		f.items[i].Update(env)
	}

	kept := f.items[:0]
	collected := 0
	for _, it := range f.items {
		if it.IsConsumed() {
			collected++
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(f.items); i++ {
		f.items[i] = nil
	}
	f.items = kept
	return collected
}

// List возвращает предметы; срез нельзя изменять
func (f *FlyingItems) List() []*FlyingItem {
	return f.items
}

func (f *FlyingItems) Len() int {
	return len(f.items)
}

func (f *FlyingItems) Reset() {
	f.items = nil
}
