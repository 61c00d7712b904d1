// Package tile описывает виды тайлов мира и их статические свойства.
package tile

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind - вид тайла. Порядок значений фиксирован: сравнения вида
// k > Empty и k > Indestructible используются как признаки твёрдости и разрушаемости.
type Kind uint8

const (
	Empty Kind = iota
	Indestructible
	Diamond
	Sand
	Dirt
	Brick
	Soil
	PowerBlock
	WormChunk
	Vegetation
	CityWall
	CityFloor

	kindCount
)

// Properties - статические свойства вида тайла
type Properties struct {
	Name  string
	Color string
	MaxHP float64
	Sides int // число граней спрайта предмета, 0: круг
}

var properties = [kindCount]Properties{
	Empty:          {Name: "Empty"},
	Indestructible: {Name: "Indestructible", Color: "#000000", MaxHP: math.Inf(1)},
	Diamond:        {Name: "Diamond", Color: "#00b4d8", MaxHP: 800, Sides: 6},
	Sand:           {Name: "Sand", Color: "#d2b48c", MaxHP: 80, Sides: 0},
	Dirt:           {Name: "Dirt", Color: "#bc6c25", MaxHP: 120, Sides: 3},
	Brick:          {Name: "Brick", Color: "#b22222", MaxHP: 300, Sides: 4},
	Soil:           {Name: "Soil", Color: "#8B4513", MaxHP: 200, Sides: 5},
	PowerBlock:     {Name: "PowerBlock", Color: "#8b8bd0", MaxHP: 200},
	WormChunk:      {Name: "WormChunk", Color: "#C70039", MaxHP: 0, Sides: 8},
	Vegetation:     {Name: "Vegetation", Color: "#84398c", MaxHP: 1},
	CityWall:       {Name: "CityWall", Color: "#4a4a6a", MaxHP: 500, Sides: 4},
	CityFloor:      {Name: "CityFloor", Color: "#3a3a5a", MaxHP: 400, Sides: 4},
}

// Properties возвращает свойства вида; для неизвестного вида: свойства Empty
func (k Kind) Properties() Properties {
	if k >= kindCount {
		return properties[Empty]
	}
	return properties[k]
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return properties[k].Name
}

// IsSolid сообщает, останавливает ли тайл луч лазера и падающие предметы
func (k Kind) IsSolid() bool {
	return k > Empty && k < kindCount
}

// IsDestructible - тайл можно повредить лазером или съесть червём
func (k Kind) IsDestructible() bool {
	return k > Indestructible && k < kindCount
}

// BlocksMovement - тайл участвует в коллизиях игрока и предметов.
// Растительность декоративна и проходима.
func (k Kind) BlocksMovement() bool {
	return k.IsSolid() && k != Vegetation
}

// ParseKind ищет вид по имени
func ParseKind(name string) (Kind, error) {
	for k := Empty; k < kindCount; k++ {
		if properties[k].Name == name {
			return k, nil
		}
	}
	return Empty, fmt.Errorf("неизвестный вид тайла: %q", name)
}

// Kinds возвращает все виды по порядку
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Empty; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Tile - снимок состояния одной клетки сетки
type Tile struct {
	Kind  Kind
	HP    float64
	MaxHP float64
}

// New создаёт целый тайл указанного вида
func New(k Kind) Tile {
	p := k.Properties()
	return Tile{Kind: k, HP: p.MaxHP, MaxHP: p.MaxHP}
}

// Air - пустая клетка
func Air() Tile {
	return Tile{Kind: Empty}
}

// IsEmpty - клетка логически пуста: вид Empty либо HP исчерпан
func (t Tile) IsEmpty() bool {
	return t.Kind == Empty || t.HP <= 0
}

// Color возвращает цвет вида тайла
func (t Tile) Color() string {
	return t.Kind.Properties().Color
}

// Sides возвращает число граней предмета, выпадающего из тайла
func (t Tile) Sides() int {
	return t.Kind.Properties().Sides
}

// Damage наносит урон и возвращает true, если тайл разрушен этим ударом
func (t *Tile) Damage(amount float64) bool {
	if !t.Kind.IsDestructible() || t.HP <= 0 {
		return false
	}
	t.HP -= amount
	t.Clamp()
	return t.HP <= 0
}

// Clamp удерживает HP в [0, MaxHP]. В отладочном режиме нарушение инварианта: паника.
func (t *Tile) Clamp() {
	if t.HP > t.MaxHP {
		if debugInvariants {
			panic(fmt.Sprintf("tile: HP %.2f больше MaxHP %.2f для %s", t.HP, t.MaxHP, t.Kind))
		}
		t.HP = t.MaxHP
	}
	if t.HP < 0 {
		t.HP = 0
	}
}

// debugInvariants включается тестами
var debugInvariants = false

type tileJSON struct {
	Kind           string   `json:"kind"`
	HP             *float64 `json:"hp,omitempty"`
	MaxHP          *float64 `json:"max_hp,omitempty"`
	Indestructible bool     `json:"indestructible,omitempty"`
	Color          string   `json:"color,omitempty"`
}

// MarshalJSON кодирует тайл; бесконечный MaxHP передаётся флагом indestructible
func (t Tile) MarshalJSON() ([]byte, error) {
	out := tileJSON{Kind: t.Kind.String(), Color: t.Color()}
	if math.IsInf(t.MaxHP, 1) {
		out.Indestructible = true
	} else {
		hp, maxHP := t.HP, t.MaxHP
		out.HP, out.MaxHP = &hp, &maxHP
	}
	return json.Marshal(out)
}

func (t *Tile) UnmarshalJSON(data []byte) error {
	var in tileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return err
	}
	t.Kind = kind
	if in.Indestructible {
		t.HP, t.MaxHP = math.Inf(1), math.Inf(1)
		return nil
	}
	t.HP, t.MaxHP = 0, 0
	if in.HP != nil {
		t.HP = *in.HP
	}
	if in.MaxHP != nil {
		t.MaxHP = *in.MaxHP
	}
	return nil
}
