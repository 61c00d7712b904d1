package world

import (
	"math/rand"
	"sort"

	"github.com/annel0/alien-planet/internal/config"
	"github.com/annel0/alien-planet/internal/world/tile"
)

// Room - прямоугольная комната подземного города
type Room struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
}

func (r Room) contains(x, y, margin int) bool {
	return x >= r.X-margin && x < r.X+r.Width+margin &&
		y >= r.Y-margin && y < r.Y+r.Height+margin
}

// Corridor - Г-образный проход между центрами соседних комнат:
// горизонтальная часть на строке Y1, вертикальная: на столбце X2.
type Corridor struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// contains проверяет попадание в коридор полушириной half.
// extra расширяет каждую часть коридора поперёк её направления.
func (c Corridor) contains(x, y, half, extra int) bool {
	minX, maxX := min(c.X1, c.X2), max(c.X1, c.X2)
	if x >= minX-half && x <= maxX+half &&
		y >= c.Y1-half-extra && y <= c.Y1+half+extra {
		return true
	}

	minY, maxY := min(c.Y1, c.Y2), max(c.Y1, c.Y2)
	return x >= c.X2-half-extra && x <= c.X2+half+extra &&
		y >= minY-half && y <= maxY+half
}

// CityLayout - разметка подземного города. Создаётся один раз на сессию.
type CityLayout struct {
	Rooms     []Room     `json:"rooms"`
	Corridors []Corridor `json:"corridors"`
	StartX    int        `json:"start_x"`
	EndX      int        `json:"end_x"`

	layer         int
	height        int
	corridorWidth int
}

// GenerateCity строит комнаты и соединяет их коридорами в порядке возрастания центра по X
func GenerateCity(cfg *config.GameConfig, rng *rand.Rand) *CityLayout {
	city := &CityLayout{
		StartX:        cfg.CityStartX(),
		EndX:          cfg.CityEndX(),
		layer:         cfg.CityLayer,
		height:        cfg.CityHeight,
		corridorWidth: cfg.CityCorridorWidth,
	}

	sizeSpread := cfg.CityRoomMaxSize - cfg.CityRoomMinSize
	for i := 0; i < cfg.CityRoomsCount; i++ {
		w := cfg.CityRoomMinSize + rng.Intn(sizeSpread)
		h := cfg.CityRoomMinSize + rng.Intn(sizeSpread)
		x := city.StartX + rng.Intn(cfg.CityWidth-w)
		y := cfg.CityLayer + 2 + rng.Intn(cfg.CityHeight-h-4)

		city.Rooms = append(city.Rooms, Room{
			X: x, Y: y, Width: w, Height: h,
			CenterX: x + w/2,
			CenterY: y + h/2,
		})
	}

	sort.SliceStable(city.Rooms, func(i, j int) bool {
		return city.Rooms[i].CenterX < city.Rooms[j].CenterX
	})

	for i := 0; i+1 < len(city.Rooms); i++ {
		a, b := city.Rooms[i], city.Rooms[i+1]
		city.Corridors = append(city.Corridors, Corridor{X1: a.CenterX, Y1: a.CenterY, X2: b.CenterX, Y2: b.CenterY})
	}

	return city
}

// InBand сообщает, лежит ли строка y в слое города
func (c *CityLayout) InBand(y int) bool {
	return y >= c.layer && y < c.layer+c.height
}

// TileAt возвращает тайл города или nil, если клетка отдаётся обычному рельефу
func (c *CityLayout) TileAt(x, y int) *tile.Tile {
	if !c.InBand(y) || x < c.StartX-2 || x > c.EndX+2 {
		return nil
	}

	half := c.corridorWidth / 2

	for _, room := range c.Rooms {
		if room.contains(x, y, 0) {
			air := tile.Air()
			return &air
		}
	}
	for _, corridor := range c.Corridors {
		if corridor.contains(x, y, half, 0) {
			air := tile.Air()
			return &air
		}
	}

	for _, room := range c.Rooms {
		if room.contains(x, y, 1) {
			return wallTile()
		}
	}
	for _, corridor := range c.Corridors {
		if corridor.contains(x, y, half+1, 1) {
			return wallTile()
		}
	}

	return nil
}

func wallTile() *tile.Tile {
	wall := tile.New(tile.CityWall)
	return &wall
}
