package world

import (
	"fmt"

	"github.com/annel0/alien-planet/internal/vec"
)

// CueKind - вид звукового события
type CueKind uint8

const (
	CueLaser CueKind = iota
	CueBlockBreak
	CuePickup
	CueJump
	CueWormDeath
	CueWormEat
	CueWormHit
	CuePowerBlock
	CuePowerBlockActivate
)

var cueNames = [...]string{
	CueLaser:              "laser",
	CueBlockBreak:         "block_break",
	CuePickup:             "pickup",
	CueJump:               "jump",
	CueWormDeath:          "worm_death",
	CueWormEat:            "worm_eat",
	CueWormHit:            "worm_hit",
	CuePowerBlock:         "power_block",
	CuePowerBlockActivate: "power_block_activate",
}

// базовая громкость до ослабления по расстоянию
var cueVolumes = [...]float64{
	CueLaser:              0.025,
	CueBlockBreak:         0.2,
	CuePickup:             0.2,
	CueJump:               0.4,
	CueWormDeath:          0.2,
	CueWormEat:            0.08,
	CueWormHit:            0.25,
	CuePowerBlock:         0.1,
	CuePowerBlockActivate: 0.4,
}

func (k CueKind) String() string {
	if int(k) < len(cueNames) {
		return cueNames[k]
	}
	return fmt.Sprintf("cue(%d)", uint8(k))
}

// BaseVolume возвращает громкость события у источника
func (k CueKind) BaseVolume() float64 {
	if int(k) < len(cueVolumes) {
		return cueVolumes[k]
	}
	return 0
}

// Cue - событие для слоя представления: что прозвучало, где и насколько громко
type Cue struct {
	Kind   CueKind       `json:"-"`
	Name   string        `json:"kind"`
	Pos    vec.Vec2Float `json:"pos"`
	Volume float64       `json:"volume"`
}

// CueSink принимает звуковые события
type CueSink interface {
	Emit(cue Cue)
}

// CueSinkFunc позволяет использовать функцию как CueSink
type CueSinkFunc func(cue Cue)

func (f CueSinkFunc) Emit(cue Cue) { f(cue) }

// CueRecorder накапливает события до следующего Drain
type CueRecorder struct {
	cues []Cue
}

func (r *CueRecorder) Emit(cue Cue) {
	r.cues = append(r.cues, cue)
}

// Drain возвращает накопленные события и очищает буфер
func (r *CueRecorder) Drain() []Cue {
	out := r.cues
	r.cues = nil
	return out
}

// Kinds возвращает виды накопленных событий по порядку
func (r *CueRecorder) Kinds() []CueKind {
	kinds := make([]CueKind, 0, len(r.cues))
	for _, c := range r.cues {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// CueEmitter ослабляет громкость по расстоянию до слушателя (игрока)
// и отбрасывает события дальше maxDistance.
type CueEmitter struct {
	sink        CueSink
	listener    vec.Vec2Float
	maxDistance float64
}

func NewCueEmitter(sink CueSink, maxDistance float64) *CueEmitter {
	return &CueEmitter{sink: sink, maxDistance: maxDistance}
}

// SetListener обновляет позицию слушателя
func (e *CueEmitter) SetListener(pos vec.Vec2Float) {
	if e != nil {
		e.listener = pos
	}
}

// PlayAt испускает событие из точки source. Возвращает false, если событие не слышно.
func (e *CueEmitter) PlayAt(kind CueKind, source vec.Vec2Float) bool {
	if e == nil || e.sink == nil {
		return false
	}

	dist := e.listener.DistanceTo(source)
	if dist > e.maxDistance {
		return false
	}

	volume := kind.BaseVolume() * (1 - dist/e.maxDistance)
	if volume < 0 {
		volume = 0
	}
	e.sink.Emit(Cue{Kind: kind, Name: kind.String(), Pos: source, Volume: volume})
	return true
}
