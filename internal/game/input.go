package game

import "github.com/annel0/alien-planet/internal/vec"

// Input - снимок управления за кадр. Клавиши описывают удержание:
// нажатия выделяются сравнением с предыдущим кадром.
type Input struct {
	Left   bool `json:"left"`  // A / ←
	Right  bool `json:"right"` // D / →
	Up     bool `json:"up"`    // W / ↑
	Space  bool `json:"space"`
	Enter  bool `json:"enter"`
	Escape bool `json:"escape"`
	Shift  bool `json:"shift"`

	Digit1 bool `json:"digit1"`
	Digit2 bool `json:"digit2"`
	Digit3 bool `json:"digit3"`

	MouseDown bool          `json:"mouse_down"`
	Mouse     vec.Vec2Float `json:"mouse"` // экранные координаты

	// Zoom - шаги колеса мыши за кадр: >0 приближение, <0 отдаление
	Zoom int `json:"zoom"`
}

// Pressed - клавиши, нажатые именно в этом кадре
type Pressed struct {
	Left, Right, Space, Enter, Escape bool
	Digit1, Digit2, Digit3            bool
	Click                             bool
}

// PressedSince выделяет фронты нажатий относительно предыдущего кадра
func (in Input) PressedSince(prev Input) Pressed {
	edge := func(now, before bool) bool { return now && !before }
	return Pressed{
		Left:   edge(in.Left, prev.Left),
		Right:  edge(in.Right, prev.Right),
		Space:  edge(in.Space, prev.Space),
		Enter:  edge(in.Enter, prev.Enter),
		Escape: edge(in.Escape, prev.Escape),
		Digit1: edge(in.Digit1, prev.Digit1),
		Digit2: edge(in.Digit2, prev.Digit2),
		Digit3: edge(in.Digit3, prev.Digit3),
		Click:  edge(in.MouseDown, prev.MouseDown),
	}
}

// digitChoice возвращает индекс карточки по цифре или -1
func (p Pressed) digitChoice() int {
	switch {
	case p.Digit1:
		return 0
	case p.Digit2:
		return 1
	case p.Digit3:
		return 2
	}
	return -1
}
