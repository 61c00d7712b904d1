package game

import (
	"encoding/json"
	"fmt"
)

// State - состояние игрового автомата
type State uint8

const (
	StateMenu State = iota
	StatePlaying
	StateGameOver
	StateUpgradeSelection
)

var stateNames = [...]string{
	StateMenu:             "menu",
	StatePlaying:          "playing",
	StateGameOver:         "game_over",
	StateUpgradeSelection: "upgrade_selection",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseState разбирает имя состояния
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return StateMenu, fmt.Errorf("неизвестное состояние %q", name)
}
