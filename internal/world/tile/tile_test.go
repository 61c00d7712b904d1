package tile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOrderAndPredicates(t *testing.T) {
	assert.Equal(t, Kind(0), Empty)
	assert.Equal(t, Kind(11), CityFloor)

	assert.False(t, Empty.IsSolid())
	assert.True(t, Indestructible.IsSolid())
	assert.False(t, Indestructible.IsDestructible(), "неразрушимый тайл не должен получать урон")
	assert.True(t, Vegetation.IsSolid(), "растительность останавливает луч")
	assert.False(t, Vegetation.BlocksMovement(), "растительность проходима")
	assert.True(t, CityWall.IsDestructible())
}

func TestNewUsesPropertyTable(t *testing.T) {
	brick := New(Brick)
	assert.Equal(t, 300.0, brick.HP)
	assert.Equal(t, 300.0, brick.MaxHP)
	assert.Equal(t, "#b22222", brick.Color())
	assert.Equal(t, 4, brick.Sides())

	rock := New(Indestructible)
	assert.True(t, math.IsInf(rock.MaxHP, 1))
	assert.False(t, rock.IsEmpty())
}

func TestDamageBrickTakesThirtyHits(t *testing.T) {
	brick := New(Brick)
	hits := 0
	for !brick.IsEmpty() {
		hits++
		destroyed := brick.Damage(10)
		if hits < 30 {
			require.False(t, destroyed, "кирпич разрушен раньше времени на ударе %d", hits)
		}
	}
	assert.Equal(t, 30, hits)
}

func TestDamageIgnoresIndestructible(t *testing.T) {
	rock := New(Indestructible)
	assert.False(t, rock.Damage(1e9))
	assert.True(t, math.IsInf(rock.HP, 1))
}

func TestClampPanicsInDebug(t *testing.T) {
	debugInvariants = true
	defer func() { debugInvariants = false }()

	broken := Tile{Kind: Dirt, HP: 500, MaxHP: 120}
	assert.Panics(t, func() { broken.Clamp() })
}

func TestClampInRelease(t *testing.T) {
	broken := Tile{Kind: Dirt, HP: 500, MaxHP: 120}
	broken.Clamp()
	assert.Equal(t, 120.0, broken.HP)

	broken.HP = -15
	broken.Clamp()
	assert.Equal(t, 0.0, broken.HP)
}

func TestJSONIndestructible(t *testing.T) {
	data, err := json.Marshal(New(Indestructible))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Indestructible","indestructible":true,"color":"#000000"}`, string(data))

	var back Tile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Indestructible, back.Kind)
	assert.True(t, math.IsInf(back.MaxHP, 1))

	damaged := New(Soil)
	damaged.HP = 50
	data, err = json.Marshal(damaged)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, damaged, back)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("PowerBlock")
	require.NoError(t, err)
	assert.Equal(t, PowerBlock, k)

	_, err = ParseKind("Lava")
	assert.Error(t, err)
	assert.Len(t, Kinds(), 12)
}
