package config

import (
	"errors"
	"fmt"
)

// GameConfig - неизменяемый набор игровых констант.
// Создаётся один раз при старте и передаётся по указателю во все подсистемы.
type GameConfig struct {
	Seed int64 `yaml:"seed"` // 0: случайный сид при создании сессии

	TileSize          float64 `yaml:"tile_size"`
	MapHeight         int     `yaml:"map_height"`
	SpawnAreaWidth    int     `yaml:"spawn_area_width"`
	SurfaceLevel      int     `yaml:"surface_level"`
	Gravity           float64 `yaml:"gravity"`
	InvincibilityTime int     `yaml:"invincibility_time"`

	ItemGravity        float64 `yaml:"item_gravity"`
	ItemFriction       float64 `yaml:"item_friction"`
	ItemBounce         float64 `yaml:"item_bounce"`
	ItemAnimationSpeed float64 `yaml:"item_animation_speed"`

	MaxWorms               int     `yaml:"max_worms"`
	WormSpawnDepth         int     `yaml:"worm_spawn_depth"`
	WormSpawnAttempts      int     `yaml:"worm_spawn_attempts"`
	WormMoveInterval       int     `yaml:"worm_move_interval"`
	WormHeadDamage         float64 `yaml:"worm_head_damage"`
	WormSegmentDamage      float64 `yaml:"worm_segment_damage"`
	WormSegmentRadius      float64 `yaml:"worm_segment_radius"`
	WormSpeed              float64 `yaml:"worm_speed"`
	WormHeadHealth         float64 `yaml:"worm_head_health"`
	WormBodyHealth         float64 `yaml:"worm_body_health"`
	WormGrowthChance       float64 `yaml:"worm_growth_chance"`
	WormRadiusGrowthFactor float64 `yaml:"worm_radius_growth_factor"`
	WormFollowFactor       float64 `yaml:"worm_follow_factor"`
	SoundMaxDistance       float64 `yaml:"sound_max_distance"`

	PowerChanceFactor       float64 `yaml:"power_chance_factor"`
	PowerBlockSoundInterval int     `yaml:"power_block_sound_interval"`
	PowerBlockSoundRadius   float64 `yaml:"power_block_sound_radius"` // в тайлах
	PowerMinSafeDistance    float64 `yaml:"power_min_safe_distance"`  // в тайлах
	PowerMaxEffectiveDist   float64 `yaml:"power_max_effective_distance"`
	InitialPowerBlocks      int     `yaml:"initial_power_blocks"`
	InitialPowerMaxDistance float64 `yaml:"initial_power_max_distance"` // в тайлах

	PlayerHealth           float64 `yaml:"player_health"`
	PlayerEnergy           float64 `yaml:"player_energy"`
	PlayerEnergyRegen      float64 `yaml:"player_energy_regen"`
	PlayerLaserEnergyCost  float64 `yaml:"player_laser_energy_cost"`
	PlayerTurboEnergyCost  float64 `yaml:"player_turbo_energy_cost"`
	PlayerRadius           float64 `yaml:"player_radius"`
	PlayerSpeed            float64 `yaml:"player_speed"`
	PlayerJumpForce        float64 `yaml:"player_jump_force"`
	PlayerAcceleration     float64 `yaml:"player_acceleration"`
	PlayerFriction         float64 `yaml:"player_friction"`
	PlayerLaserDamage      float64 `yaml:"player_laser_damage"`
	PlayerLaserRange       float64 `yaml:"player_laser_range"`
	PlayerPickupRadius     float64 `yaml:"player_pickup_radius"`
	PlayerTurboMultiplier  float64 `yaml:"player_turbo_multiplier"`
	RadarRange             float64 `yaml:"radar_range"` // в пикселях
	RevealRadius           float64 `yaml:"reveal_radius"`

	CityLayer         int `yaml:"city_layer"`
	CityHeight        int `yaml:"city_height"`
	CityRoomMinSize   int `yaml:"city_room_min_size"`
	CityRoomMaxSize   int `yaml:"city_room_max_size"`
	CityCorridorWidth int `yaml:"city_corridor_width"`
	CityRoomsCount    int `yaml:"city_rooms_count"`
	CityWidth         int `yaml:"city_width"`

	UpgradeChoices int `yaml:"upgrade_choices"`
}

// DefaultGameConfig возвращает игровой баланс по умолчанию
func DefaultGameConfig() GameConfig {
	const tile = 40.0
	return GameConfig{
		TileSize:          tile,
		MapHeight:         256,
		SpawnAreaWidth:    100,
		SurfaceLevel:      10,
		Gravity:           0.5,
		InvincibilityTime: 40,

		ItemGravity:        0.3,
		ItemFriction:       0.98,
		ItemBounce:         -0.3,
		ItemAnimationSpeed: 0.2,

		MaxWorms:               3,
		WormSpawnDepth:         10,
		WormSpawnAttempts:      20,
		WormMoveInterval:       60,
		WormHeadDamage:         50,
		WormSegmentDamage:      25,
		WormSegmentRadius:      10,
		WormSpeed:              0.1,
		WormHeadHealth:         220,
		WormBodyHealth:         80,
		WormGrowthChance:       1.0 / 3.0,
		WormRadiusGrowthFactor: 0.5,
		WormFollowFactor:       1.8,
		SoundMaxDistance:       10 * tile,

		PowerChanceFactor:       0.05,
		PowerBlockSoundInterval: 120,
		PowerBlockSoundRadius:   10,
		PowerMinSafeDistance:    10,
		PowerMaxEffectiveDist:   50,
		InitialPowerBlocks:      2,
		InitialPowerMaxDistance: 25,

		PlayerHealth:          100,
		PlayerEnergy:          300,
		PlayerEnergyRegen:     3,
		PlayerLaserEnergyCost: 0.5,
		PlayerTurboEnergyCost: 0.3,
		PlayerRadius:          18,
		PlayerSpeed:           5,
		PlayerJumpForce:       -12,
		PlayerAcceleration:    0.5,
		PlayerFriction:        0.95,
		PlayerLaserDamage:     10,
		PlayerLaserRange:      300,
		PlayerPickupRadius:    50,
		PlayerTurboMultiplier: 2,
		RadarRange:            25 * tile,
		RevealRadius:          250,

		CityLayer:         100,
		CityHeight:        30,
		CityRoomMinSize:   6,
		CityRoomMaxSize:   12,
		CityCorridorWidth: 3,
		CityRoomsCount:    8,
		CityWidth:         150,

		UpgradeChoices: 3,
	}
}

var errInvalidGameConfig = errors.New("некорректная игровая конфигурация")

// Validate проверяет согласованность констант
func (c *GameConfig) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile_size должен быть > 0", errInvalidGameConfig)
	case c.MapHeight <= c.SurfaceLevel:
		return fmt.Errorf("%w: map_height должен быть больше surface_level", errInvalidGameConfig)
	case c.CityRoomMinSize <= 0 || c.CityRoomMaxSize <= c.CityRoomMinSize:
		return fmt.Errorf("%w: размеры комнат города", errInvalidGameConfig)
	case c.CityHeight-c.CityRoomMaxSize-4 <= 0:
		return fmt.Errorf("%w: city_height слишком мал для комнат", errInvalidGameConfig)
	case c.CityWidth <= c.CityRoomMaxSize:
		return fmt.Errorf("%w: city_width слишком мал для комнат", errInvalidGameConfig)
	case c.WormMoveInterval <= 0:
		return fmt.Errorf("%w: worm_move_interval должен быть > 0", errInvalidGameConfig)
	case c.PowerMaxEffectiveDist <= c.PowerMinSafeDistance:
		return fmt.Errorf("%w: дистанции power-блоков", errInvalidGameConfig)
	}
	return nil
}

// CityStartX возвращает левую границу города в тайлах
func (c *GameConfig) CityStartX() int {
	return -(c.CityWidth / 2)
}

// CityEndX возвращает правую границу города в тайлах
func (c *GameConfig) CityEndX() int {
	return c.CityWidth / 2
}
