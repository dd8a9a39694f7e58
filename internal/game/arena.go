package game

import "fmt"

// Arena describes the fixed coordinate space and the footprints used for
// bounds and collision checks.
type Arena struct {
	Width              float64
	Height             float64
	PlayerSize         float64
	CollectibleSize    float64
	TargetCollectibles int
}

// DefaultArena returns the 800x600 arena with a 50 unit player, 20 unit
// collectibles and two live collectibles.
func DefaultArena() Arena {
	return Arena{
		Width:              800,
		Height:             600,
		PlayerSize:         50,
		CollectibleSize:    20,
		TargetCollectibles: 2,
	}
}

// Validate reports whether both footprints fit inside the arena.
func (a Arena) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("arena dimensions must be positive, got %vx%v", a.Width, a.Height)
	}
	if a.PlayerSize <= 0 || a.PlayerSize > a.Width || a.PlayerSize > a.Height {
		return fmt.Errorf("player size %v does not fit arena %vx%v", a.PlayerSize, a.Width, a.Height)
	}
	if a.CollectibleSize <= 0 || a.CollectibleSize > a.Width || a.CollectibleSize > a.Height {
		return fmt.Errorf("collectible size %v does not fit arena %vx%v", a.CollectibleSize, a.Width, a.Height)
	}
	if a.TargetCollectibles < 0 {
		return fmt.Errorf("target collectibles must not be negative, got %d", a.TargetCollectibles)
	}
	return nil
}

// maxPlayerX and friends are the upper clamp bounds for an entity origin.
func (a Arena) maxPlayerX() float64      { return a.Width - a.PlayerSize }
func (a Arena) maxPlayerY() float64      { return a.Height - a.PlayerSize }
func (a Arena) maxCollectibleX() float64 { return a.Width - a.CollectibleSize }
func (a Arena) maxCollectibleY() float64 { return a.Height - a.CollectibleSize }
