package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	minCollectibleValue = 1
	maxCollectibleValue = 10
)

// Collectibles is the live, ordered set of pickup items. It is not safe for
// concurrent use; World serializes access to it.
type Collectibles struct {
	arena Arena
	rng   *rand.Rand
	newID func() string
	items []*Collectible
}

func newCollectibles(arena Arena, rng *rand.Rand, newID func() string) *Collectibles {
	c := &Collectibles{
		arena: arena,
		rng:   rng,
		newID: newID,
		items: make([]*Collectible, 0, arena.TargetCollectibles),
	}
	for i := 0; i < arena.TargetCollectibles; i++ {
		c.items = append(c.items, c.SpawnOne())
	}
	return c
}

// SpawnOne generates a collectible with a fresh id, a value in [1,10] and a
// position that keeps its footprint inside the arena. It is not added to
// the live set.
func (c *Collectibles) SpawnOne() *Collectible {
	return NewCollectible(
		c.newID(),
		c.rng.IntN(maxCollectibleValue-minCollectibleValue+1)+minCollectibleValue,
		c.rng.Float64()*c.arena.maxCollectibleX(),
		c.rng.Float64()*c.arena.maxCollectibleY(),
		c.arena.CollectibleSize,
	)
}

// EnsureTarget adds exactly one collectible when the live set is below
// target. Repeated pickups may leave the set short until later calls.
func (c *Collectibles) EnsureTarget(target int) bool {
	if len(c.items) >= target {
		return false
	}
	c.items = append(c.items, c.SpawnOne())
	return true
}

// RemoveAt drops the collectible at index i, keeping the order of the rest.
func (c *Collectibles) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	last := len(c.items) - 1
	copy(c.items[i:], c.items[i+1:])
	c.items[last] = nil
	c.items = c.items[:last]
	return true
}

// Pickup credits p with at most one collectible per call: the first one in
// live order whose box overlaps the player is removed and the score bumped.
func (c *Collectibles) Pickup(p *Player) (*Collectible, bool) {
	for i, item := range c.items {
		if !c.arena.Collides(p, item) {
			continue
		}
		p.Score++
		c.RemoveAt(i)
		return item, true
	}
	return nil, false
}

// Len returns the live count.
func (c *Collectibles) Len() int {
	return len(c.items)
}

// Views returns the wire form of the live set in order.
func (c *Collectibles) Views() []CollectibleView {
	out := make([]CollectibleView, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.View())
	}
	return out
}

func newUUID() string {
	return uuid.NewString()
}
