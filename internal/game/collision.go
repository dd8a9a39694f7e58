package game

// Collides is an axis-aligned bounding box test between the player's
// footprint and the collectible's box. Touching edges do not collide.
func (a Arena) Collides(p *Player, c *Collectible) bool {
	if p == nil || c == nil {
		return false
	}
	return p.X < c.X+c.Width &&
		p.X+a.PlayerSize > c.X &&
		p.Y < c.Y+c.Height &&
		p.Y+a.PlayerSize > c.Y
}
