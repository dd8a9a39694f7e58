package game

// Direction is one of the four canonical move directions.
type Direction string

// Canonical directions. Anything else is ignored by ApplyMove.
const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ApplyMove displaces p by amount in direction. Unknown directions and
// non-positive or NaN amounts leave p untouched. The result is not clamped.
func ApplyMove(p *Player, direction Direction, amount float64) bool {
	if p == nil || !(amount > 0) {
		return false
	}
	switch direction {
	case Up:
		p.Y -= amount
	case Down:
		p.Y += amount
	case Left:
		p.X -= amount
	case Right:
		p.X += amount
	default:
		return false
	}
	return true
}

// Clamp pulls p back inside the arena. It is idempotent.
func (a Arena) Clamp(p *Player) {
	p.X = clamp(p.X, 0, a.maxPlayerX())
	p.Y = clamp(p.Y, 0, a.maxPlayerY())
}

// InBounds reports whether p already satisfies the arena bounds.
func (a Arena) InBounds(p *Player) bool {
	return p.X >= 0 && p.X <= a.maxPlayerX() && p.Y >= 0 && p.Y <= a.maxPlayerY()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
