package game

// Player is the server-side avatar owned by one live connection.
type Player struct {
	ID    string
	X     float64
	Y     float64
	Score int
}

// NewPlayer creates a player at the given position with a zero score.
func NewPlayer(id string, x, y float64) *Player {
	return &Player{ID: id, X: x, Y: y}
}

// View returns the wire representation of the player.
func (p *Player) View() PlayerView {
	return PlayerView{ID: p.ID, X: p.X, Y: p.Y, Score: p.Score}
}

// Collectible is a pickup item. Width and Height form its bounding box and
// are not sent to clients.
type Collectible struct {
	ID     string
	Value  int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewCollectible creates a square collectible of the given size.
func NewCollectible(id string, value int, x, y, size float64) *Collectible {
	return &Collectible{ID: id, Value: value, X: x, Y: y, Width: size, Height: size}
}

// View returns the wire representation of the collectible.
func (c *Collectible) View() CollectibleView {
	return CollectibleView{ID: c.ID, Value: c.Value, X: c.X, Y: c.Y}
}

// PlayerView is what clients see of a player.
type PlayerView struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
}

// CollectibleView is what clients see of a collectible.
type CollectibleView struct {
	ID    string  `json:"id"`
	Value int     `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Snapshot is a consistent copy of the whole world taken under one lock.
// Order lists player ids in registration order.
type Snapshot struct {
	Players      map[string]PlayerView
	Order        []string
	Collectibles []CollectibleView
}

// OrderedPlayers returns the players in registration order.
func (s Snapshot) OrderedPlayers() []PlayerView {
	out := make([]PlayerView, 0, len(s.Order))
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
