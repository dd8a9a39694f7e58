package game

import (
	"errors"
	"math/rand/v2"
	"sync"
)

var (
	// ErrDuplicateSession is returned when a connection id is already registered.
	ErrDuplicateSession = errors.New("session already registered")
	// ErrUnknownSession is returned by lookups for ids that are not registered.
	ErrUnknownSession = errors.New("session not registered")
)

// MoveResult reports what a single move event changed.
type MoveResult struct {
	// Known is false when the connection has no player, e.g. a move that
	// raced a disconnect. Nothing else is set in that case.
	Known bool
	// Moved is false for unrecognized directions or non-positive amounts.
	Moved bool
	// Picked is the collectible credited to the mover, if any.
	Picked *CollectibleView
	// Spawned is true when a replacement collectible was added.
	Spawned bool
	Player  PlayerView
}

// World is the session registry and owner of all arena state. Every method
// holds a single lock for its whole duration, so each event is applied
// atomically with respect to Snapshot.
type World struct {
	mu           sync.Mutex
	arena        Arena
	rng          *rand.Rand
	players      map[string]*Player
	order        []string
	collectibles *Collectibles
}

// Option customizes a World.
type Option func(*worldOptions)

type worldOptions struct {
	rng   *rand.Rand
	newID func() string
}

// WithRand sets the random source used for spawn positions and values.
func WithRand(rng *rand.Rand) Option {
	return func(o *worldOptions) { o.rng = rng }
}

// WithIDGenerator replaces the UUID generator used for collectible ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *worldOptions) { o.newID = fn }
}

// NewWorld validates the arena and seeds it with TargetCollectibles items.
func NewWorld(arena Arena, opts ...Option) (*World, error) {
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	o := worldOptions{newID: newUUID}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &World{
		arena:        arena,
		rng:          o.rng,
		players:      make(map[string]*Player),
		collectibles: newCollectibles(arena, o.rng, o.newID),
	}, nil
}

// Arena returns the arena the world was built with.
func (w *World) Arena() Arena {
	return w.arena
}

// Connect registers a player for id at a random in-bounds spawn point.
func (w *World) Connect(id string) (PlayerView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[id]; exists {
		return PlayerView{}, ErrDuplicateSession
	}
	p := NewPlayer(id, w.rng.Float64()*w.arena.maxPlayerX(), w.rng.Float64()*w.arena.maxPlayerY())
	w.players[id] = p
	w.order = append(w.order, id)
	return p.View(), nil
}

// Disconnect removes the player for id. It reports whether one existed.
func (w *World) Disconnect(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Move applies a move for id, clamps every player back into the arena and
// credits at most one pickup to the mover. A pickup tops the collectible set
// up by one.
func (w *World) Move(id string, direction Direction, amount float64) MoveResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return MoveResult{}
	}

	res := MoveResult{Known: true}
	res.Moved = ApplyMove(p, direction, amount)
	w.clampAll()

	if picked, ok := w.collectibles.Pickup(p); ok {
		view := picked.View()
		res.Picked = &view
		res.Spawned = w.collectibles.EnsureTarget(w.arena.TargetCollectibles)
	}
	res.Player = p.View()
	return res
}

// CollectibleCollected handles a client's pickup notification. It never
// changes a score; it only tops the collectible set up by one. known is
// false for unregistered ids.
func (w *World) CollectibleCollected(id string) (known, spawned bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.players[id]; !ok {
		return false, false
	}
	return true, w.collectibles.EnsureTarget(w.arena.TargetCollectibles)
}

// Tick clamps all players and tops up collectibles by one. It reports
// whether anything changed.
func (w *World) Tick() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, p := range w.players {
		if !w.arena.InBounds(p) {
			w.arena.Clamp(p)
			changed = true
		}
	}
	if w.collectibles.EnsureTarget(w.arena.TargetCollectibles) {
		changed = true
	}
	return changed
}

// Player returns the current view of id.
func (w *World) Player(id string) (PlayerView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return PlayerView{}, ErrUnknownSession
	}
	return p.View(), nil
}

// PlayerCount returns the number of registered sessions.
func (w *World) PlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.players)
}

// Snapshot copies players and collectibles under a single lock.
func (w *World) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Rank computes the rank of id against all registered players.
func (w *World) Rank(id string) (ordinal, total int) {
	return Rank(id, w.Snapshot().OrderedPlayers())
}

// Leaderboard returns all players sorted by score.
func (w *World) Leaderboard() []PlayerView {
	return Standings(w.Snapshot().OrderedPlayers())
}

func (w *World) snapshotLocked() Snapshot {
	s := Snapshot{
		Players:      make(map[string]PlayerView, len(w.players)),
		Order:        append([]string(nil), w.order...),
		Collectibles: w.collectibles.Views(),
	}
	for id, p := range w.players {
		s.Players[id] = p.View()
	}
	return s
}

func (w *World) clampAll() {
	for _, p := range w.players {
		w.arena.Clamp(p)
	}
}
