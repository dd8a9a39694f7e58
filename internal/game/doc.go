// Package game holds the authoritative arena state: players, collectibles,
// movement, collision, pickup and ranking.
//
// Nothing in this package knows about the network. The server package feeds
// events into a World and broadcasts the Snapshot it returns.
package game
