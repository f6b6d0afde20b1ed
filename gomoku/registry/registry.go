package registry

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gomokuserver/gomoku/broadcast"
	"gomokuserver/gomoku/room"
	"gomokuserver/models"
)

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

var (
	ErrInvalidRoomID = errors.New("invalid room id")
	ErrRoomNotFound  = errors.New("room not found")
)

// CanonicalRoomID validates raw and returns it upper-cased.
func CanonicalRoomID(raw string) (string, error) {
	if !roomIDPattern.MatchString(raw) {
		return "", ErrInvalidRoomID
	}
	return strings.ToUpper(raw), nil
}

// Registry maps room ids to live rooms. Joining and leaving go through the
// registry lock so that creating a room and seating its first participant,
// or removing the last participant and dropping the room, are each atomic.
// Lock order is registry, then room.
type Registry struct {
	logger *zap.Logger

	mu    sync.Mutex
	rooms map[string]*room.Room

	totalConnections atomic.Int64
	activeRooms      atomic.Int64
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger,
		rooms:  make(map[string]*room.Room),
	}
}

func (g *Registry) TotalConnections() int64 {
	return g.totalConnections.Load()
}

func (g *Registry) ActiveRooms() int64 {
	return g.activeRooms.Load()
}

// ConnectionOpened and ConnectionClosed must be called exactly once per
// accepted socket.
func (g *Registry) ConnectionOpened() {
	g.totalConnections.Add(1)
}

func (g *Registry) ConnectionClosed() {
	g.totalConnections.Add(-1)
}

// getOrCreateLocked returns the room for a canonical id, creating it if
// needed. g.mu must be held.
func (g *Registry) getOrCreateLocked(id string) *room.Room {
	r, ok := g.rooms[id]
	if !ok {
		r = room.New(id, g, g.logger)
		g.rooms[id] = r
		g.activeRooms.Add(1)
		g.logger.Info("Room created", zap.String("RoomID", id))
	}
	return r
}

// GetOrCreate validates rawID and returns the existing room or a new empty
// one.
func (g *Registry) GetOrCreate(rawID string) (*room.Room, error) {
	id, err := CanonicalRoomID(rawID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getOrCreateLocked(id), nil
}

// Get looks up an existing room.
func (g *Registry) Get(rawID string) (*room.Room, error) {
	id, err := CanonicalRoomID(rawID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Join finds or creates the room and seats connID in it.
func (g *Registry) Join(rawID, connID, nickname string, out *broadcast.Client) (*room.Room, room.Participant, models.RoomState, error) {
	id, err := CanonicalRoomID(rawID)
	if err != nil {
		return nil, room.Participant{}, models.RoomState{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	r := g.getOrCreateLocked(id)
	p, state := r.Join(connID, nickname, out)
	return r, p, state, nil
}

// Leave removes connID from r and destroys r if it became empty. It reports
// whether the room was destroyed.
func (g *Registry) Leave(r *room.Room, connID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, empty := r.Leave(connID)
	if empty {
		g.destroyLocked(r)
	}
	return empty
}

// Destroy removes the room with the given id; it is idempotent.
func (g *Registry) Destroy(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[id]; ok {
		g.destroyLocked(r)
	}
}

func (g *Registry) destroyLocked(r *room.Room) {
	if cur, ok := g.rooms[r.ID]; ok && cur == r {
		delete(g.rooms, r.ID)
		g.activeRooms.Add(-1)
		g.logger.Info("Room destroyed", zap.String("RoomID", r.ID))
	}
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Shutdown closes every participant queue so that each connection winds
// down through its own leave path.
func (g *Registry) Shutdown() {
	g.mu.Lock()
	rooms := make([]*room.Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()

	for _, r := range rooms {
		r.CloseAll()
	}
	g.logger.Info("Registry shut down", zap.Int("rooms", len(rooms)))
}

// Stats returns the process-wide counters.
func (g *Registry) Stats() models.GlobalOnline {
	return models.GlobalOnline{
		TotalConnections: g.TotalConnections(),
		Rooms:            g.ActiveRooms(),
	}
}
