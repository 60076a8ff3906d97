package ws

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/hexfield-game/server/internal/game"
)

// ConnCtx is the per-connection state the gateway tracks: which room the
// connection belongs to and which participant it speaks for. The
// participant id is assigned at join and survives transport reconnects via
// the rejoin event.
type ConnCtx struct {
	RoomID        string
	ParticipantID string
}

// Server adapts socket events to registry and room operations and fans the
// resulting notifications back out. It keeps no game state of its own
// beyond room membership.
type Server struct {
	Registry *game.Registry

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // room code -> socket id -> conn
}

func New(reg *game.Registry) *Server {
	return &Server{Registry: reg, members: make(map[string]map[string]socketio.Conn)}
}

// Mount attaches the Socket.IO server with all lobby handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "join", func(s socketio.Conn, payload struct {
		Nickname       string `json:"nickname"`
		DesiredPlayers int    `json:"desiredPlayers"`
	}) map[string]any {
		room, res, err := srv.Registry.Join(payload.Nickname, payload.DesiredPlayers)
		if err != nil {
			return srv.err(s, "invalid_player_count", err.Error())
		}
		s.SetContext(&ConnCtx{RoomID: room.Code, ParticipantID: res.Participant.ID})
		s.Join(room.Code)
		srv.addMember(room.Code, s)
		log.Info().Str("sid", s.ID()).Str("room", room.Code).Str("playerId", res.Participant.ID).Msg("join")

		io.BroadcastToRoom("/", room.Code, "lobbyState", map[string]any{
			"roomId":  room.Code,
			"players": res.Players,
			"needed":  res.Needed,
		})
		switch res.Phase {
		case game.PhaseMapVote:
			io.BroadcastToRoom("/", room.Code, "voteMap", map[string]any{"options": game.MapOptions})
		case game.PhaseMapChoice:
			s.Emit("singlePlayerChoose", map[string]any{"options": game.MapOptions})
		}
		return map[string]any{"roomId": room.Code, "playerId": res.Participant.ID}
	})

	// rejoin re-attaches a connection to its room's multicast group after a
	// transport drop. No room state changes. The room may already be gone
	// from the registry (games outlive their lobby), so membership counts
	// as liveness too.
	io.OnEvent("/", "rejoin", func(s socketio.Conn, payload struct {
		RoomID string `json:"roomId"`
	}) {
		if !srv.knownRoom(payload.RoomID) {
			srv.drop("rejoin", payload.RoomID, game.ErrRoomNotFound)
			return
		}
		ctx, _ := s.Context().(*ConnCtx)
		if ctx == nil {
			ctx = &ConnCtx{}
		}
		ctx.RoomID = payload.RoomID
		s.SetContext(ctx)
		s.Join(payload.RoomID)
		srv.addMember(payload.RoomID, s)
		log.Info().Str("sid", s.ID()).Str("room", payload.RoomID).Msg("rejoin")
	})

	io.OnEvent("/", "vote", func(s socketio.Conn, payload struct {
		RoomID  string `json:"roomId"`
		MapType string `json:"mapType"`
	}) {
		room, err := srv.Registry.Get(payload.RoomID)
		if err != nil {
			srv.drop("vote", payload.RoomID, err)
			return
		}
		ctx, _ := s.Context().(*ConnCtx)
		if ctx == nil {
			return
		}
		out, err := room.SubmitVote(ctx.ParticipantID, payload.MapType)
		if err != nil {
			srv.drop("vote", payload.RoomID, err)
			return
		}
		log.Info().Str("room", room.Code).Str("mapType", payload.MapType).Msg("vote")
		if out.Complete {
			srv.emitDraftState(room.Code, out.Draft)
		}
	})

	io.OnEvent("/", "singleChoice", func(s socketio.Conn, payload struct {
		RoomID  string `json:"roomId"`
		MapType string `json:"mapType"`
	}) {
		room, err := srv.Registry.Get(payload.RoomID)
		if err != nil {
			srv.drop("singleChoice", payload.RoomID, err)
			return
		}
		start, err := room.ChooseMapSingle(payload.MapType)
		if err != nil {
			srv.drop("singleChoice", payload.RoomID, err)
			return
		}
		log.Info().Str("room", room.Code).Str("mapType", payload.MapType).Msg("singleChoice")
		s.Emit("gameStart", start)
		srv.finishRoom(room.Code)
	})

	io.OnEvent("/", "pickFaction", func(s socketio.Conn, payload struct {
		RoomID    string `json:"roomId"`
		FactionID int    `json:"factionId"`
	}) {
		room, err := srv.Registry.Get(payload.RoomID)
		if err != nil {
			srv.drop("pickFaction", payload.RoomID, err)
			return
		}
		ctx, _ := s.Context().(*ConnCtx)
		if ctx == nil {
			return
		}
		out, err := room.DraftFaction(ctx.ParticipantID, payload.FactionID)
		if err != nil {
			srv.drop("pickFaction", payload.RoomID, err)
			return
		}
		log.Info().Str("room", room.Code).Int("factionId", payload.FactionID).Msg("pickFaction")
		if !out.Complete {
			srv.emitDraftState(room.Code, out.Draft)
			return
		}
		srv.emitGameStarts(room.Code, out.Starts)
		srv.finishRoom(room.Code)
	})

	// In-game relay events carry no lobby logic: forward to the rest of the
	// room verbatim.
	for _, event := range []string{"workerPlaced", "townPlaced"} {
		event := event
		io.OnEvent("/", event, func(s socketio.Conn, payload map[string]any) {
			ctx, _ := s.Context().(*ConnCtx)
			if ctx == nil || ctx.RoomID == "" {
				return
			}
			srv.relayToOthers(ctx.RoomID, s.ID(), event, payload)
		})
	}

	io.OnEvent("/", "productionTick", func(s socketio.Conn, payload map[string]any) {
		roomID, _ := payload["roomId"].(string)
		if roomID == "" {
			if ctx, _ := s.Context().(*ConnCtx); ctx != nil {
				roomID = ctx.RoomID
			}
		}
		if roomID == "" {
			return
		}
		srv.broadcast(roomID, "productionTickAck", payload)
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok && ctx != nil && ctx.RoomID != "" {
			srv.removeMember(ctx.RoomID, s)
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	return io
}

func (srv *Server) addMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
		if len(m) == 0 {
			delete(srv.members, code)
		}
	}
}

// knownRoom reports whether a room id refers to anything live: a lobby
// still in the registry, or an in-flight game whose connections the
// gateway still tracks.
func (srv *Server) knownRoom(code string) bool {
	if _, err := srv.Registry.Get(code); err == nil {
		return true
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.members[code]) > 0
}

func (srv *Server) roomConns(code string) []socketio.Conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	out := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		out = append(out, c)
	}
	return out
}

// emitDraftState personalizes the chooseFaction broadcast: everyone sees
// the same available set, exactly one connection sees isTurn true.
func (srv *Server) emitDraftState(code string, st *game.DraftState) {
	for _, c := range srv.roomConns(code) {
		ctx, _ := c.Context().(*ConnCtx)
		isTurn := ctx != nil && ctx.ParticipantID == st.CurrentID
		c.Emit("chooseFaction", map[string]any{
			"available": st.Available,
			"isTurn":    isTurn,
		})
	}
}

// emitGameStarts unicasts each participant their own descriptor; map, seed
// and turn order are shared, factionId is theirs.
func (srv *Server) emitGameStarts(code string, starts []game.GameStart) {
	byParticipant := make(map[string]game.GameStart, len(starts))
	for _, st := range starts {
		byParticipant[st.ParticipantID] = st
	}
	for _, c := range srv.roomConns(code) {
		ctx, _ := c.Context().(*ConnCtx)
		if ctx == nil {
			continue
		}
		if st, ok := byParticipant[ctx.ParticipantID]; ok {
			c.Emit("gameStart", st)
		}
	}
}

func (srv *Server) relayToOthers(code, senderID, event string, payload map[string]any) {
	for _, c := range srv.roomConns(code) {
		if c.ID() == senderID {
			continue
		}
		c.Emit(event, payload)
	}
}

func (srv *Server) broadcast(code, event string, payload map[string]any) {
	for _, c := range srv.roomConns(code) {
		c.Emit(event, payload)
	}
}

// finishRoom retires the lobby the instant the game-start descriptor is
// out: no room persists past game start. Gateway membership stays — the
// in-game relay events arrive after this point and still need the group;
// OnDisconnect prunes it as connections drop.
func (srv *Server) finishRoom(code string) {
	srv.Registry.Remove(code)
	log.Info().Str("room", code).Msg("game started, room removed")
}

// drop logs a silently ignored event. Stale rooms, out-of-turn picks and
// taken factions get no reply; the next authoritative broadcast the client
// already receives doubles as the rejection signal.
func (srv *Server) drop(event, roomID string, err error) {
	if errors.Is(err, game.ErrRoomNotFound) {
		log.Debug().Str("event", event).Str("room", roomID).Msg("event for unknown room dropped")
		return
	}
	log.Debug().Str("event", event).Str("room", roomID).Err(err).Msg("event dropped")
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
