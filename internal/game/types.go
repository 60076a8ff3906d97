package game

import (
	"errors"
)

type Phase string

const (
	PhaseWaiting   Phase = "Waiting"
	PhaseMapVote   Phase = "MapVote"
	PhaseMapChoice Phase = "MapChoice"
	PhaseDraft     Phase = "Draft"
	PhaseDone      Phase = "Done"
)

// MapOptions is the catalog offered in voteMap / singlePlayerChoose prompts.
var MapOptions = []string{"hexagon", "star", "thin"}

// FactionCount is the size of the faction universe {1..FactionCount}.
// A room can never hold more participants than factions.
const FactionCount = 8

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrInvalidPhase       = errors.New("invalid phase for action")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrFactionTaken       = errors.New("faction not available")
	ErrInvalidPlayerCount = errors.New("desired player count out of range")
)

type Participant struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Faction  int    `json:"factionId,omitempty"`
}

// Ballot is one participant's current map vote. Ballots keep their arrival
// order; a re-vote overwrites the choice in place.
type Ballot struct {
	VoterID string
	Choice  string
}

// JoinResult describes a room right after a participant was admitted.
type JoinResult struct {
	Participant *Participant
	Players     []string
	Needed      int
	Phase       Phase
}

// DraftState is broadcast after entering the draft and after every pick.
type DraftState struct {
	Available []int
	CurrentID string
}

type VoteOutcome struct {
	Complete bool
	Draft    *DraftState
}

type PickOutcome struct {
	Complete bool
	Draft    *DraftState
	Starts   []GameStart
}

// GameStart is the per-participant game-start descriptor. Every participant
// of a room receives the same map, seed and turn order; FactionID is their
// own.
type GameStart struct {
	ParticipantID string `json:"-"`
	RoomID        string `json:"roomId"`
	MapType       string `json:"mapType"`
	FactionID     int    `json:"factionId"`
	Seed          uint32 `json:"seed"`
	TurnOrder     []int  `json:"turnOrder"`
}
