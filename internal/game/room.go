package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Room is one matchmaking unit, from first join through game start. All
// mutations funnel through its methods and are serialized by mu; different
// rooms share nothing. Phase-specific fields (ballots, draft state) are
// legitimately zero outside their phase.
type Room struct {
	Code   string
	Target int

	mu           sync.Mutex
	phase        Phase
	participants []*Participant
	ballots      []Ballot
	mapType      string
	seed         uint32
	seeded       bool
	order        []*Participant
	pointer      int
	available    map[int]bool
	createdAt    time.Time
	lastActivity time.Time
}

func newRoom(code string, target int) *Room {
	now := time.Now().UTC()
	return &Room{
		Code:         code,
		Target:       target,
		phase:        PhaseWaiting,
		createdAt:    now,
		lastActivity: now,
	}
}

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *Room) Participants() []*Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Participant, len(r.participants))
	for i, p := range r.participants {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Seed reports the shared seed and whether it has been fixed yet.
func (r *Room) Seed() (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seed, r.seeded
}

func (r *Room) IdleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActivity
}

// open reports whether the room still accepts joiners. Only the registry
// calls this, under its own lock, so join admission stays atomic per size
// class.
func (r *Room) open(target int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == PhaseWaiting && r.Target == target && len(r.participants) < r.Target
}

// join admits a participant and, once the room is full, advances to the map
// vote (or the single-player map choice).
func (r *Room) join(nickname string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseWaiting {
		return JoinResult{}, ErrInvalidPhase
	}
	if len(r.participants) >= r.Target {
		return JoinResult{}, ErrRoomFull
	}
	p := &Participant{ID: uuid.NewString(), Nickname: nickname}
	r.participants = append(r.participants, p)
	r.touch()

	if len(r.participants) == r.Target {
		if r.Target == 1 {
			r.phase = PhaseMapChoice
		} else {
			r.phase = PhaseMapVote
		}
	}

	players := make([]string, len(r.participants))
	for i, q := range r.participants {
		players[i] = q.Nickname
	}
	return JoinResult{Participant: p, Players: players, Needed: r.Target, Phase: r.phase}, nil
}

// SubmitVote records (or overwrites) a participant's map vote. When every
// participant has voted, the tally is resolved, map and seed are fixed, the
// draft order is shuffled, and the room enters the draft.
func (r *Room) SubmitVote(participantID, mapType string) (VoteOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseMapVote {
		return VoteOutcome{}, ErrInvalidPhase
	}
	if r.byID(participantID) == nil {
		return VoteOutcome{}, ErrUnknownParticipant
	}
	replaced := false
	for i := range r.ballots {
		if r.ballots[i].VoterID == participantID {
			r.ballots[i].Choice = mapType
			replaced = true
			break
		}
	}
	if !replaced {
		r.ballots = append(r.ballots, Ballot{VoterID: participantID, Choice: mapType})
	}
	r.touch()

	if len(r.ballots) < len(r.participants) {
		return VoteOutcome{}, nil
	}

	r.setMap(Tally(r.ballots))
	r.order = draftOrder(r.participants)
	r.pointer = 0
	r.available = make(map[int]bool, FactionCount)
	for f := 1; f <= FactionCount; f++ {
		r.available[f] = true
	}
	r.phase = PhaseDraft
	return VoteOutcome{Complete: true, Draft: r.draftState()}, nil
}

// ChooseMapSingle is the single-participant shortcut: no vote, no draft.
// The sole participant gets the first faction and an immediate game start.
func (r *Room) ChooseMapSingle(mapType string) (GameStart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseMapChoice {
		return GameStart{}, ErrInvalidPhase
	}
	r.setMap(mapType)
	p := r.participants[0]
	p.Faction = 1
	r.phase = PhaseDone
	return GameStart{
		ParticipantID: p.ID,
		RoomID:        r.Code,
		MapType:       r.mapType,
		FactionID:     p.Faction,
		Seed:          r.seed,
		TurnOrder:     []int{p.Faction},
	}, nil
}

// DraftFaction applies one draft pick. Only the participant at the draft
// pointer may pick, and only a still-available faction; anything else is
// rejected without a state change. The final pick computes the in-game turn
// order (ascending faction id, independent of pick order) and completes the
// room.
func (r *Room) DraftFaction(participantID string, factionID int) (PickOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseDraft {
		return PickOutcome{}, ErrInvalidPhase
	}
	if r.order[r.pointer].ID != participantID {
		return PickOutcome{}, ErrNotYourTurn
	}
	if !r.available[factionID] {
		return PickOutcome{}, ErrFactionTaken
	}
	r.order[r.pointer].Faction = factionID
	delete(r.available, factionID)
	r.pointer++
	r.touch()

	if r.pointer < len(r.order) {
		return PickOutcome{Draft: r.draftState()}, nil
	}

	turnOrder := make([]int, len(r.participants))
	for i, p := range r.participants {
		turnOrder[i] = p.Faction
	}
	sort.Ints(turnOrder)

	starts := make([]GameStart, len(r.participants))
	for i, p := range r.participants {
		starts[i] = GameStart{
			ParticipantID: p.ID,
			RoomID:        r.Code,
			MapType:       r.mapType,
			FactionID:     p.Faction,
			Seed:          r.seed,
			TurnOrder:     turnOrder,
		}
	}
	r.phase = PhaseDone
	return PickOutcome{Complete: true, Starts: starts}, nil
}

// setMap fixes map type and seed. Both are write-once for the life of the
// room; the phase checks in the callers make a second write unreachable.
func (r *Room) setMap(mapType string) {
	r.mapType = mapType
	if !r.seeded {
		r.seed = newSeed()
		r.seeded = true
	}
}

func (r *Room) draftState() *DraftState {
	avail := make([]int, 0, len(r.available))
	for f := range r.available {
		avail = append(avail, f)
	}
	sort.Ints(avail)
	return &DraftState{Available: avail, CurrentID: r.order[r.pointer].ID}
}

func (r *Room) byID(id string) *Participant {
	for _, p := range r.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) touch() {
	r.lastActivity = time.Now().UTC()
}
