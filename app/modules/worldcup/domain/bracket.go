package worldcupdomain

import (
	"fmt"
	"math/bits"
)

// CompetitorID identifies a competitor in the persistent store.
type CompetitorID int64

// Competitor is a snapshot of a stored competitor taken when a tournament starts.
type Competitor struct {
	ID         CompetitorID `json:"id"`
	Name       string       `json:"name"`
	NameEn     string       `json:"name_en,omitempty"`
	Brand      string       `json:"brand,omitempty"`
	ImageURL   string       `json:"image_url"`
	Rating     float64      `json:"rating"`
	MatchCount int          `json:"match_count"`
	LastDelta  float64      `json:"last_delta"`
}

// Match pairs two competitors. Winner stays nil until the match is decided.
type Match struct {
	SlotA  Competitor  `json:"slot_a"`
	SlotB  Competitor  `json:"slot_b"`
	Winner *Competitor `json:"winner,omitempty"`
}

// Decided reports whether a winner has been recorded.
func (m Match) Decided() bool {
	return m.Winner != nil
}

// Contains reports whether id occupies either slot.
func (m Match) Contains(id CompetitorID) bool {
	return m.SlotA.ID == id || m.SlotB.ID == id
}

// Opponent returns the competitor facing id.
func (m Match) Opponent(id CompetitorID) (Competitor, bool) {
	switch id {
	case m.SlotA.ID:
		return m.SlotB, true
	case m.SlotB.ID:
		return m.SlotA, true
	}
	return Competitor{}, false
}

// Round is an ordered list of matches.
type Round struct {
	Matches []Match `json:"matches"`
}

// TournamentState is the full bracket of one single-elimination run.
// Rounds accumulate: earlier rounds keep their recorded winners.
type TournamentState struct {
	Rounds       []Round `json:"rounds"`
	CurrentRound int     `json:"current_round"`
	CurrentMatch int     `json:"current_match"`
	TotalRounds  int     `json:"total_rounds"`
	// Version counts decisions and guards conditional session writes.
	Version int64 `json:"version"`
}

// IsValidBracketSize reports whether size is a power of two >= 2.
func IsValidBracketSize(size int) bool {
	return size >= 2 && size&(size-1) == 0
}

// NewTournament shuffles pool, keeps the first size competitors and pairs them
// consecutively into the opening round. The caller's pool is not modified.
func NewTournament(pool []Competitor, size int, shuffler Shuffler) (*TournamentState, error) {
	if !IsValidBracketSize(size) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBracketSize, size)
	}
	if len(pool) < size {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPoolTooSmall, size, len(pool))
	}
	if shuffler == nil {
		shuffler = NewDefaultShuffler()
	}

	shuffled := make([]Competitor, len(pool))
	copy(shuffled, pool)
	shuffler.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return &TournamentState{
		Rounds:       []Round{{Matches: pairConsecutive(shuffled[:size])}},
		CurrentRound: 0,
		CurrentMatch: 0,
		TotalRounds:  bits.TrailingZeros(uint(size)),
	}, nil
}

func pairConsecutive(competitors []Competitor) []Match {
	matches := make([]Match, 0, len(competitors)/2)
	for i := 0; i+1 < len(competitors); i += 2 {
		matches = append(matches, Match{SlotA: competitors[i], SlotB: competitors[i+1]})
	}
	return matches
}

// Size is the number of competitors that entered the bracket.
func (s *TournamentState) Size() int {
	if len(s.Rounds) == 0 {
		return 0
	}
	return len(s.Rounds[0].Matches) * 2
}

// IsComplete is true once the last round holds a single decided match.
func (s *TournamentState) IsComplete() bool {
	if len(s.Rounds) == 0 {
		return false
	}
	last := s.Rounds[len(s.Rounds)-1]
	return len(last.Matches) == 1 && last.Matches[0].Decided()
}

// Winner returns the champion once the tournament is complete.
func (s *TournamentState) Winner() (Competitor, bool) {
	if !s.IsComplete() {
		return Competitor{}, false
	}
	return *s.Rounds[len(s.Rounds)-1].Matches[0].Winner, true
}

// PendingMatch returns the match awaiting a decision, or false when the tournament is complete.
func (s *TournamentState) PendingMatch() (Match, bool) {
	if s.IsComplete() || !s.inBounds() {
		return Match{}, false
	}
	return s.Rounds[s.CurrentRound].Matches[s.CurrentMatch], true
}

// RoundSize is the number of competitors still alive in the current round.
func (s *TournamentState) RoundSize() int {
	if s.CurrentRound < 0 || s.CurrentRound >= len(s.Rounds) {
		return 0
	}
	return len(s.Rounds[s.CurrentRound].Matches) * 2
}

// RoundLabel renders RoundSize in the "N강" form used on the play screen.
func (s *TournamentState) RoundLabel() string {
	return fmt.Sprintf("%d강", s.RoundSize())
}

// Advance records winnerID on the current match and returns the next state.
// The receiver is never modified.
func (s *TournamentState) Advance(winnerID CompetitorID) (*TournamentState, error) {
	if s.IsComplete() {
		return nil, ErrTournamentComplete
	}
	if !s.inBounds() {
		return nil, ErrCorruptState
	}

	next := s.Clone()
	round := &next.Rounds[next.CurrentRound]
	match := &round.Matches[next.CurrentMatch]

	switch winnerID {
	case match.SlotA.ID:
		w := match.SlotA
		match.Winner = &w
	case match.SlotB.ID:
		w := match.SlotB
		match.Winner = &w
	default:
		return nil, fmt.Errorf("%w: competitor %d", ErrWinnerNotInMatch, winnerID)
	}

	next.Version++

	if next.CurrentMatch < len(round.Matches)-1 {
		next.CurrentMatch++
		return next, nil
	}

	winners := make([]Competitor, 0, len(round.Matches))
	for _, m := range round.Matches {
		winners = append(winners, *m.Winner)
	}
	if len(winners) > 1 {
		next.Rounds = append(next.Rounds, Round{Matches: pairConsecutive(winners)})
		next.CurrentRound++
		next.CurrentMatch = 0
	}
	return next, nil
}

// Clone returns a deep copy that shares no slices or winner pointers with s.
func (s *TournamentState) Clone() *TournamentState {
	out := &TournamentState{
		Rounds:       make([]Round, len(s.Rounds)),
		CurrentRound: s.CurrentRound,
		CurrentMatch: s.CurrentMatch,
		TotalRounds:  s.TotalRounds,
		Version:      s.Version,
	}
	for i, r := range s.Rounds {
		matches := make([]Match, len(r.Matches))
		for j, m := range r.Matches {
			matches[j] = Match{SlotA: m.SlotA, SlotB: m.SlotB}
			if m.Winner != nil {
				w := *m.Winner
				matches[j].Winner = &w
			}
		}
		out.Rounds[i] = Round{Matches: matches}
	}
	return out
}

// Validate checks the structure of a state that came from outside the process,
// such as a session store.
func (s *TournamentState) Validate() error {
	if len(s.Rounds) == 0 {
		return fmt.Errorf("%w: no rounds", ErrCorruptState)
	}
	if !IsValidBracketSize(s.Size()) || s.TotalRounds != bits.TrailingZeros(uint(s.Size())) {
		return fmt.Errorf("%w: bracket size %d with %d total rounds", ErrCorruptState, s.Size(), s.TotalRounds)
	}
	if s.CurrentRound != len(s.Rounds)-1 || !s.inBounds() {
		return fmt.Errorf("%w: position round=%d match=%d", ErrCorruptState, s.CurrentRound, s.CurrentMatch)
	}
	for i, r := range s.Rounds {
		if want := s.Size() >> i; len(r.Matches)*2 != want {
			return fmt.Errorf("%w: round %d has %d matches", ErrCorruptState, i, len(r.Matches))
		}
		for _, m := range r.Matches {
			if m.Winner != nil && !m.Contains(m.Winner.ID) {
				return fmt.Errorf("%w: winner %d not in match", ErrCorruptState, m.Winner.ID)
			}
		}
	}
	return nil
}

func (s *TournamentState) inBounds() bool {
	return s.CurrentRound >= 0 && s.CurrentRound < len(s.Rounds) &&
		s.CurrentMatch >= 0 && s.CurrentMatch < len(s.Rounds[s.CurrentRound].Matches)
}
