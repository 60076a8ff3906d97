package game

// Tally resolves a map vote by plurality. Ties break in favor of whichever
// choice first reached the winning count while scanning ballots in arrival
// order, so a later option that merely equals the leader does not displace
// it. Returns "" for an empty ballot list.
func Tally(ballots []Ballot) string {
	counts := make(map[string]int, len(ballots))
	winner := ""
	best := 0
	for _, b := range ballots {
		counts[b.Choice]++
		if counts[b.Choice] > best {
			best = counts[b.Choice]
			winner = b.Choice
		}
	}
	return winner
}
