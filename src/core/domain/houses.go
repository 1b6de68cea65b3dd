package domain

// House is a team-grouping category. The enumeration is fixed but grows from
// three to four houses at the elimination transition.
type House string

const (
	HouseGryffindor House = "Gryffindor"
	HouseSlytherin  House = "Slytherin"
	HouseRavenclaw  House = "Ravenclaw"
	HouseHufflepuff House = "Hufflepuff"
)

// HufflepuffJoinRound is the round at which the fourth house enters the
// tournament and a standing row must exist for it.
const HufflepuffJoinRound = EliminationRound

// HousesAt returns the house enumeration in force for the given round number.
func HousesAt(roundNumber int) []House {
	houses := []House{HouseGryffindor, HouseSlytherin, HouseRavenclaw}
	if roundNumber >= HufflepuffJoinRound {
		houses = append(houses, HouseHufflepuff)
	}
	return houses
}

// ValidHouse reports whether h is a known house, regardless of round.
func ValidHouse(h House) bool {
	switch h {
	case HouseGryffindor, HouseSlytherin, HouseRavenclaw, HouseHufflepuff:
		return true
	}
	return false
}
