package game

// EvaluateWinner computes the winner from the current alive-role composition.
// Conditions are checked in fixed priority order; the first match wins.
// Pure: depends only on seat roles and alive flags.
func EvaluateWinner(s *Session) Winner {
	var wolvesAlive, othersAlive int
	var plainTotal, plainAlive int
	var specialTotal, specialAlive int
	for _, seat := range s.Seats {
		switch {
		case seat.Role.IsWolf():
			if seat.IsAlive {
				wolvesAlive++
			}
		case seat.Role.IsSpecial():
			specialTotal++
			if seat.IsAlive {
				specialAlive++
				othersAlive++
			}
		default:
			plainTotal++
			if seat.IsAlive {
				plainAlive++
				othersAlive++
			}
		}
	}
	if wolvesAlive == 0 {
		return WinnerVillagers
	}
	if wolvesAlive >= othersAlive {
		return WinnerWolves
	}
	if plainTotal > 0 && plainAlive == 0 {
		return WinnerWolves
	}
	if specialTotal > 0 && specialAlive == 0 {
		return WinnerWolves
	}
	return WinnerNone
}
