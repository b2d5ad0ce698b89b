package pricing

import "github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"

// Match returns the first spec, in the order given, whose system type equals
// the measurement's. Size ranges are not consulted.
func Match(m takeoff.Measurement, specs []takeoff.Specification) (takeoff.Specification, bool) {
	for _, s := range specs {
		if s.SystemType == m.SystemType {
			return s, true
		}
	}
	return takeoff.Specification{}, false
}

// MatchCount reports how many specs share the measurement's system type.
func MatchCount(m takeoff.Measurement, specs []takeoff.Specification) int {
	n := 0
	for _, s := range specs {
		if s.SystemType == m.SystemType {
			n++
		}
	}
	return n
}
