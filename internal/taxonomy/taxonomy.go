// Package taxonomy maps raw event attributes to a closed set of high-level
// categories and carries the per-category base weights used by risk scoring.
package taxonomy

// Category is a high-level human-readable event category.
type Category string

const (
	ArmedConflict        Category = "Armed Conflict"
	CivilUnrest          Category = "Civil Unrest"
	CrimeTerror          Category = "Crime / Terror"
	DiplomacySanctions   Category = "Diplomacy / Sanctions"
	EconomicDisruption   Category = "Economic Disruption"
	InfrastructureEnergy Category = "Infrastructure / Energy"
)

// All lists every known category.
var All = []Category{
	ArmedConflict,
	CivilUnrest,
	CrimeTerror,
	DiplomacySanctions,
	EconomicDisruption,
	InfrastructureEnergy,
}

// defaultWeight applies to categories outside the known set.
const defaultWeight = 10

// BaseWeight returns the risk base weight for a category. Higher means more
// severe. Unknown categories get the default weight.
func BaseWeight(c Category) float64 {
	switch c {
	case ArmedConflict:
		return 25
	case CivilUnrest:
		return 15
	case CrimeTerror:
		return 20
	case DiplomacySanctions:
		return 8
	case EconomicDisruption:
		return 12
	case InfrastructureEnergy:
		return 15
	default:
		return defaultWeight
	}
}

// Classify maps a CAMEO-style event code and quad class to a category.
// The rules are intentionally coarse but deterministic: event code prefixes
// decide first, quad class is the fallback when the code is missing or
// unmapped.
func Classify(eventCode string, quadClass *int) Category {
	if len(eventCode) >= 2 {
		prefix2 := eventCode[:2]
		prefix3 := ""
		if len(eventCode) >= 3 {
			prefix3 = eventCode[:3]
		}

		switch {
		// Military action, violent clashes
		case prefix2 == "18" || prefix2 == "19" || prefix2 == "20":
			if prefix3 == "192" || prefix3 == "193" {
				return InfrastructureEnergy
			}
			return ArmedConflict

		// Protests, demonstrations, strikes
		case prefix2 == "14":
			return CivilUnrest

		// Diplomatic pressure, sanctions
		case prefix2 == "07" || prefix2 == "08" || prefix2 == "09":
			return DiplomacySanctions

		// Boycotts, embargoes, trade disputes
		case prefix2 == "10" || prefix2 == "11":
			return EconomicDisruption

		// Coercion, non-state violence
		case prefix2 == "17":
			return CrimeTerror
		}
	}

	if quadClass != nil {
		if *quadClass == 3 || *quadClass == 4 {
			return CrimeTerror
		}
		if *quadClass == 1 || *quadClass == 2 {
			return DiplomacySanctions
		}
	}

	return CivilUnrest
}
