package calculator

import "math"

// EstimatedRoomName labels the synthetic room produced by EstimateMeasurements.
const EstimatedRoomName = "Estimated Area"

type areaRatios struct {
	walls, ceilings, trim float64
}

var (
	interiorRatios = areaRatios{walls: 2.5, ceilings: 1.0, trim: 0.5}
	exteriorRatios = areaRatios{walls: 1.8, ceilings: 0, trim: 0.3}
)

func ratiosFor(t ProjectType) areaRatios {
	switch t {
	case ProjectExterior:
		return exteriorRatios
	case ProjectBoth:
		return areaRatios{
			walls:    interiorRatios.walls + exteriorRatios.walls,
			ceilings: interiorRatios.ceilings + exteriorRatios.ceilings,
			trim:     interiorRatios.trim + exteriorRatios.trim,
		}
	default:
		return interiorRatios
	}
}

// EstimateMeasurements derives wall, ceiling and trim areas from a single
// total square footage. The sign of totalSqft is not checked here.
func EstimateMeasurements(totalSqft float64, projectType ProjectType) ProjectMeasurements {
	r := ratiosFor(projectType)
	walls := math.Round(totalSqft * r.walls)
	ceilings := math.Round(totalSqft * r.ceilings)
	trim := math.Round(totalSqft * r.trim)

	return ProjectMeasurements{
		TotalWallsSqft:    walls,
		TotalCeilingsSqft: ceilings,
		TotalTrimSqft:     trim,
		Rooms: []RoomMeasurements{{
			Name:                  EstimatedRoomName,
			WallsSquareFootage:    walls,
			CeilingsSquareFootage: ceilings,
			TrimSquareFootage:     trim,
		}},
	}
}

// MeasurementsFromRooms sums a room-by-room breakdown into totals.
func MeasurementsFromRooms(rooms []RoomMeasurements) ProjectMeasurements {
	m := ProjectMeasurements{Rooms: append([]RoomMeasurements(nil), rooms...)}
	for _, room := range rooms {
		m.TotalWallsSqft += room.WallsSquareFootage
		m.TotalCeilingsSqft += room.CeilingsSquareFootage
		m.TotalTrimSqft += room.TrimSquareFootage
	}
	return m
}

// DefaultSqftPerCrewDay is the area a crew is assumed to finish in one day.
const DefaultSqftPerCrewDay = 1500.0

// EstimateCrewDays returns an informational day count for the job. It never
// feeds into pricing.
func EstimateCrewDays(m ProjectMeasurements, sqftPerDay float64) int {
	if sqftPerDay <= 0 {
		sqftPerDay = DefaultSqftPerCrewDay
	}
	total := m.TotalSqft()
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(total / sqftPerDay))
}
