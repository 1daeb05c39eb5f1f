package calculator

import (
	"fmt"
	"math"
)

// ValidateMeasurements checks measurements for sanity. Negative areas are
// errors; unusual sizes and rooms that do not add up to the totals are
// warnings. It never blocks a calculation; callers decide what to surface.
func ValidateMeasurements(m ProjectMeasurements, th Thresholds) ValidationResult {
	result := ValidationResult{
		Warnings: []string{},
		Errors:   []string{},
	}

	surfaces := []struct {
		name  string
		total float64
		max   float64
		rooms func(RoomMeasurements) float64
	}{
		{"walls", m.TotalWallsSqft, th.MaxWallsSqft, func(r RoomMeasurements) float64 { return r.WallsSquareFootage }},
		{"ceilings", m.TotalCeilingsSqft, th.MaxCeilingsSqft, func(r RoomMeasurements) float64 { return r.CeilingsSquareFootage }},
		{"trim", m.TotalTrimSqft, th.MaxTrimSqft, func(r RoomMeasurements) float64 { return r.TrimSquareFootage }},
	}

	for _, s := range surfaces {
		if s.total < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s square footage cannot be negative", s.name))
			continue
		}
		if s.total > s.max {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s square footage (%.0f) is unusually large", s.name, s.total))
		}

		if len(m.Rooms) == 0 {
			continue
		}
		var roomSum float64
		for _, room := range m.Rooms {
			roomSum += s.rooms(room)
		}
		if diverges(roomSum, s.total, th.RoomSumTolerance) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("room %s total (%.0f) does not match project total (%.0f)", s.name, roomSum, s.total))
		}
	}

	if m.TotalWallsSqft >= 0 && m.TotalWallsSqft < th.MinWallsSqft {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("walls square footage (%.0f) is unusually small", m.TotalWallsSqft))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func diverges(roomSum, total, tolerance float64) bool {
	if total == 0 {
		return roomSum != 0
	}
	return math.Abs(roomSum-total)/math.Abs(total) > tolerance
}
