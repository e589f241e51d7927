// Package finder locates consecutive runs of available slots in a parsed
// availability grid.
package finder

import (
	"sort"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

// Find returns the first run of durationHours back-to-back available slots
// starting exactly at start, searching rooms in ascending id order so results
// are deterministic for a given grid. Returns nil when no room has such a
// run or the duration is not positive.
func Find(slotsByRoom map[int][]model.Slot, start time.Time, durationHours int) []model.Slot {
	if durationHours <= 0 {
		return nil
	}

	roomIDs := make([]int, 0, len(slotsByRoom))
	for id := range slotsByRoom {
		roomIDs = append(roomIDs, id)
	}
	sort.Ints(roomIDs)

	for _, roomID := range roomIDs {
		if run := findInRoom(slotsByRoom[roomID], start, durationHours); run != nil {
			return run
		}
	}

	return nil
}

func findInRoom(slots []model.Slot, start time.Time, durationHours int) []model.Slot {
	available := make([]model.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Start.Before(available[j].Start)
	})

	for i, s := range available {
		if !s.Start.Equal(start) {
			continue
		}

		run := []model.Slot{s}
		for j := i + 1; j < len(available) && len(run) < durationHours; j++ {
			last := run[len(run)-1]
			if !available[j].Start.Equal(last.End) {
				break
			}
			run = append(run, available[j])
		}

		if len(run) == durationHours {
			return run
		}
		// Only one slot can start at the requested time.
		return nil
	}

	return nil
}
