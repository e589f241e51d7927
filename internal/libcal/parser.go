package libcal

import (
	"log/slog"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

// ParseGrid classifies raw grid slots and groups them by room. A slot is
// unavailable when the grid marks it with a className key, whatever the
// value; it is bookable only when the checksum and both timestamps parse.
// Malformed slots are dropped so one bad entry cannot poison the whole grid.
func ParseGrid(raw []GridSlot) map[int][]model.Slot {
	slotsByRoom := make(map[int][]model.Slot)

	for _, gs := range raw {
		start, err := time.ParseInLocation(model.TimeLayout, gs.Start, time.Local)
		if err != nil {
			slog.Warn("Dropping slot with malformed start time",
				"room_id", gs.ItemID,
				"start", gs.Start,
			)
			continue
		}
		end, err := time.ParseInLocation(model.TimeLayout, gs.End, time.Local)
		if err != nil {
			slog.Warn("Dropping slot with malformed end time",
				"room_id", gs.ItemID,
				"end", gs.End,
			)
			continue
		}

		available := gs.ClassName == nil && gs.Checksum != "" && gs.ItemID != 0

		slotsByRoom[gs.ItemID] = append(slotsByRoom[gs.ItemID], model.Slot{
			RoomID:      gs.ItemID,
			Start:       start,
			End:         end,
			Checksum:    gs.Checksum,
			Available:   available,
			DisplayTime: start.Format("3:04 PM"),
		})
	}

	return slotsByRoom
}
