package finder

import (
	"testing"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
)

func slotAt(roomID int, start time.Time, available bool) model.Slot {
	return model.Slot{
		RoomID:    roomID,
		Start:     start,
		End:       start.Add(time.Hour),
		Checksum:  "cs",
		Available: available,
	}
}

func TestFind_SingleHourRun(t *testing.T) {
	start := time.Date(2026, 9, 15, 14, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		101: {
			slotAt(101, start.Add(-time.Hour), true),
			slotAt(101, start, true),
			slotAt(101, start.Add(time.Hour), false),
		},
	}

	run := Find(grid, start, 1)
	if run == nil {
		t.Fatal("expected a run, got nil")
	}
	if len(run) != 1 {
		t.Fatalf("expected run of 1 slot, got %d", len(run))
	}
	if !run[0].Start.Equal(start) {
		t.Errorf("run starts at %v, want %v", run[0].Start, start)
	}
}

func TestFind_BackToBackSlotsFormRun(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {
			slotAt(202, start, true),
			slotAt(202, start.Add(time.Hour), true),
		},
	}

	run := Find(grid, start, 2)
	if len(run) != 2 {
		t.Fatalf("expected run of 2 slots, got %d", len(run))
	}
	if !run[1].Start.Equal(run[0].End) {
		t.Errorf("second slot start %v does not abut first slot end %v", run[1].Start, run[0].End)
	}
}

func TestFind_GapBreaksRun(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {
			slotAt(202, start, true),
			// 11:00 missing, 12:00 available
			slotAt(202, start.Add(2*time.Hour), true),
		},
	}

	if run := Find(grid, start, 2); run != nil {
		t.Fatalf("expected nil run across a gap, got %d slots", len(run))
	}
}

func TestFind_UnavailableSlotBreaksRun(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {
			slotAt(202, start, true),
			slotAt(202, start.Add(time.Hour), false),
			slotAt(202, start.Add(2*time.Hour), true),
		},
	}

	if run := Find(grid, start, 2); run != nil {
		t.Fatalf("expected nil run through an unavailable slot, got %d slots", len(run))
	}
}

func TestFind_RequiresExactStart(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {
			slotAt(202, start.Add(time.Hour), true),
			slotAt(202, start.Add(2*time.Hour), true),
		},
	}

	if run := Find(grid, start, 2); run != nil {
		t.Fatal("expected nil run when no slot starts at the requested time")
	}
}

func TestFind_PicksLowestRoomID(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		305: {
			slotAt(305, start, true),
			slotAt(305, start.Add(time.Hour), true),
		},
		102: {
			slotAt(102, start, true),
			slotAt(102, start.Add(time.Hour), true),
		},
	}

	run := Find(grid, start, 2)
	if len(run) != 2 {
		t.Fatalf("expected run of 2 slots, got %d", len(run))
	}
	if run[0].RoomID != 102 {
		t.Errorf("expected lowest room id 102, got %d", run[0].RoomID)
	}
}

func TestFind_SkipsRoomWithPartialRun(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		102: {
			slotAt(102, start, true),
			slotAt(102, start.Add(time.Hour), false),
		},
		305: {
			slotAt(305, start, true),
			slotAt(305, start.Add(time.Hour), true),
		},
	}

	run := Find(grid, start, 2)
	if len(run) != 2 {
		t.Fatalf("expected run of 2 slots, got %d", len(run))
	}
	if run[0].RoomID != 305 {
		t.Errorf("expected fallback to room 305, got %d", run[0].RoomID)
	}
}

func TestFind_UnsortedSlotsAreOrdered(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {
			slotAt(202, start.Add(time.Hour), true),
			slotAt(202, start, true),
		},
	}

	run := Find(grid, start, 2)
	if len(run) != 2 {
		t.Fatalf("expected run of 2 slots, got %d", len(run))
	}
	if !run[0].Start.Equal(start) {
		t.Errorf("run starts at %v, want %v", run[0].Start, start)
	}
}

func TestFind_NonPositiveDuration(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	grid := map[int][]model.Slot{
		202: {slotAt(202, start, true)},
	}

	if run := Find(grid, start, 0); run != nil {
		t.Fatal("expected nil run for zero duration")
	}
	if run := Find(grid, start, -1); run != nil {
		t.Fatal("expected nil run for negative duration")
	}
}
