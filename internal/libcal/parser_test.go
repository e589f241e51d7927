package libcal

import (
	"testing"
	"time"
)

func TestParseGrid_ClassifiesAvailability(t *testing.T) {
	booked := "s-lc-eq-checkout"
	raw := []GridSlot{
		{ItemID: 101, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00", Checksum: "abc"},
		{ItemID: 101, Start: "2026-09-15 15:00:00", End: "2026-09-15 16:00:00", Checksum: "def", ClassName: &booked},
	}

	slotsByRoom := ParseGrid(raw)
	slots := slotsByRoom[101]
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots for room 101, got %d", len(slots))
	}
	if !slots[0].Available {
		t.Error("slot without className should be available")
	}
	if slots[1].Available {
		t.Error("slot with className should be unavailable")
	}
}

func TestParseGrid_EmptyClassNameStillUnavailable(t *testing.T) {
	// The grid marks taken slots by the presence of the key, not its value.
	empty := ""
	raw := []GridSlot{
		{ItemID: 101, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00", Checksum: "abc", ClassName: &empty},
	}

	slots := ParseGrid(raw)[101]
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Available {
		t.Error("slot with empty className should still be unavailable")
	}
}

func TestParseGrid_MissingChecksumUnavailable(t *testing.T) {
	raw := []GridSlot{
		{ItemID: 101, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00"},
	}

	slots := ParseGrid(raw)[101]
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].Available {
		t.Error("slot without checksum should be unavailable")
	}
}

func TestParseGrid_DropsMalformedTimestamps(t *testing.T) {
	raw := []GridSlot{
		{ItemID: 101, Start: "not-a-time", End: "2026-09-15 15:00:00", Checksum: "abc"},
		{ItemID: 101, Start: "2026-09-15 15:00:00", End: "bogus", Checksum: "def"},
		{ItemID: 101, Start: "2026-09-15 16:00:00", End: "2026-09-15 17:00:00", Checksum: "ghi"},
	}

	slots := ParseGrid(raw)[101]
	if len(slots) != 1 {
		t.Fatalf("expected malformed slots to be dropped, got %d slots", len(slots))
	}
	if slots[0].Checksum != "ghi" {
		t.Errorf("surviving slot checksum = %q, want %q", slots[0].Checksum, "ghi")
	}
}

func TestParseGrid_GroupsByRoom(t *testing.T) {
	raw := []GridSlot{
		{ItemID: 101, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00", Checksum: "a"},
		{ItemID: 202, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00", Checksum: "b"},
		{ItemID: 101, Start: "2026-09-15 15:00:00", End: "2026-09-15 16:00:00", Checksum: "c"},
	}

	slotsByRoom := ParseGrid(raw)
	if len(slotsByRoom) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(slotsByRoom))
	}
	if len(slotsByRoom[101]) != 2 {
		t.Errorf("room 101 has %d slots, want 2", len(slotsByRoom[101]))
	}
	if len(slotsByRoom[202]) != 1 {
		t.Errorf("room 202 has %d slots, want 1", len(slotsByRoom[202]))
	}
}

func TestParseGrid_SlotFields(t *testing.T) {
	raw := []GridSlot{
		{ItemID: 101, Start: "2026-09-15 14:00:00", End: "2026-09-15 15:00:00", Checksum: "abc"},
	}

	slot := ParseGrid(raw)[101][0]
	wantStart := time.Date(2026, 9, 15, 14, 0, 0, 0, time.Local)
	if !slot.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", slot.Start, wantStart)
	}
	if !slot.End.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("end = %v, want %v", slot.End, wantStart.Add(time.Hour))
	}
	if slot.DisplayTime != "2:00 PM" {
		t.Errorf("display time = %q, want %q", slot.DisplayTime, "2:00 PM")
	}
	if slot.RoomID != 101 {
		t.Errorf("room id = %d, want 101", slot.RoomID)
	}
}
