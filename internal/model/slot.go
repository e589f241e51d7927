package model

import "time"

// Slot is one hour-granular bookable unit of room-time from the remote
// availability grid. Slots are snapshots fetched fresh on every check: the
// checksum is single-use and tied to the exact start/end pair, so a slot is
// never cached across requests.
type Slot struct {
	RoomID      int       `json:"itemId" bson:"item_id"`
	Start       time.Time `json:"start" bson:"start"`
	End         time.Time `json:"end" bson:"end"`
	Checksum    string    `json:"checksum" bson:"checksum"`
	Available   bool      `json:"available" bson:"available"`
	DisplayTime string    `json:"displayTime" bson:"display_time"`
}

// RunStart returns the start of a contiguous slot run.
func RunStart(run []Slot) time.Time {
	if len(run) == 0 {
		return time.Time{}
	}
	return run[0].Start
}

// RunEnd returns the end of a contiguous slot run.
func RunEnd(run []Slot) time.Time {
	if len(run) == 0 {
		return time.Time{}
	}
	return run[len(run)-1].End
}
