package notify

import (
	"fmt"

	"github.com/campusrooms/roomwatch/internal/model"
)

// FormatOutcomePayload creates the webhook message for a settled monitoring
// request.
func FormatOutcomePayload(req *model.MonitoringRequest, result *model.CheckResult) model.NotificationPayload {
	var text string
	switch {
	case result.Booked:
		room := 0
		if len(result.Slots) > 0 {
			room = result.Slots[0].RoomID
		}
		text = fmt.Sprintf("✅ Booked room %d on %s from %s to %s (booking id %s, after %d checks)",
			room, req.TargetDate, req.StartTime, req.EndTime, result.BookingID, req.CheckCount+1)
	case result.BookingID != "":
		text = fmt.Sprintf("✅ Booked %s %s-%s (booking id %s)",
			req.TargetDate, req.StartTime, req.EndTime, result.BookingID)
	default:
		text = fmt.Sprintf("🚨 Monitoring for %s %s-%s stopped: %s",
			req.TargetDate, req.StartTime, req.EndTime, result.Message)
	}

	return model.NotificationPayload{Text: text}
}
