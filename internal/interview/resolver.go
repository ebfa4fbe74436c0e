package interview

import "strings"

// RoomPrefix is the naming convention the platform uses for interview rooms:
// interview-{uuid}.
const RoomPrefix = "interview-"

// InterviewIDFromRoom extracts the interview identifier from a room name.
// Rooms outside the convention resolve to ok == false. A room name equal to
// exactly the prefix also resolves to ok == false: an empty identifier can
// never address a backend record, so no call should be attempted for it.
func InterviewIDFromRoom(roomName string) (string, bool) {
	if !strings.HasPrefix(roomName, RoomPrefix) {
		return "", false
	}
	id := roomName[len(RoomPrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}
