package attendance

// Session is one recorded class meeting for a section on a date at a slot.
// Written by the attendance-taking workflow; read-only here.
type Session struct {
	ID              string
	Section         string
	Date            string // YYYY-MM-DD
	Slot            string // e.g. "09:00-10:00" or "P1"
	PresentStudents []string
	TotalStudents   int
}

// IsPresent reports whether usn is in the session's present set.
func (s *Session) IsPresent(usn string) bool {
	for _, p := range s.PresentStudents {
		if p == usn {
			return true
		}
	}
	return false
}
