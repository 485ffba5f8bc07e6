package attendance

// Student is a roster entry. Roster membership is section-scoped.
type Student struct {
	USN     string
	Name    string
	Phone   string // empty when the roster has no number
	Section string
}

// HasPhone reports whether the student can be reached by SMS.
func (s *Student) HasPhone() bool {
	return s.Phone != ""
}
