package app

import (
	"context"
	"fmt"
	"sort"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// IsEligible applies the notification rule: two or more misses always notify;
// a single miss notifies only when the section held at most two sessions that day.
func IsEligible(missedCount, sessionsHeld int) bool {
	if missedCount >= 2 {
		return true
	}
	return sessionsHeld <= 2 && missedCount >= 1
}

// Aggregator turns a day's sessions into pending notification candidates.
type Aggregator struct {
	repo   attendance.Repository
	logger *logrus.Entry
}

func NewAggregator(repo attendance.Repository, logger *logrus.Entry) *Aggregator {
	return &Aggregator{repo: repo, logger: logger}
}

// absence accumulates the slots one student missed within one section.
type absence struct {
	student *attendance.Student
	missed  []string
}

// Aggregate returns pending records for every eligible absentee on date.
// Sections are visited in sorted order and students in roster order, so the
// result is stable for a given store snapshot. Any read failure aborts.
func (a *Aggregator) Aggregate(ctx context.Context, date string) ([]*notification.Record, error) {
	sessions, err := a.repo.ListSessionsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for %s: %w", date, err)
	}
	if len(sessions) == 0 {
		a.logger.WithField("date", date).Info("No sessions recorded for date")
		return nil, nil
	}

	bySection := groupBySection(sessions)
	sections := make([]string, 0, len(bySection))
	for section := range bySection {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	var candidates []*notification.Record
	for _, section := range sections {
		records, err := a.aggregateSection(ctx, section, bySection[section])
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, records...)
	}

	a.logger.WithFields(logrus.Fields{
		"date":       date,
		"sessions":   len(sessions),
		"sections":   len(sections),
		"candidates": len(candidates),
	}).Info("Absence aggregation finished")
	return candidates, nil
}

func (a *Aggregator) aggregateSection(ctx context.Context, section string, sessions []*attendance.Session) ([]*notification.Record, error) {
	log := a.logger.WithField("section", section)

	roster, err := a.repo.ListStudentsBySection(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for section %s: %w", section, err)
	}

	order := make([]string, 0, len(roster))
	absences := make(map[string]*absence, len(roster))
	for _, st := range roster {
		if _, dup := absences[st.USN]; dup {
			log.WithField("usn", st.USN).Warn("Duplicate roster entry ignored")
			continue
		}
		order = append(order, st.USN)
		absences[st.USN] = &absence{student: st}
	}

	stale := make(map[string]bool)
	for _, sess := range sessions {
		for _, usn := range sess.PresentStudents {
			if _, ok := absences[usn]; !ok && !stale[usn] {
				stale[usn] = true
				log.WithFields(logrus.Fields{"usn": usn, "slot": sess.Slot}).Warn("Session references student missing from roster, skipping")
			}
		}
		for _, usn := range order {
			if !sess.IsPresent(usn) {
				absences[usn].missed = append(absences[usn].missed, sess.Slot)
			}
		}
	}

	var records []*notification.Record
	for _, usn := range order {
		ab := absences[usn]
		if !IsEligible(len(ab.missed), len(sessions)) {
			continue
		}
		if !ab.student.HasPhone() {
			log.WithFields(logrus.Fields{"usn": usn, "missed": len(ab.missed)}).Warn("Eligible student has no phone number, skipping")
			continue
		}
		records = append(records, &notification.Record{
			USN:            ab.student.USN,
			Name:           ab.student.Name,
			Phone:          ab.student.Phone,
			Section:        section,
			MissedSessions: ab.missed,
			Status:         notification.StatusPending,
		})
	}
	return records, nil
}

// groupBySection buckets sessions by section, each bucket ordered by slot.
func groupBySection(sessions []*attendance.Session) map[string][]*attendance.Session {
	grouped := make(map[string][]*attendance.Session)
	for _, s := range sessions {
		grouped[s.Section] = append(grouped[s.Section], s)
	}
	for _, group := range grouped {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Slot < group[j].Slot })
	}
	return grouped
}
