// Package memstore is an in-process attendance and reconciliation store.
// It backs STORE_DRIVER=memory for local runs and stands in for the
// document store in tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"
)

type Store struct {
	mu              sync.RWMutex
	sessions        []*attendance.Session
	students        []*attendance.Student
	reconciliations map[string][]byte

	// Fail, when set, is returned by every read or write. Lets tests simulate an outage.
	Fail error
	// Writes counts Save calls.
	Writes int
}

var (
	_ attendance.Repository   = (*Store)(nil)
	_ notification.Repository = (*Store)(nil)
)

func New() *Store {
	return &Store{reconciliations: make(map[string][]byte)}
}

// AddSession appends a session record.
func (s *Store) AddSession(sess attendance.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.PresentStudents = append([]string(nil), sess.PresentStudents...)
	s.sessions = append(s.sessions, &sess)
}

// AddStudent appends a roster record.
func (s *Store) AddStudent(st attendance.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = append(s.students, &st)
}

func (s *Store) ListSessionsByDate(_ context.Context, date string) ([]*attendance.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []*attendance.Session
	for _, sess := range s.sessions {
		if sess.Date == date {
			cp := *sess
			cp.PresentStudents = append([]string(nil), sess.PresentStudents...)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListStudentsBySection(_ context.Context, section string) ([]*attendance.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []*attendance.Student
	for _, st := range s.students {
		if st.Section == section {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

// GetByDate returns a deep copy of the stored document.
func (s *Store) GetByDate(_ context.Context, date string) (*notification.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	raw, ok := s.reconciliations[date]
	if !ok {
		return nil, notification.ErrReconciliationNotFound
	}
	var doc notification.Reconciliation
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding reconciliation %s: %w", date, err)
	}
	return &doc, nil
}

// Save stores a snapshot of doc, replacing any previous one for the date.
func (s *Store) Save(_ context.Context, doc *notification.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding reconciliation %s: %w", doc.Date, err)
	}
	s.reconciliations[doc.Date] = raw
	s.Writes++
	return nil
}

// Ping always succeeds unless Fail is set.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fail
}

func (s *Store) Close() error { return nil }
