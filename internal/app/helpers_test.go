package app

import (
	"context"
	"io"

	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/sms"
	"absence_notifier/internal/infra/memstore"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) SendTemplate(ctx context.Context, recipients []sms.Recipient) (*sms.BatchResponse, error) {
	args := m.Called(ctx, recipients)
	res, _ := args.Get(0).(*sms.BatchResponse)
	return res, args.Error(1)
}

func (m *mockGateway) SendText(ctx context.Context, phones []string, message string) (*sms.BatchResponse, error) {
	args := m.Called(ctx, phones, message)
	res, _ := args.Get(0).(*sms.BatchResponse)
	return res, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

// allSent builds a gateway reply accepting n recipients.
func allSent(n int) *sms.BatchResponse {
	res := &sms.BatchResponse{Message: "ok", Summary: "all delivered"}
	for i := 0; i < n; i++ {
		res.Results = append(res.Results, sms.Result{Success: true, GUID: "guid"})
	}
	return res
}

// seedSectionX loads the reference day: section X, three sessions on
// 2024-01-10, roster S1..S5.
//
//	S1 misses P1,P2   S2 misses P3   S3 misses all
//	S4 misses P1,P2 but has no phone  S5 misses nothing
func seedSectionX(store *memstore.Store) {
	store.AddStudent(attendance.Student{USN: "S1", Name: "Asha", Phone: "90000 00001", Section: "X"})
	store.AddStudent(attendance.Student{USN: "S2", Name: "Bala", Phone: "9000000002", Section: "X"})
	store.AddStudent(attendance.Student{USN: "S3", Name: "Chitra", Phone: "9000000003", Section: "X"})
	store.AddStudent(attendance.Student{USN: "S4", Name: "Dev", Section: "X"})
	store.AddStudent(attendance.Student{USN: "S5", Name: "Esha", Phone: "9000000005", Section: "X"})

	store.AddSession(attendance.Session{Section: "X", Date: "2024-01-10", Slot: "P1", PresentStudents: []string{"S2", "S5"}, TotalStudents: 5})
	store.AddSession(attendance.Session{Section: "X", Date: "2024-01-10", Slot: "P2", PresentStudents: []string{"S2", "S5"}, TotalStudents: 5})
	store.AddSession(attendance.Session{Section: "X", Date: "2024-01-10", Slot: "P3", PresentStudents: []string{"S1", "S4", "S5"}, TotalStudents: 5})
}
