package bot

import "sync"

type intakeStep string

const (
	stepNone      intakeStep = "none"
	stepName      intakeStep = "name"
	stepQuickName intakeStep = "quick_name"
	stepFrequency intakeStep = "frequency"
	stepDate      intakeStep = "date"
	stepTime      intakeStep = "time"
)

// reminderDraft accumulates dialog input until the final insert.
type reminderDraft struct {
	Label     string
	Frequency string
	Dates     []string // resolved tokens, full or partial (year assigned on insert)
	Date      string   // quick templates carry a single finished date
	Time      string
}

type userState struct {
	Step  intakeStep
	Draft reminderDraft
}

type stateStore struct {
	mu sync.Mutex
	m  map[int64]*userState
}

func newStateStore() *stateStore {
	return &stateStore{m: make(map[int64]*userState)}
}

func (s *stateStore) get(userID int64) *userState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.m[userID]
	if st == nil {
		st = &userState{Step: stepNone}
		s.m[userID] = st
	}
	return st
}

func (s *stateStore) reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
