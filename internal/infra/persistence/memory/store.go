// Package memory is the in-process store binding. It backs tests and
// single-node development deployments with the same transactional contract
// the postgres binding provides.
package memory

import (
	"sync"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// codeKey identifies a verification code record.
type codeKey struct {
	userID  uuid.UUID
	purpose entity.CodePurpose
}

// Store holds all records behind a single mutex. Transactions take the mutex
// for their whole duration, which serializes every read-check-write sequence
// exactly like row locks do in postgres.
type Store struct {
	mu sync.Mutex

	cases       map[uuid.UUID]entity.Case
	casesByTask map[string]uuid.UUID
	users       map[uuid.UUID]entity.User
	usersByMail map[string]uuid.UUID
	codes       map[codeKey]entity.VerificationCode
	sessions    map[uuid.UUID]entity.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		cases:       make(map[uuid.UUID]entity.Case),
		casesByTask: make(map[string]uuid.UUID),
		users:       make(map[uuid.UUID]entity.User),
		usersByMail: make(map[string]uuid.UUID),
		codes:       make(map[codeKey]entity.VerificationCode),
		sessions:    make(map[uuid.UUID]entity.Session),
	}
}

// snapshot clones every table. Records are stored by value and copied on
// every read and write, so cloning the maps is a full rollback point.
func (s *Store) snapshot() *Store {
	clone := NewStore()
	for k, v := range s.cases {
		clone.cases[k] = v
	}
	for k, v := range s.casesByTask {
		clone.casesByTask[k] = v
	}
	for k, v := range s.users {
		clone.users[k] = v
	}
	for k, v := range s.usersByMail {
		clone.usersByMail[k] = v
	}
	for k, v := range s.codes {
		clone.codes[k] = v
	}
	for k, v := range s.sessions {
		clone.sessions[k] = v
	}

	return clone
}

// restore replaces the tables with a previously taken snapshot.
func (s *Store) restore(snap *Store) {
	s.cases = snap.cases
	s.casesByTask = snap.casesByTask
	s.users = snap.users
	s.usersByMail = snap.usersByMail
	s.codes = snap.codes
	s.sessions = snap.sessions
}
