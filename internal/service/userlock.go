package service

import (
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// userLocks serializes per-user read-modify-write sections (level recompute,
// streak persist, task assignment and completion) on top of the database
// transactions. Striped so two users
// rarely contend, while the same user always hits the same mutex.
type userLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{}
}

func (l *userLocks) Lock(userID uuid.UUID) func() {
	m := &l.stripes[stripeFor(userID)]
	m.Lock()
	return m.Unlock
}

func stripeFor(userID uuid.UUID) int {
	// FNV-1a over the raw UUID bytes
	var h uint32 = 2166136261
	for _, b := range userID {
		h ^= uint32(b)
		h *= 16777619
	}
	return int(h % lockStripes)
}
