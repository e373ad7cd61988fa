package models

import "time"

// SlotLock is the lock document for one minute of one specialist's calendar.
// Writing it inside a transaction serialises every transaction touching the
// same minute; LockedAt feeds a TTL index so stale documents are reaped.
type SlotLock struct {
	ID       string    `bson:"_id" json:"id"` // "<specialistId>:<unix minute>"
	Seq      int64     `bson:"seq" json:"seq"`
	LockedAt time.Time `bson:"lockedAt" json:"lockedAt"`
}
