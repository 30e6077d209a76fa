package repository

import (
	"time"
)

// User is the persisted account row. The invite code and email carry
// unique indexes; invite-code uniqueness is additionally guaranteed by
// the invite_codes claim table.
type User struct {
	ID         string `gorm:"primaryKey;size:36"`
	Email      string `gorm:"uniqueIndex;size:255;not null"`
	Name       string `gorm:"size:255"`
	InviteCode string `gorm:"uniqueIndex;size:16;not null"`
	SocialID   string `gorm:"index;size:64"`
	ChatPoints int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InviteCode is the claim table backing atomic code allocation: the
// INSERT against the primary key is the unique-constraint commit.
type InviteCode struct {
	Code      string `gorm:"primaryKey;size:16"`
	CreatedAt time.Time
}

// SubmissionRow is one retained social submission. The composite unique
// index on (owner_id, content_id) makes the dedup append atomic even
// across processes.
type SubmissionRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	OwnerID     string `gorm:"size:255;not null;uniqueIndex:idx_owner_content"`
	ContentID   string `gorm:"size:32;not null;uniqueIndex:idx_owner_content"`
	SourceURL   string `gorm:"size:512"`
	Text        string `gorm:"type:text"`
	Status      int
	PeriodID    *uint  `gorm:"index"`
	Base        int
	Performance int
	Quality     int
	Bonus       int
	Total       int
	CreatedAt   time.Time
	PostedAt    time.Time
}

// PeriodRow is a rotation period assigned upstream. Ordering keys only;
// boundaries are never derived here.
type PeriodRow struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	Year      int  `gorm:"uniqueIndex:idx_period;not null"`
	Month     int  `gorm:"uniqueIndex:idx_period;not null"`
	Week      int  `gorm:"uniqueIndex:idx_period;not null"`
	CreatedAt time.Time
}

// BoardEntry is one historical leaderboard placement for a user. The
// latest entry per user feeds the top-ranked strip.
type BoardEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserEmail string `gorm:"index;size:255;not null"`
	Rank      int
	Score     int
	CreatedAt time.Time
}

// EventRow is one raw metric event delivered by the event source.
// Signup events are not stored here; they derive from user created-at.
type EventRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Kind      int    `gorm:"index;not null"`
	OwnerID   string `gorm:"size:255"`
	Timestamp time.Time
	CreatedAt time.Time
}
