package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/pkg/metrics"
)

// FindByEmail returns the user row for email.
func (s *Store) FindByEmail(ctx context.Context, email string) (User, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, fmt.Errorf("%s: %w", email, ErrUserNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w: %w", fault.ErrPersistence, err)
	}
	return u, nil
}

// Create inserts a new user row. The unique indexes on email and invite
// code reject duplicates atomically.
func (s *Store) Create(ctx context.Context, u User) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, fault.ErrConflict)
		}
		return fmt.Errorf("create user: %w: %w", fault.ErrPersistence, err)
	}
	return nil
}

// Count returns the number of registered users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w: %w", fault.ErrPersistence, err)
	}
	return n, nil
}

// SocialUserCount returns the number of users with a linked social account.
func (s *Store) SocialUserCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("social_id <> ''").Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count social users: %w: %w", fault.ErrPersistence, err)
	}
	return n, nil
}

// LinkSocialID attaches a social account identifier to the user.
func (s *Store) LinkSocialID(ctx context.Context, email, socialID string) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Update("social_id", socialID)
	if res.Error != nil {
		return fmt.Errorf("link social id: %w: %w", fault.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", email, ErrUserNotFound)
	}
	return nil
}

// SocialID returns the linked social account identifier for an owner,
// empty when none is linked.
func (s *Store) SocialID(ctx context.Context, ownerID string) (string, error) {
	u, err := s.FindByEmail(ctx, ownerID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.SocialID, nil
}

// ClaimCode commits an invite code candidate. The INSERT against the
// claim table's primary key is the atomic unique-constraint commit;
// concurrent claimers of the same code cannot both win.
func (s *Store) ClaimCode(ctx context.Context, code string) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	if err := s.db.WithContext(ctx).Create(&InviteCode{Code: code}).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", code, ErrCodeTaken)
		}
		return fmt.Errorf("claim code: %w: %w", fault.ErrPersistence, err)
	}
	return nil
}

// CodeExists reports whether a code has already been issued.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&InviteCode{}).Where("code = ?", code).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check code: %w: %w", fault.ErrPersistence, err)
	}
	return n > 0, nil
}

// AddBoardEntry appends a historical leaderboard placement for a user.
func (s *Store) AddBoardEntry(ctx context.Context, email string, rank, score int) error {
	entry := BoardEntry{UserEmail: email, Rank: rank, Score: score}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("add board entry: %w: %w", fault.ErrPersistence, err)
	}
	return nil
}

// TopRanked returns up to limit users ordered by the rank of their
// latest board entry, ascending.
func (s *Store) TopRanked(ctx context.Context, limit int) ([]model.RankedUser, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var rows []model.RankedUser
	err := s.db.WithContext(ctx).Raw(`
        SELECT u.name AS name, u.email AS email, b.rank AS rank, b.score AS score
        FROM users u
        JOIN board_entries b ON b.user_email = u.email
        WHERE b.id IN (SELECT MAX(id) FROM board_entries GROUP BY user_email)
        ORDER BY b.rank ASC
        LIMIT ?
    `, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top ranked users: %w: %w", fault.ErrPersistence, err)
	}
	return rows, nil
}

// isUniqueViolation detects a unique-constraint failure from the driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
