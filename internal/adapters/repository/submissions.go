package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/leaderboard"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/internal/domain/scoring"
	"github.com/edithlab/growthboard/pkg/metrics"
)

// ListByOwner returns all retained submissions for an owner, oldest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var rows []SubmissionRow
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("posted_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list submissions: %w: %w", fault.ErrPersistence, err)
	}

	subs := make([]model.Submission, len(rows))
	for i := range rows {
		subs[i] = toSubmission(rows[i])
	}
	return subs, nil
}

// Append inserts a submission after re-checking that the owner does not
// already hold the content. The whole check-and-insert runs under the
// owner's lock; the composite unique index on (owner_id, content_id) is
// the cross-process backstop. Never call this with the lock taken by a
// long operation such as a network fetch.
func (s *Store) Append(ctx context.Context, ownerID string, sub model.Submission) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	lock := s.locks.get(ownerID)
	lock.Lock()
	defer lock.Unlock()

	var n int64
	err := s.db.WithContext(ctx).Model(&SubmissionRow{}).
		Where("owner_id = ? AND content_id = ?", ownerID, sub.ContentID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("dedup check: %w: %w", fault.ErrPersistence, err)
	}
	if n > 0 {
		return fmt.Errorf("owner %s content %s: %w", ownerID, sub.ContentID, ErrDuplicateContent)
	}

	row := toRow(sub)
	row.OwnerID = ownerID
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("owner %s content %s: %w", ownerID, sub.ContentID, ErrDuplicateContent)
		}
		return fmt.Errorf("append submission: %w: %w", fault.ErrPersistence, err)
	}
	return nil
}

// UpdateScore persists new score components and the recomputed total for
// one submission.
func (s *Store) UpdateScore(ctx context.Context, ownerID, submissionID string, c scoring.Components, total int) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	res := s.db.WithContext(ctx).Model(&SubmissionRow{}).
		Where("id = ? AND owner_id = ?", submissionID, ownerID).
		Updates(map[string]interface{}{
			"base":        c.Base,
			"performance": c.Performance,
			"quality":     c.Quality,
			"bonus":       c.Bonus,
			"total":       total,
		})
	if res.Error != nil {
		return fmt.Errorf("update score: %w: %w", fault.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", submissionID, ErrSubmissionNotFound)
	}
	return nil
}

// SubmissionCount returns the number of retained submissions.
func (s *Store) SubmissionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&SubmissionRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count submissions: %w: %w", fault.ErrPersistence, err)
	}
	return n, nil
}

// EnsurePeriod returns the row ID for a rotation period, creating it on
// first sight. Periods arrive as opaque keys from the event source.
func (s *Store) EnsurePeriod(ctx context.Context, p model.RotationPeriod) (uint, error) {
	var row PeriodRow
	err := s.db.WithContext(ctx).
		Where(&PeriodRow{Year: p.Year, Month: p.Month, Week: p.Week}).
		FirstOrCreate(&row, PeriodRow{Year: p.Year, Month: p.Month, Week: p.Week}).Error
	if err != nil {
		return 0, fmt.Errorf("ensure period: %w: %w", fault.ErrPersistence, err)
	}
	return row.ID, nil
}

// AssignPeriod attaches a submission to a rotation period.
func (s *Store) AssignPeriod(ctx context.Context, submissionID string, periodID uint) error {
	res := s.db.WithContext(ctx).Model(&SubmissionRow{}).
		Where("id = ?", submissionID).
		Update("period_id", periodID)
	if res.Error != nil {
		return fmt.Errorf("assign period: %w: %w", fault.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", submissionID, ErrSubmissionNotFound)
	}
	return nil
}

// ListCycles loads every rotation period with its submissions, unsorted.
// Ordering is the rotator's job at read time.
func (s *Store) ListCycles(ctx context.Context) ([]leaderboard.Cycle, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var periods []PeriodRow
	if err := s.db.WithContext(ctx).Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("list periods: %w: %w", fault.ErrPersistence, err)
	}

	var rows []SubmissionRow
	if err := s.db.WithContext(ctx).Where("period_id IS NOT NULL").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list period submissions: %w: %w", fault.ErrPersistence, err)
	}

	byPeriod := make(map[uint][]model.Submission)
	for i := range rows {
		byPeriod[*rows[i].PeriodID] = append(byPeriod[*rows[i].PeriodID], toSubmission(rows[i]))
	}

	cycles := make([]leaderboard.Cycle, len(periods))
	for i, p := range periods {
		cycles[i] = leaderboard.Cycle{
			RotationPeriod: model.RotationPeriod{Year: p.Year, Month: p.Month, Week: p.Week},
			Submissions:    byPeriod[p.ID],
		}
	}
	return cycles, nil
}

func toSubmission(r SubmissionRow) model.Submission {
	return model.Submission{
		ID:          r.ID,
		ContentID:   r.ContentID,
		OwnerID:     r.OwnerID,
		SourceURL:   r.SourceURL,
		Text:        r.Text,
		Status:      model.SubmissionStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		PostedAt:    r.PostedAt,
		Base:        r.Base,
		Performance: r.Performance,
		Quality:     r.Quality,
		Bonus:       r.Bonus,
		Total:       r.Total,
	}
}

func toRow(sub model.Submission) SubmissionRow {
	return SubmissionRow{
		ID:          sub.ID,
		OwnerID:     sub.OwnerID,
		ContentID:   sub.ContentID,
		SourceURL:   sub.SourceURL,
		Text:        sub.Text,
		Status:      int(sub.Status),
		Base:        sub.Base,
		Performance: sub.Performance,
		Quality:     sub.Quality,
		Bonus:       sub.Bonus,
		Total:       sub.Total,
		CreatedAt:   sub.CreatedAt,
		PostedAt:    sub.PostedAt,
	}
}
