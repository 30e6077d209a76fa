package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/edithlab/growthboard/internal/domain/fault"
	"github.com/edithlab/growthboard/internal/domain/model"
	"github.com/edithlab/growthboard/pkg/metrics"
)

// RecordEvent stores one raw prompt or conversation event. Signup events
// are implicit in user creation and are rejected here.
func (s *Store) RecordEvent(ctx context.Context, e model.MetricEvent) error {
	if e.Kind == model.KindSignup {
		return fmt.Errorf("signup events derive from user rows: %w", fault.ErrInvalidInput)
	}

	row := EventRow{Kind: int(e.Kind), OwnerID: e.OwnerID, Timestamp: e.Timestamp}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record event: %w: %w", fault.ErrPersistence, err)
	}
	return nil
}

// ListMetricEvents assembles the full event snapshot for aggregation:
// signup events from user created-at plus stored prompt/conversation
// events.
func (s *Store) ListMetricEvents(ctx context.Context) ([]model.MetricEvent, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var users []User
	if err := s.db.WithContext(ctx).Select("email", "created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w: %w", fault.ErrPersistence, err)
	}

	var rows []EventRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list events: %w: %w", fault.ErrPersistence, err)
	}

	events := make([]model.MetricEvent, 0, len(users)+len(rows))
	for i := range users {
		events = append(events, model.MetricEvent{
			Kind:      model.KindSignup,
			Timestamp: users[i].CreatedAt,
			OwnerID:   users[i].Email,
		})
	}
	for i := range rows {
		events = append(events, model.MetricEvent{
			Kind:      model.MetricKind(rows[i].Kind),
			Timestamp: rows[i].Timestamp,
			OwnerID:   rows[i].OwnerID,
		})
	}
	return events, nil
}

// PointsSum returns the total chat points across all users.
func (s *Store) PointsSum(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Select("COALESCE(SUM(chat_points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum chat points: %w: %w", fault.ErrPersistence, err)
	}
	return total, nil
}
