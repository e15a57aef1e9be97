package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

type statusCount struct {
	Status string
	Count  int64
}

func (r *dashboardRepository) countByStatus(ctx context.Context, model interface{}) (map[string]int64, int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(model).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[string]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.Status] = row.Count
		total += row.Count
	}
	return counts, total, nil
}

// ===== POLLS =====

func (r *dashboardRepository) GetPollDashboard(ctx context.Context, recentLimit int) (*models.PollDashboard, error) {
	counts, total, err := r.countByStatus(ctx, &models.Poll{})
	if err != nil {
		return nil, wrapError("count polls by status", err)
	}

	var sums struct {
		Responses int64
		Views     int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Poll{}).
		Select("COALESCE(SUM(response_count), 0) AS responses, COALESCE(SUM(view_count), 0) AS views").
		Scan(&sums).Error
	if err != nil {
		return nil, wrapError("sum poll counters", err)
	}

	recent := []models.Poll{}
	err = r.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&recent).Error
	if err != nil {
		return nil, wrapError("list recent polls", err)
	}

	return &models.PollDashboard{
		Total:          total,
		Active:         counts[string(models.PollStatusActive)],
		Draft:          counts[string(models.PollStatusDraft)],
		Closed:         counts[string(models.PollStatusClosed)],
		TotalResponses: sums.Responses,
		TotalViews:     sums.Views,
		RecentPolls:    recent,
	}, nil
}

// ===== TICKETS =====

func (r *dashboardRepository) GetTicketStats(ctx context.Context) (*models.TicketStats, error) {
	counts, total, err := r.countByStatus(ctx, &models.Ticket{})
	if err != nil {
		return nil, wrapError("count tickets by status", err)
	}

	return &models.TicketStats{
		Total:    total,
		Open:     counts[string(models.TicketOpen)],
		Pending:  counts[string(models.TicketPending)],
		Resolved: counts[string(models.TicketResolved)],
		Closed:   counts[string(models.TicketClosed)],
	}, nil
}
