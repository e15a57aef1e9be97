package repositories

import (
	"context"

	"github.com/darab-cement/cms-service/internal/models"
)

// DashboardRepository interface for admin dashboard aggregates
type DashboardRepository interface {
	// Poll totals by status, summed counters and the most recent polls
	GetPollDashboard(ctx context.Context, recentLimit int) (*models.PollDashboard, error)

	// Ticket totals by status
	GetTicketStats(ctx context.Context) (*models.TicketStats, error)
}
