package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type TicketPostgreSQL struct {
	db *gorm.DB
}

func NewTicketPostgreSQL(db *gorm.DB) repositories.TicketRepository {
	return &TicketPostgreSQL{db: db}
}

func (t *TicketPostgreSQL) Create(ctx context.Context, ticket *models.Ticket) error {
	return wrapError("create ticket", t.db.WithContext(ctx).Omit("User").Create(ticket).Error)
}

func (t *TicketPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	err := t.db.WithContext(ctx).
		Preload("User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&ticket, id).Error
	if err != nil {
		return nil, wrapError("get ticket", err)
	}
	return &ticket, nil
}

// List returns one page of tickets, most recently active first
func (t *TicketPostgreSQL) List(ctx context.Context, params models.TicketListParams) ([]models.Ticket, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Ticket{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count tickets", err)
	}

	var tickets []models.Ticket
	err := applyPage(query.Order("updated_at DESC"), params.Page, params.Limit).
		Preload("User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, wrapError("list tickets", err)
	}
	return tickets, total, nil
}

func (t *TicketPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.TicketStatus) error {
	result := t.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", id).
		Update("status", status)
	return requireAffected("update ticket status", result)
}

func (t *TicketPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected("delete ticket", t.db.WithContext(ctx).Delete(&models.Ticket{}, id))
}

type TicketMessagePostgreSQL struct {
	db *gorm.DB
}

func NewTicketMessagePostgreSQL(db *gorm.DB) repositories.TicketMessageRepository {
	return &TicketMessagePostgreSQL{db: db}
}

// Create appends a message and bumps the ticket's updated_at
func (m *TicketMessagePostgreSQL) Create(ctx context.Context, message *models.TicketMessage) error {
	db := m.db.WithContext(ctx)
	if err := db.Create(message).Error; err != nil {
		return wrapError("create ticket message", err)
	}
	result := db.Model(&models.Ticket{}).
		Where("id = ?", message.TicketID).
		Update("updated_at", message.CreatedAt)
	return wrapError("touch ticket", result.Error)
}

func (m *TicketMessagePostgreSQL) ListByTicket(ctx context.Context, ticketID uint) ([]models.TicketMessage, error) {
	var messages []models.TicketMessage
	err := m.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, wrapError("list ticket messages", err)
	}
	return messages, nil
}
