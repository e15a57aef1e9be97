package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/validator"
)

const (
	defaultTicketPageLimit = 20
	ticketAttachmentFolder = "tickets"
)

type ticketService struct {
	repo      repositories.Repository
	store     storage.FileStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewTicketService(repo repositories.Repository, store storage.FileStore, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) TicketService {
	return &ticketService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *ticketService) Create(ctx context.Context, req *models.TicketCreateRequest, attachment *multipart.FileHeader, actor *models.User) (*models.Ticket, error) {
	if err := RequireUser(actor, ResourceTicket, "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	message, err := s.newMessage(ctx, req.Message, attachment, actor)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Subject:  req.Subject,
		Status:   models.TicketOpen,
		UserID:   actor.ID,
		Messages: []models.TicketMessage{*message},
	}
	if err := s.repo.Ticket().Create(ctx, ticket); err != nil {
		removeStoredURL(ctx, s.store, s.logger, message.AttachmentURL)
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.Info("Ticket created", "ticket_id", ticket.ID, "user_id", actor.ID)
	publishEvent(ctx, s.publisher, s.logger, events.TicketCreated, map[string]interface{}{
		"ticket_id": ticket.ID,
		"user_id":   actor.ID,
		"subject":   ticket.Subject,
	})

	return s.getTicket(ctx, ticket.ID)
}

// newMessage stores the optional attachment and builds the message sent by actor
func (s *ticketService) newMessage(ctx context.Context, text string, attachment *multipart.FileHeader, actor *models.User) (*models.TicketMessage, error) {
	message := &models.TicketMessage{
		Message:  text,
		Sender:   models.SenderUser,
		SenderID: actor.ID,
	}
	if actor.IsAdmin() {
		message.Sender = models.SenderAdmin
	}

	if attachment != nil {
		stored, err := saveUpload(ctx, s.store, storage.AttachmentRules, ticketAttachmentFolder, attachment)
		if err != nil {
			return nil, err
		}
		message.AttachmentURL = ptr(stored.URL)
		message.AttachmentName = ptr(stored.OriginalName)
	}
	return message, nil
}

func (s *ticketService) getTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	ticket, err := s.repo.Ticket().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

func (s *ticketService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Ticket, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ticketResource(ticket), ActionRead); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List scopes non-admin callers to their own tickets regardless of the requested filter
func (s *ticketService) List(ctx context.Context, params models.TicketListParams, actor *models.User) (*models.TicketPage, error) {
	if err := RequireUser(actor, ResourceTicket, "list"); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		params.UserID = &actor.ID
	}
	params.Page, params.Limit = normalizePage(params.Page, params.Limit, defaultTicketPageLimit)

	tickets, total, err := s.repo.Ticket().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}

	return &models.TicketPage{
		Data: tickets,
		Meta: pageMeta(params.Page, params.Limit, total),
	}, nil
}

// Reply adds a message; a user reply reopens a closed ticket and an admin reply moves an open one to pending
func (s *ticketService) Reply(ctx context.Context, id uint, req *models.TicketReplyRequest, attachment *multipart.FileHeader, actor *models.User) (*models.TicketMessage, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ticketResource(ticket), ActionReply); err != nil {
		return nil, err
	}

	message, err := s.newMessage(ctx, req.Message, attachment, actor)
	if err != nil {
		return nil, err
	}
	message.TicketID = ticket.ID

	next := ticket.Status
	switch {
	case message.Sender == models.SenderUser && ticket.Status == models.TicketClosed:
		next = models.TicketOpen
	case message.Sender == models.SenderAdmin && ticket.Status == models.TicketOpen:
		next = models.TicketPending
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.TicketMessage().Create(ctx, message); err != nil {
			return err
		}
		if next != ticket.Status {
			return tx.Ticket().UpdateStatus(ctx, ticket.ID, next)
		}
		return nil
	})
	if err != nil {
		removeStoredURL(ctx, s.store, s.logger, message.AttachmentURL)
		return nil, fmt.Errorf("failed to reply to ticket: %w", err)
	}

	s.logger.Info("Ticket replied", "ticket_id", id, "sender", message.Sender, "status", next)
	publishEvent(ctx, s.publisher, s.logger, events.TicketReplied, map[string]interface{}{
		"ticket_id":  id,
		"message_id": message.ID,
		"sender":     message.Sender,
		"owner_id":   ticket.UserID,
	})
	if next != ticket.Status {
		s.publishStatusChange(ctx, ticket, next)
	}
	return message, nil
}

// UpdateStatus is admin only, except that owners may close their own tickets
func (s *ticketService) UpdateStatus(ctx context.Context, id uint, status models.TicketStatus, actor *models.User) (*models.Ticket, error) {
	if err := s.validator.Validate(&models.TicketStatusRequest{Status: status}); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	action := ActionChangeStatus
	if status == models.TicketClosed {
		action = ActionClose
	}
	if err := Authorize(actor, ticketResource(ticket), action); err != nil {
		return nil, err
	}

	if ticket.Status != status {
		if err := s.repo.Ticket().UpdateStatus(ctx, id, status); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrTicketNotFound
			}
			return nil, fmt.Errorf("failed to update ticket status: %w", err)
		}
		s.logger.Info("Ticket status changed", "ticket_id", id, "from", ticket.Status, "to", status)
		s.publishStatusChange(ctx, ticket, status)
	}

	return s.getTicket(ctx, id)
}

func (s *ticketService) publishStatusChange(ctx context.Context, ticket *models.Ticket, to models.TicketStatus) {
	publishEvent(ctx, s.publisher, s.logger, events.TicketStatusChanged, map[string]interface{}{
		"ticket_id": ticket.ID,
		"owner_id":  ticket.UserID,
		"from":      ticket.Status,
		"to":        to,
	})
}

func (s *ticketService) Delete(ctx context.Context, id uint, actor *models.User) error {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, ticketResource(ticket), ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Ticket().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	for i := range ticket.Messages {
		removeStoredURL(ctx, s.store, s.logger, ticket.Messages[i].AttachmentURL)
	}

	s.logger.Info("Ticket deleted", "ticket_id", id, "by", actor.ID)
	return nil
}

func (s *ticketService) Stats(ctx context.Context, actor *models.User) (*models.TicketStats, error) {
	if err := RequireAdmin(actor, ResourceTicket, "stats"); err != nil {
		return nil, err
	}
	stats, err := s.repo.Dashboard().GetTicketStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket stats: %w", err)
	}
	return stats, nil
}
