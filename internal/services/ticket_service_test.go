package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
)

func newTestTicketService(repo *fakeRepository) (TicketService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(nil)
	return NewTicketService(repo, nil, publisher, testLogger(), testValidator()), publisher
}

func openTicket(t *testing.T, svc TicketService) *models.Ticket {
	t.Helper()
	ticket, err := svc.Create(context.Background(), &models.TicketCreateRequest{
		Subject: "Late delivery",
		Message: "Order 4411 has not arrived",
	}, nil, testOwner)
	require.NoError(t, err)
	return ticket
}

func TestTicketService_Create(t *testing.T) {
	svc, publisher := newTestTicketService(newFakeRepository())

	_, err := svc.Create(context.Background(), &models.TicketCreateRequest{Subject: "x", Message: "y"}, nil, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	ticket := openTicket(t, svc)
	assert.Equal(t, models.TicketOpen, ticket.Status)
	assert.Equal(t, testOwner.ID, ticket.UserID)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, models.SenderUser, ticket.Messages[0].Sender)
	assert.Equal(t, ticket.ID, ticket.Messages[0].TicketID)
	assert.Len(t, publisher.EventsOfType(events.TicketCreated), 1)
}

func TestTicketService_ReplyMovesStatus(t *testing.T) {
	tests := []struct {
		name       string
		start      models.TicketStatus
		actor      *models.User
		wantStatus models.TicketStatus
		wantSender models.MessageSender
	}{
		{"admin reply on open ticket", models.TicketOpen, testAdmin, models.TicketPending, models.SenderAdmin},
		{"admin reply on resolved ticket", models.TicketResolved, testAdmin, models.TicketResolved, models.SenderAdmin},
		{"owner reply on closed ticket", models.TicketClosed, testOwner, models.TicketOpen, models.SenderUser},
		{"owner reply on pending ticket", models.TicketPending, testOwner, models.TicketPending, models.SenderUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			svc, publisher := newTestTicketService(repo)
			ticket := openTicket(t, svc)
			require.NoError(t, repo.Ticket().UpdateStatus(context.Background(), ticket.ID, tt.start))

			msg, err := svc.Reply(context.Background(), ticket.ID, &models.TicketReplyRequest{Message: "On it"}, nil, tt.actor)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSender, msg.Sender)
			assert.Equal(t, ticket.ID, msg.TicketID)

			got, err := svc.GetByID(context.Background(), ticket.ID, testAdmin)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Len(t, got.Messages, 2)

			changes := publisher.EventsOfType(events.TicketStatusChanged)
			if tt.start == tt.wantStatus {
				assert.Empty(t, changes)
			} else {
				assert.Len(t, changes, 1)
			}
		})
	}
}

func TestTicketService_Access(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestTicketService(repo)
	ticket := openTicket(t, svc)

	_, err := svc.GetByID(context.Background(), ticket.ID, testOther)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Reply(context.Background(), ticket.ID, &models.TicketReplyRequest{Message: "hi"}, nil, testOther)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetByID(context.Background(), 9999, testAdmin)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	// Owners may close but not move a ticket anywhere else
	_, err = svc.UpdateStatus(context.Background(), ticket.ID, models.TicketResolved, testOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	closed, err := svc.UpdateStatus(context.Background(), ticket.ID, models.TicketClosed, testOwner)
	require.NoError(t, err)
	assert.Equal(t, models.TicketClosed, closed.Status)

	resolved, err := svc.UpdateStatus(context.Background(), ticket.ID, models.TicketResolved, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, resolved.Status)

	_, err = svc.UpdateStatus(context.Background(), ticket.ID, "done", testAdmin)
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestTicketService_ListScopesToOwner(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := newTestTicketService(repo)
	openTicket(t, svc)
	openTicket(t, svc)
	_, err := svc.Create(context.Background(), &models.TicketCreateRequest{Subject: "Invoice", Message: "Wrong VAT"}, nil, testOther)
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), models.TicketListParams{UserID: &testOther.ID}, testOwner)
	require.NoError(t, err)
	assert.Len(t, mine.Data, 2)
	assert.Equal(t, int64(2), mine.Meta.TotalItems)
	assert.Equal(t, defaultTicketPageLimit, mine.Meta.ItemsPerPage)

	all, err := svc.List(context.Background(), models.TicketListParams{}, testAdmin)
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)

	_, err = svc.List(context.Background(), models.TicketListParams{}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTicketService_DeleteAndStats(t *testing.T) {
	repo := newFakeRepository()
	repo.ticketStats = models.TicketStats{Total: 4, Open: 2, Closed: 2}
	svc, _ := newTestTicketService(repo)
	ticket := openTicket(t, svc)

	assert.ErrorIs(t, svc.Delete(context.Background(), ticket.ID, testOther), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), ticket.ID, testOwner))
	assert.ErrorIs(t, svc.Delete(context.Background(), ticket.ID, testOwner), ErrTicketNotFound)

	_, err := svc.Stats(context.Background(), testOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	stats, err := svc.Stats(context.Background(), testAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
}
