package services

import (
	"github.com/darab-cement/cms-service/internal/models"
)

type Action string

const (
	ActionRead          Action = "read"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionChangeStatus  Action = "change_status"
	ActionViewResponses Action = "view_responses"
	ActionExport        Action = "export"
	ActionReply         Action = "reply"
	ActionClose         Action = "close"
)

const (
	ResourcePoll         = "poll"
	ResourcePollResponse = "poll_response"
	ResourceTicket       = "ticket"
)

// Resource names what is being accessed and who owns it
type Resource struct {
	Kind   string
	ID     uint
	Owners []uint
}

// ownerActions lists what an owner may do per resource kind; everything else is admin only
var ownerActions = map[string]map[Action]bool{
	ResourcePoll: {
		ActionRead:          true,
		ActionUpdate:        true,
		ActionDelete:        true,
		ActionChangeStatus:  true,
		ActionViewResponses: true,
		ActionExport:        true,
	},
	ResourcePollResponse: {
		ActionRead: true,
	},
	ResourceTicket: {
		ActionRead:   true,
		ActionReply:  true,
		ActionClose:  true,
		ActionDelete: true,
	},
}

// Authorize returns a PermissionError unless actor may perform action on res.
// Admins may do anything.
func Authorize(actor *models.User, res Resource, action Action) error {
	if actor == nil {
		return NewPermissionError(0, res.ID, res.Kind, string(action), "authentication required")
	}
	if actor.IsAdmin() {
		return nil
	}
	if !ownerActions[res.Kind][action] {
		return NewPermissionError(actor.ID, res.ID, res.Kind, string(action), "admin role required")
	}
	for _, owner := range res.Owners {
		if owner != 0 && owner == actor.ID {
			return nil
		}
	}
	return NewPermissionError(actor.ID, res.ID, res.Kind, string(action), "not owner")
}

// RequireAdmin guards admin only operations
func RequireAdmin(actor *models.User, resource, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	var userID uint
	if actor != nil {
		userID = actor.ID
	}
	return NewPermissionError(userID, 0, resource, action, "admin role required")
}

func pollResource(poll *models.Poll) Resource {
	return Resource{Kind: ResourcePoll, ID: poll.ID, Owners: []uint{poll.OwnerID()}}
}

func responseResource(response *models.PollResponse) Resource {
	owners := []uint{}
	if response.Poll != nil {
		owners = append(owners, response.Poll.OwnerID())
	}
	if response.UserID != nil {
		owners = append(owners, *response.UserID)
	}
	return Resource{Kind: ResourcePollResponse, ID: response.ID, Owners: owners}
}

func ticketResource(ticket *models.Ticket) Resource {
	return Resource{Kind: ResourceTicket, ID: ticket.ID, Owners: []uint{ticket.UserID}}
}

// RequireUser guards operations open to any signed in account
func RequireUser(actor *models.User, resource, action string) error {
	if actor == nil {
		return NewPermissionError(0, 0, resource, action, "authentication required")
	}
	return nil
}
