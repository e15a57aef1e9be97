package models

import (
	"time"
)

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketPending  TicketStatus = "pending"
	TicketResolved TicketStatus = "resolved"
	TicketClosed   TicketStatus = "closed"
)

type MessageSender string

const (
	SenderUser  MessageSender = "user"
	SenderAdmin MessageSender = "admin"
)

type Ticket struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Subject   string          `json:"subject" gorm:"not null;size:255"`
	Status    TicketStatus    `json:"status" gorm:"not null;default:open;size:20;index"`
	UserID    uint            `json:"userId" gorm:"not null;index"`
	User      *User           `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Messages  []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type TicketMessage struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	TicketID       uint          `json:"ticketId" gorm:"not null;index"`
	Message        string        `json:"message" gorm:"type:text;not null"`
	Sender         MessageSender `json:"sender" gorm:"not null;size:10"`
	SenderID       uint          `json:"senderId" gorm:"not null"`
	AttachmentURL  *string       `json:"attachmentUrl" gorm:"size:500"`
	AttachmentName *string       `json:"attachmentName" gorm:"size:255"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (TicketMessage) TableName() string {
	return "ticket_messages"
}

type TicketStats struct {
	Total    int64 `json:"total"`
	Open     int64 `json:"open"`
	Pending  int64 `json:"pending"`
	Resolved int64 `json:"resolved"`
	Closed   int64 `json:"closed"`
}
