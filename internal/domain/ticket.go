package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// AttachmentKind differentiates ticket attachments.
type AttachmentKind string

const (
	AttachmentKindPhoto    AttachmentKind = "photo"
	AttachmentKindDocument AttachmentKind = "document"
)

// Ticket is the aggregate for a support request.
type Ticket struct {
	ID             int64
	CustomerID     int64
	CustomerName   string
	Message        string
	AttachmentRef  *string
	AttachmentKind *AttachmentKind
	Status         TicketStatus
	AssigneeID     *int64
	AssigneeName   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketReply is an immutable staff reply appended to a ticket thread.
type TicketReply struct {
	ID        int64
	TicketID  int64
	StaffID   int64
	StaffName string
	Body      string
	CreatedAt time.Time
}
