package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samber/lo"

	"github.com/intrafeed/intrafeed/models"
)

// Publisher is the subset of *nats.Conn used here.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ApprovalEvent is the message published when a post is approved.
type ApprovalEvent struct {
	PostID       uint           `json:"post_id"`
	Title        string         `json:"title"`
	Author       string         `json:"author"`
	Service      models.Service `json:"service"`
	Excerpt      string         `json:"excerpt"`
	RecipientIDs []uint         `json:"recipient_ids"`
	ApprovedAt   time.Time      `json:"approved_at"`
}

// NATS publishes one event per approval on a subject.
type NATS struct {
	pub     Publisher
	subject string
}

// ConnectNATS dials the server and returns the dispatcher plus the connection to close on shutdown.
func ConnectNATS(url, subject string) (*NATS, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("intrafeed"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, err
	}
	return NewNATS(nc, subject), nc, nil
}

func NewNATS(pub Publisher, subject string) *NATS {
	return &NATS{pub: pub, subject: subject}
}

func (n *NATS) Dispatch(_ context.Context, post models.Post, recipients []models.User) error {
	approvedAt := time.Now()
	if post.ApprovedAt != nil {
		approvedAt = *post.ApprovedAt
	}
	data, err := json.Marshal(ApprovalEvent{
		PostID:  post.ID,
		Title:   post.Title,
		Author:  post.Author,
		Service: post.Service,
		Excerpt: Excerpt(post.Content, 280),
		RecipientIDs: lo.Map(recipients, func(u models.User, _ int) uint {
			return u.ID
		}),
		ApprovedAt: approvedAt,
	})
	if err != nil {
		return err
	}
	return n.pub.Publish(n.subject, data)
}
