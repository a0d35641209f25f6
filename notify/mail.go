package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/intrafeed/intrafeed/models"
)

// SendFunc sends one plain text message.
type SendFunc func(to, subject, body string) error

// Mail e-mails each recipient individually.
type Mail struct {
	send        SendFunc
	frontendURL string
}

// NewMail returns a mail dispatcher linking to posts under frontendURL.
func NewMail(send SendFunc, frontendURL string) *Mail {
	return &Mail{send: send, frontendURL: frontendURL}
}

func (m *Mail) Dispatch(ctx context.Context, post models.Post, recipients []models.User) error {
	subject := Subject(post)
	body := fmt.Sprintf("%s\n\n%s\n\n%s/posts/%d\n", post.Author, Excerpt(post.Content, 280), m.frontendURL, post.ID)

	var errs []error
	for _, u := range recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if u.Email == "" {
			continue
		}
		if err := m.send(u.Email, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("mail %s: %w", u.Email, err))
		}
	}
	return errors.Join(errs...)
}
