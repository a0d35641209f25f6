// Package notify fans out post approval notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/intrafeed/intrafeed/models"
)

// Dispatcher delivers the approval of post to recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, post models.Post, recipients []models.User) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, post models.Post, recipients []models.User) error

func (f DispatcherFunc) Dispatch(ctx context.Context, post models.Post, recipients []models.User) error {
	return f(ctx, post, recipients)
}

// Multi runs every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, post models.Post, recipients []models.User) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, post, recipients); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subject is the human readable headline for an approved post.
func Subject(post models.Post) string {
	if title := strings.TrimSpace(post.Title); title != "" {
		return fmt.Sprintf("[%s] %s", post.Service, title)
	}
	return fmt.Sprintf("[%s] Nouvelle publication de %s", post.Service, post.Author)
}

// Excerpt shortens content to at most n runes.
func Excerpt(content string, n int) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	runes := []rune(content)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
