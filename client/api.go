package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/intrafeed/intrafeed/models"
)

// ErrSignedOut is returned by calls that need credentials when the session has none.
var ErrSignedOut = errors.New("intrafeed: not signed in")

// tokenTTL mirrors the server token lifetime.
const tokenTTL = 72 * time.Hour

// User is the profile the server returns.
type User struct {
	ID                   uint           `json:"id"`
	FirstName            string         `json:"first_name"`
	LastName             string         `json:"last_name"`
	DisplayName          string         `json:"display_name"`
	Email                string         `json:"email"`
	Service              models.Service `json:"service"`
	Role                 string         `json:"role"`
	IsAdmin              bool           `json:"is_admin"`
	IsOAuthUser          bool           `json:"is_oauth_user"`
	Avatar               string         `json:"avatar"`
	NotificationsEnabled bool           `json:"notifications_enabled"`
}

// Post is a post as rendered by the server.
type Post struct {
	models.Post
	ContentHTML  string               `json:"content_html"`
	UserReaction *models.ReactionKind `json:"user_reaction"`
}

// FeedItem is one entry of the general feed.
type FeedItem struct {
	Post   Post   `json:"post"`
	Reason string `json:"reason"`
}

// Reaction is the outcome of a reaction toggle.
type Reaction struct {
	PostID       uint                        `json:"post_id"`
	Counts       map[models.ReactionKind]int `json:"counts"`
	Total        int                         `json:"total"`
	UserReaction *models.ReactionKind        `json:"user_reaction"`
}

// NewPost is the body of a post submission.
type NewPost struct {
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Service string   `json:"service,omitempty"`
	Files   []string `json:"files,omitempty"`
}

// Login signs in with a local account and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	if err := c.session.Store(Credentials{
		Token:     out.Token,
		Email:     out.User.Email,
		UserID:    out.User.ID,
		ExpiresAt: time.Now().Add(tokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("intrafeed: persist session: %w", err)
	}
	return &out.User, nil
}

// Logout revokes the token server side and always tears the local session down.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Token() == "" {
		return nil
	}
	err := c.call(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if ierr := c.session.Invalidate(); ierr != nil && err == nil {
		err = ierr
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	if c.session.Token() == "" {
		return nil, ErrSignedOut
	}
	var u User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GeneralFeed returns the curated general feed.
func (c *Client) GeneralFeed(ctx context.Context) ([]FeedItem, error) {
	var out struct {
		Items []FeedItem `json:"items"`
	}
	if err := c.call(ctx, http.MethodGet, "/feed/general", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreatePost submits a post; non-admin posts start pending.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (*Post, error) {
	var out struct {
		Post Post `json:"post"`
	}
	if err := c.call(ctx, http.MethodPost, "/posts", p, &out); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

// React toggles the caller's reaction kind on a post.
func (c *Client) React(ctx context.Context, postID uint, kind models.ReactionKind) (*Reaction, error) {
	var out Reaction
	path := "/posts/" + strconv.FormatUint(uint64(postID), 10) + "/reactions"
	if err := c.call(ctx, http.MethodPost, path, map[string]string{"kind": string(kind)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
