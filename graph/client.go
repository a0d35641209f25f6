// Package graph reads the signed-in user's directory profile from Microsoft Graph.
package graph

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"
)

// DefaultBaseURL is the public Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Profile is the subset of /me used for account creation.
type Profile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	GivenName         string `json:"givenName"`
	Surname           string `json:"surname"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	JobTitle          string `json:"jobTitle"`
	Department        string `json:"department"`
}

// Email returns the primary address, falling back to the principal name.
func (p Profile) Email() string {
	if p.Mail != "" {
		return p.Mail
	}
	return p.UserPrincipalName
}

type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls Graph with a delegated access token.
type Client struct {
	client  *resty.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{client: c, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context, accessToken string) *resty.Request {
	return c.client.R().WithContext(ctx).SetAuthToken(accessToken)
}

// Me fetches the profile of the token owner.
func (c *Client) Me(ctx context.Context, accessToken string) (*Profile, error) {
	res, err := c.r(ctx, accessToken).
		SetQueryParam("$select", "id,displayName,givenName,surname,mail,userPrincipalName,jobTitle,department").
		SetResult(&Profile{}).
		Get(c.baseURL + "/me")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		var ge graphError
		if json.Unmarshal(res.Bytes(), &ge) == nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("graph /me: %s: %s", ge.Error.Code, ge.Error.Message)
		}
		return nil, fmt.Errorf("graph /me: status %d", res.StatusCode())
	}
	return res.Result().(*Profile), nil
}

// Photo returns the user's photo as a data URI, or "" when the user has none.
func (c *Client) Photo(ctx context.Context, accessToken string) (string, error) {
	res, err := c.r(ctx, accessToken).
		SetHeader("Accept", "image/*").
		Get(c.baseURL + "/me/photo/$value")
	if err != nil {
		return "", err
	}
	if res.StatusCode() == http.StatusNotFound {
		return "", nil
	}
	if res.IsError() {
		return "", fmt.Errorf("graph photo: status %d", res.StatusCode())
	}
	body := res.Bytes()
	if len(body) == 0 {
		return "", nil
	}
	contentType := res.Header().Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
