package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/intrafeed/intrafeed/models"
)

type fakePublisher struct {
	subject string
	data    []byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return nil
}

func TestNATSPublishesApprovalEvent(t *testing.T) {
	pub := &fakePublisher{}
	d := NewNATS(pub, "intrafeed.posts.approved")
	post := models.Post{ID: 7, Title: "Hello", Author: "Ada Lovelace", Service: models.ServiceRH, Content: "body"}

	err := d.Dispatch(context.Background(), post, []models.User{{ID: 2}, {ID: 3}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if pub.subject != "intrafeed.posts.approved" {
		t.Fatalf("unexpected subject %q", pub.subject)
	}
	var evt ApprovalEvent
	if err := json.Unmarshal(pub.data, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.PostID != 7 || len(evt.RecipientIDs) != 2 || evt.RecipientIDs[1] != 3 {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestMailSendsToEveryRecipientAndJoinsErrors(t *testing.T) {
	var sent []string
	send := func(to, subject, body string) error {
		sent = append(sent, to)
		if to == "bad@example.com" {
			return errors.New("mailbox unavailable")
		}
		if !strings.Contains(subject, "Weekly update") {
			t.Errorf("unexpected subject %q", subject)
		}
		return nil
	}
	m := NewMail(send, "https://intra.example.com")
	post := models.Post{ID: 1, Title: "Weekly update", Service: models.ServiceGeneral}

	err := m.Dispatch(context.Background(), post, []models.User{
		{Email: "a@example.com"},
		{Email: ""},
		{Email: "bad@example.com"},
	})
	if err == nil || !strings.Contains(err.Error(), "mailbox unavailable") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 sends, got %v", sent)
	}
}

func TestMultiContinuesAfterFailure(t *testing.T) {
	calls := 0
	failing := DispatcherFunc(func(context.Context, models.Post, []models.User) error {
		calls++
		return errors.New("boom")
	})
	ok := DispatcherFunc(func(context.Context, models.Post, []models.User) error {
		calls++
		return nil
	})
	err := Multi{failing, nil, ok}.Dispatch(context.Background(), models.Post{}, nil)
	if err == nil || calls != 2 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("  court  ", 10); got != "court" {
		t.Fatalf("got %q", got)
	}
	if got := Excerpt("éàèùâêîôûç", 3); got != "éàè…" {
		t.Fatalf("got %q", got)
	}
}
