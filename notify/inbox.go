package notify

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/intrafeed/intrafeed/models"
)

const inboxCollection = "notifications"

// InboxItem is one stored notification.
type InboxItem struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    uint           `bson:"user_id" json:"user_id"`
	PostID    uint           `bson:"post_id" json:"post_id"`
	Service   models.Service `bson:"service" json:"service"`
	Title     string         `bson:"title" json:"title"`
	Body      string         `bson:"body" json:"body"`
	Read      bool           `bson:"read" json:"read"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

// Inbox stores approval notifications per recipient in MongoDB.
type Inbox struct {
	col *mongo.Collection
}

// ConnectInbox opens a client and returns the inbox plus the client to disconnect on shutdown.
func ConnectInbox(ctx context.Context, uri, database string) (*Inbox, *mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewInbox(client.Database(database).Collection(inboxCollection)), client, nil
}

func NewInbox(col *mongo.Collection) *Inbox {
	return &Inbox{col: col}
}

func (i *Inbox) Dispatch(ctx context.Context, post models.Post, recipients []models.User) error {
	if len(recipients) == 0 {
		return nil
	}
	title := Subject(post)
	body := Excerpt(post.Content, 280)
	now := time.Now().UTC()

	writes := make([]mongo.WriteModel, 0, len(recipients))
	for _, u := range recipients {
		writes = append(writes, &mongo.InsertOneModel{Document: InboxItem{
			UserID:    u.ID,
			PostID:    post.ID,
			Service:   post.Service,
			Title:     title,
			Body:      body,
			CreatedAt: now,
		}})
	}
	_, err := i.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// List returns the newest notifications of a user.
func (i *Inbox) List(ctx context.Context, userID uint, limit int64) ([]InboxItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := i.col.Find(ctx, bson.M{"user_id": userID}, findOpts)
	if err != nil {
		return nil, err
	}
	items := []InboxItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flags one notification of the user as read. It reports whether it matched.
func (i *Inbox) MarkRead(ctx context.Context, userID uint, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := i.col.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
