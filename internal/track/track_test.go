package track

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kolscan/internal/model"
	"kolscan/internal/tgclient"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	user        model.Participant
	userErr     error
	channels    map[string]model.Channel
	msgs        map[string][]model.Post
	failChannel string
}

func (f *fakeClient) ResolveChannel(ctx context.Context, ref string) (model.Channel, error) {
	if ref == f.failChannel {
		return model.Channel{}, errors.New("channel unavailable")
	}
	ch, ok := f.channels[ref]
	if !ok {
		return model.Channel{}, fmt.Errorf("%w: channel %s", tgclient.ErrNotFound, ref)
	}
	return ch, nil
}

func (f *fakeClient) GetRecentMessages(ctx context.Context, ref string, filter tgclient.MessageFilter) ([]model.Post, error) {
	return f.msgs[ref], nil
}

func (f *fakeClient) GetParticipants(ctx context.Context, ref string, filter tgclient.ParticipantFilter) ([]model.Participant, error) {
	return nil, nil
}

func (f *fakeClient) GetUserEntity(ctx context.Context, ref string) (model.Participant, error) {
	return f.user, f.userErr
}

func TestUserPostsCrossChannel(t *testing.T) {
	fc := &fakeClient{
		user: model.Participant{UserID: 7, Username: "alphacaller"},
		channels: map[string]model.Channel{
			"signals": {ID: 1, Title: "Signals"},
			"alpha":   {ID: 2, Title: "Alpha"},
		},
		msgs: map[string][]model.Post{
			"signals": {
				{ID: 1, SenderID: 7, Date: testNow.Add(-2 * time.Hour), Text: "older", Views: 100, Forwards: 10},
				{ID: 2, SenderID: 8, Date: testNow, Text: "not ours", Views: 999},
				{ID: 3, SenderID: 7, Date: testNow.Add(-3 * time.Hour), Text: "", Views: 50},
			},
			"alpha": {
				{ID: 4, SenderID: 7, Date: testNow.Add(-1 * time.Hour), Text: "newer", Views: 200, Forwards: 20},
			},
		},
	}

	res, err := UserPosts(context.Background(), fc, "@alphacaller", []string{"signals", "alpha"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Username != "alphacaller" {
		t.Fatalf("username = %q", res.Username)
	}
	if res.TotalPosts != 2 {
		t.Fatalf("total posts = %d, want 2", res.TotalPosts)
	}
	// Most recent first, across channels.
	if res.Posts[0].Text != "newer" || res.Posts[0].ChannelTitle != "Alpha" {
		t.Fatalf("wrong ordering: %+v", res.Posts[0])
	}
	if res.TotalViews != 300 || res.TotalForwards != 30 {
		t.Fatalf("totals = %d views / %d forwards", res.TotalViews, res.TotalForwards)
	}
}

func TestUserPostsSkipsFailingChannel(t *testing.T) {
	fc := &fakeClient{
		user: model.Participant{UserID: 7, Username: "alphacaller"},
		channels: map[string]model.Channel{
			"signals": {ID: 1, Title: "Signals"},
		},
		msgs: map[string][]model.Post{
			"signals": {{ID: 1, SenderID: 7, Date: testNow, Text: "gm", Views: 100}},
		},
		failChannel: "private",
	}

	res, err := UserPosts(context.Background(), fc, "alphacaller", []string{"private", "signals"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalPosts != 1 {
		t.Fatalf("total posts = %d, want 1", res.TotalPosts)
	}
}

func TestUserPostsCapsAtFifty(t *testing.T) {
	var msgs []model.Post
	for i := 0; i < 80; i++ {
		msgs = append(msgs, model.Post{
			ID:       int64(i + 1),
			SenderID: 7,
			Date:     testNow.Add(-time.Duration(i) * time.Minute),
			Text:     fmt.Sprintf("post %d", i),
			Views:    10,
		})
	}
	fc := &fakeClient{
		user:     model.Participant{UserID: 7, Username: "alphacaller"},
		channels: map[string]model.Channel{"signals": {ID: 1, Title: "Signals"}},
		msgs:     map[string][]model.Post{"signals": msgs},
	}

	res, err := UserPosts(context.Background(), fc, "alphacaller", []string{"signals"}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Posts) != 50 {
		t.Fatalf("capped posts = %d, want 50", len(res.Posts))
	}
	// Totals cover everything collected, not just the capped slice.
	if res.TotalPosts != 80 {
		t.Fatalf("total posts = %d, want 80", res.TotalPosts)
	}
	if res.TotalViews != 800 {
		t.Fatalf("total views = %d, want 800", res.TotalViews)
	}
	if res.Posts[0].ID != 1 {
		t.Fatalf("newest post id = %d", res.Posts[0].ID)
	}
}

func TestUserPostsUnknownUser(t *testing.T) {
	fc := &fakeClient{userErr: fmt.Errorf("%w: user nobody", tgclient.ErrNotFound)}
	_, err := UserPosts(context.Background(), fc, "nobody", []string{"signals"}, 100)
	if !errors.Is(err, tgclient.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
