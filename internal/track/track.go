package track

import (
	"context"
	"fmt"
	"sort"

	"kolscan/internal/logging"
	"kolscan/internal/model"
	"kolscan/internal/tgclient"
	"kolscan/internal/util"
)

const postCap = 50

// ChannelPost is one of a user's posts with its channel of origin.
type ChannelPost struct {
	model.Post
	ChannelRef   string `json:"channel_ref"`
	ChannelTitle string `json:"channel_title"`
}

// Result aggregates a user's recent posts across channels. All three totals
// cover every collected post; only Posts is capped to the most recent 50.
type Result struct {
	Username      string        `json:"username"`
	Posts         []ChannelPost `json:"posts"`
	TotalPosts    int           `json:"total_posts"`
	TotalViews    int           `json:"total_views"`
	TotalForwards int           `json:"total_forwards"`
}

// UserPosts resolves a user and collects their recent text posts from the
// given channels, most recent first. A failing channel is logged and
// skipped, mirroring the per-user isolation in the detector.
func UserPosts(ctx context.Context, client tgclient.Client, username string, channels []string, perChannelLimit int) (Result, error) {
	username = util.CleanUsername(username)
	res := Result{Username: username}

	user, err := client.GetUserEntity(ctx, username)
	if err != nil {
		return res, fmt.Errorf("resolve user %q: %w", username, err)
	}
	if perChannelLimit <= 0 {
		perChannelLimit = 100
	}

	var posts []ChannelPost
	for _, ref := range channels {
		ch, err := client.ResolveChannel(ctx, ref)
		if err != nil {
			logging.Warn("track_channel_skipped", map[string]any{"channel": ref, "error": err.Error()})
			continue
		}
		msgs, err := client.GetRecentMessages(ctx, ref, tgclient.MessageFilter{
			FromUserID: user.UserID,
			Limit:      perChannelLimit,
		})
		if err != nil {
			logging.Warn("track_channel_skipped", map[string]any{"channel": ref, "error": err.Error()})
			continue
		}
		for _, m := range msgs {
			if m.SenderID != user.UserID || m.Text == "" {
				continue
			}
			posts = append(posts, ChannelPost{Post: m, ChannelRef: ref, ChannelTitle: ch.Title})
			res.TotalViews += m.Views
			res.TotalForwards += m.Forwards
		}
	}

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })
	res.TotalPosts = len(posts)
	if len(posts) > postCap {
		posts = posts[:postCap]
	}
	res.Posts = posts
	return res, nil
}
