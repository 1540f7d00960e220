package score

import (
	"math"
	"time"

	"kolscan/internal/model"
)

// DefaultPostLimit is how many of a user's posts are scored per scan.
// FetchWindow is the wider channel-message window searched for them.
const (
	DefaultPostLimit = 50
	FetchWindow      = 200
)

// ComputeMetrics builds a KOLMetrics record from a user's recent posts in a
// channel. Posts must be ordered most recent first. QualifiesAsKOL is left
// false; callers run Evaluate. A user with no posts gets the conservative
// defaults: bot probability 0.8, every rate 0.
func ComputeMetrics(p model.Participant, posts []model.Post, now time.Time) model.KOLMetrics {
	m := model.KOLMetrics{
		UserID:        p.UserID,
		Username:      p.Username,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		IsAdmin:       p.IsAdmin,
		IsVerified:    p.IsVerified,
		FollowerCount: estimateFollowers(p),
		PostCount:     len(posts),
	}
	if len(posts) == 0 {
		m.BotProbability = 0.8
		return m
	}

	var views, forwards, reactions, replies int
	for _, post := range posts {
		views += post.Views
		forwards += post.Forwards
		reactions += post.Reactions
		replies += post.Replies
	}
	n := float64(len(posts))
	m.AvgViews = float64(views) / n
	m.AvgForwards = float64(forwards) / n
	m.ForwardRatio = float64(forwards) / math.Max(float64(views), 1)
	m.EngagementRate = float64(forwards+reactions+replies) / math.Max(float64(views), 1) * 100

	if len(posts) >= 2 {
		days := int(posts[0].Date.Sub(posts[len(posts)-1].Date).Hours() / 24)
		if days < 1 {
			days = 1
		}
		m.PostingFrequency = n / float64(days) * 7
	}

	m.ContentQualityScore = ContentQuality(posts)
	m.BotProbability = BotProbability(p, posts)
	m.AccountAgeDays = accountAgeDays(p, now)
	m.InfluenceScore = Influence(m.AvgViews, m.EngagementRate, m.PostingFrequency,
		m.ContentQualityScore, p.IsVerified, p.IsAdmin, m.FollowerCount)
	m.SpecialtyTags = Specialties(posts)
	return m
}

// estimateFollowers falls back to rough tiers when the platform exposes no
// subscriber count: verified accounts assume 5000, named accounts 1000.
func estimateFollowers(p model.Participant) int {
	if p.FollowerCount > 0 {
		return p.FollowerCount
	}
	if p.IsVerified {
		return 5000
	}
	if p.Username != "" {
		return 1000
	}
	return 0
}

func accountAgeDays(p model.Participant, now time.Time) int {
	if p.CreatedAt.IsZero() {
		return 365
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}
