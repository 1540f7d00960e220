package score

import (
	"fmt"
	"math"
	"testing"
	"time"

	"kolscan/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// genPosts builds n posts spaced one day apart, newest first.
func genPosts(n, views, forwards int, text string) []model.Post {
	posts := make([]model.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, model.Post{
			ID:       int64(i + 1),
			Date:     testNow.Add(-time.Duration(i) * 24 * time.Hour),
			Text:     fmt.Sprintf("%s %d", text, i),
			Views:    views,
			Forwards: forwards,
		})
	}
	return posts
}

func TestZeroPostsConservativeDefaults(t *testing.T) {
	p := model.Participant{UserID: 1, Username: "quietone"}
	m := ComputeMetrics(p, nil, testNow)
	if m.BotProbability != 0.8 {
		t.Fatalf("bot probability = %v, want 0.8", m.BotProbability)
	}
	if m.EngagementRate != 0 || m.AvgViews != 0 || m.ForwardRatio != 0 ||
		m.PostingFrequency != 0 || m.ContentQualityScore != 0 || m.InfluenceScore != 0 {
		t.Fatalf("expected zero rates, got %+v", m)
	}
	if Evaluate(m, model.DefaultCriteria()) {
		t.Fatal("zero-post user must not qualify")
	}
}

func TestForwardRatioAndEngagementRate(t *testing.T) {
	posts := []model.Post{
		{ID: 1, Date: testNow, Views: 1000, Forwards: 50},
		{ID: 2, Date: testNow.Add(-48 * time.Hour), Views: 1000, Forwards: 50},
	}
	m := ComputeMetrics(model.Participant{UserID: 2}, posts, testNow)
	if math.Abs(m.ForwardRatio-0.05) > 1e-9 {
		t.Fatalf("forward ratio = %v, want 0.05", m.ForwardRatio)
	}
	if math.Abs(m.EngagementRate-5.0) > 1e-9 {
		t.Fatalf("engagement rate = %v, want 5.0", m.EngagementRate)
	}
	if m.AvgViews != 1000 || m.AvgForwards != 50 {
		t.Fatalf("avg views/forwards = %v/%v", m.AvgViews, m.AvgForwards)
	}
}

func TestPostingFrequency(t *testing.T) {
	// 10 posts across 9 days -> 10/9*7 posts per week.
	m := ComputeMetrics(model.Participant{UserID: 3}, genPosts(10, 100, 0, "daily update"), testNow)
	want := 10.0 / 9.0 * 7
	if math.Abs(m.PostingFrequency-want) > 1e-9 {
		t.Fatalf("posting frequency = %v, want %v", m.PostingFrequency, want)
	}

	// A single post has no span.
	m = ComputeMetrics(model.Participant{UserID: 3}, genPosts(1, 100, 0, "one"), testNow)
	if m.PostingFrequency != 0 {
		t.Fatalf("single-post frequency = %v, want 0", m.PostingFrequency)
	}
}

func TestClampInvariants(t *testing.T) {
	cases := []struct {
		p     model.Participant
		posts []model.Post
	}{
		{model.Participant{UserID: 1}, nil},
		{model.Participant{UserID: 2, Username: "bot123456789"}, genPosts(30, 0, 0, "🚀🚀🚀 URGENT pump")},
		{model.Participant{UserID: 3, Username: "whale", IsVerified: true, HasPhoto: true, IsAdmin: true},
			genPosts(50, 1000000, 100000, "deep dive into bitcoin market structure with plenty of thoughtful analysis and links http://example.com #btc @peer")},
		{model.Participant{UserID: 4}, genPosts(2, 1, 100, "tiny")},
	}
	for i, c := range cases {
		m := ComputeMetrics(c.p, c.posts, testNow)
		if m.BotProbability < 0 || m.BotProbability > 1 {
			t.Fatalf("case %d: bot probability out of range: %v", i, m.BotProbability)
		}
		if m.ContentQualityScore < 0 || m.ContentQualityScore > 1 {
			t.Fatalf("case %d: content quality out of range: %v", i, m.ContentQualityScore)
		}
		if m.InfluenceScore < 0 || m.InfluenceScore > 100 {
			t.Fatalf("case %d: influence out of range: %v", i, m.InfluenceScore)
		}
	}
}

func TestFollowerEstimation(t *testing.T) {
	if got := estimateFollowers(model.Participant{FollowerCount: 777}); got != 777 {
		t.Fatalf("explicit count = %d", got)
	}
	if got := estimateFollowers(model.Participant{IsVerified: true}); got != 5000 {
		t.Fatalf("verified estimate = %d, want 5000", got)
	}
	if got := estimateFollowers(model.Participant{Username: "named"}); got != 1000 {
		t.Fatalf("named estimate = %d, want 1000", got)
	}
	if got := estimateFollowers(model.Participant{}); got != 0 {
		t.Fatalf("anonymous estimate = %d, want 0", got)
	}
}

func TestAccountAgeDefaults(t *testing.T) {
	m := ComputeMetrics(model.Participant{UserID: 9}, genPosts(2, 10, 0, "hello everyone"), testNow)
	if m.AccountAgeDays != 365 {
		t.Fatalf("unknown creation date should default to 365, got %d", m.AccountAgeDays)
	}
	p := model.Participant{UserID: 9, CreatedAt: testNow.Add(-100 * 24 * time.Hour)}
	m = ComputeMetrics(p, genPosts(2, 10, 0, "hello everyone"), testNow)
	if m.AccountAgeDays != 100 {
		t.Fatalf("account age = %d, want 100", m.AccountAgeDays)
	}
}
