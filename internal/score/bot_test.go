package score

import (
	"fmt"
	"math"
	"testing"
	"time"

	"kolscan/internal/model"
)

func TestBotProbabilityUsernameSignals(t *testing.T) {
	got := BotProbability(model.Participant{Username: "user12345"}, nil)
	if math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("digit-run username = %v, want 0.3", got)
	}
	// Long letters-then-digits pattern stacks with the digit run.
	got = BotProbability(model.Participant{Username: "abcdefghij1234567"}, nil)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("generated-looking username = %v, want 0.5", got)
	}
}

func TestBotProbabilityBurstPosting(t *testing.T) {
	posts := make([]model.Post, 0, 20)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		posts = append(posts, model.Post{
			Date: base.Add(-time.Duration(i) * time.Minute),
			Text: fmt.Sprintf("burst message number %d", i),
		})
	}
	got := BotProbability(model.Participant{Username: "chatter"}, posts)
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("burst posting = %v, want 0.4", got)
	}
}

func TestBotProbabilityRepetitiveContent(t *testing.T) {
	posts := []model.Post{
		{Date: time.Now(), Text: "same exact shill"},
		{Date: time.Now(), Text: "same exact shill"},
		{Date: time.Now(), Text: "same exact shill"},
		{Date: time.Now(), Text: "same exact shill"},
		{Date: time.Now(), Text: "something else"},
	}
	got := BotProbability(model.Participant{Username: "echo"}, posts)
	if math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("repetitive content = %v, want 0.3", got)
	}
}

func TestBotProbabilityCredibilityClampsToZero(t *testing.T) {
	got := BotProbability(model.Participant{Username: "known", IsVerified: true, HasPhoto: true}, nil)
	if got != 0 {
		t.Fatalf("verified with photo = %v, want 0", got)
	}
}
