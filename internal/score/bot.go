package score

import (
	"regexp"
	"time"

	"kolscan/internal/model"
	"kolscan/internal/util"
)

var (
	digitRun        = regexp.MustCompile(`\d{4,}`)
	lettersThenNums = regexp.MustCompile(`[a-z]{8,}[0-9]{3,}`)
)

// BotProbability estimates in [0,1] that the account is automated.
// Posts must be ordered most recent first.
func BotProbability(p model.Participant, posts []model.Post) float64 {
	score := 0.0

	if p.Username != "" {
		if digitRun.MatchString(p.Username) {
			score += 0.3
		}
		if len(p.Username) > 15 && lettersThenNums.MatchString(p.Username) {
			score += 0.2
		}
	}

	if len(posts) >= 20 {
		// Burst posting: 20+ posts inside a single day.
		span := posts[0].Date.Sub(posts[len(posts)-1].Date)
		if span <= 24*time.Hour {
			score += 0.4
		}
	}
	if len(posts) > 0 {
		unique := make(map[string]struct{}, len(posts))
		for _, post := range posts {
			unique[util.RunePrefix(post.Text, 100)] = struct{}{}
		}
		if float64(len(unique)) < float64(len(posts))*0.5 {
			score += 0.3
		}
	}

	if p.IsVerified {
		score -= 0.3
	}
	if p.HasPhoto {
		score -= 0.2
	}

	return clamp01(score)
}
