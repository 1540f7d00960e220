package score

import (
	"math"
	"strings"
	"unicode/utf8"

	"kolscan/internal/model"
	"kolscan/internal/util"
)

// cryptoKeywords bump the sophistication component when present.
var cryptoKeywords = []string{
	"bitcoin", "btc", "ethereum", "eth", "crypto", "defi", "nft",
	"token", "coin", "trading", "market", "price", "pump", "analysis",
}

// spamIndicators are matched case-sensitively; repeated-emoji runs and
// all-caps urgency phrases are intentionally not folded.
var spamIndicators = []string{
	"🚀🚀🚀", "💎💎💎", "URGENT", "LIMITED TIME", "GUARANTEE",
}

// ContentQuality scores a post set in [0,1] as the mean of per-post quality.
// Returns 0 for an empty set.
func ContentQuality(posts []model.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range posts {
		sum += postQuality(p)
	}
	return sum / float64(len(posts))
}

// postQuality weighs length 0.4, sophistication 0.4, views 0.2, clamped to
// [0,1]. Lengths between the named breakpoints (50-99 and 501-1000 runes)
// keep the default 1.0.
func postQuality(p model.Post) float64 {
	length := utf8.RuneCountInString(p.Text)
	lengthScore := 1.0
	switch {
	case length < 50:
		lengthScore = 0.3
	case length > 1000:
		lengthScore = 0.7
	}

	sophistication := 0.5
	if strings.Contains(p.Text, "#") {
		sophistication += 0.1
	}
	if strings.Contains(p.Text, "@") {
		sophistication += 0.1
	}
	if strings.Contains(p.Text, "http") || strings.Contains(p.Text, "www") {
		sophistication += 0.1
	}
	if util.ContainsAnyFold(p.Text, cryptoKeywords) {
		sophistication += 0.2
	}
	for _, ind := range spamIndicators {
		if strings.Contains(p.Text, ind) {
			sophistication -= 0.3
			break
		}
	}

	viewsFactor := math.Min(float64(p.Views)/1000, 1.0)

	return clamp01(lengthScore*0.4 + sophistication*0.4 + viewsFactor*0.2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
