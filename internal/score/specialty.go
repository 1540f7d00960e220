package score

import (
	"strings"

	"kolscan/internal/model"
)

// specialtyBuckets are checked in this fixed order; tagging is deterministic
// and capped at three tags.
var specialtyBuckets = []struct {
	tag   string
	words []string
}{
	{"Bitcoin", []string{"bitcoin", "btc", "cryptocurrency", "blockchain"}},
	{"DeFi", []string{"ethereum", "eth", "defi", "smart contract"}},
	{"NFT", []string{"nft", "opensea", "rare", "collectible"}},
	{"Trading", []string{"trading", "chart", "technical analysis", "ta"}},
	{"Altcoins", []string{"altcoin", "gem", "moonshot", "small cap"}},
	{"Market Analysis", []string{"market", "news", "analysis", "report"}},
}

// Specialties keyword-matches aggregated lower-cased post text into topic
// buckets. Returns at most three tags in bucket order; nil for no posts.
func Specialties(posts []model.Post) []string {
	if len(posts) == 0 {
		return nil
	}
	var b strings.Builder
	for _, p := range posts {
		b.WriteString(strings.ToLower(p.Text))
		b.WriteByte(' ')
	}
	return TagText(b.String())
}

// TagText classifies already lower-cased text against the specialty buckets.
func TagText(all string) []string {
	var tags []string
	for _, bucket := range specialtyBuckets {
		for _, w := range bucket.words {
			if strings.Contains(all, w) {
				tags = append(tags, bucket.tag)
				break
			}
		}
		if len(tags) == 3 {
			break
		}
	}
	return tags
}
