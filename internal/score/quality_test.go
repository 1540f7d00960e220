package score

import (
	"math"
	"strings"
	"testing"

	"kolscan/internal/model"
)

func TestPostQualityLengthBands(t *testing.T) {
	cases := []struct {
		name string
		text string
		want float64
	}{
		// length<50: 0.3*0.4 + 0.5*0.4 = 0.32
		{"short", "brief note", 0.32},
		// 100..500 runes: 1.0*0.4 + 0.5*0.4 = 0.60
		{"ideal", strings.Repeat("a ", 60), 0.60},
		// >1000 runes: 0.7*0.4 + 0.5*0.4 = 0.56
		{"verbose", strings.Repeat("a ", 600), 0.56},
		// 50..99 runes keeps the default length score 1.0
		{"between", strings.Repeat("a ", 35), 0.60},
	}
	for _, c := range cases {
		got := postQuality(model.Post{Text: c.text})
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%s: quality = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPostQualitySophisticationSignals(t *testing.T) {
	text := strings.Repeat("x ", 60) + "#update @friend http://example.com bitcoin outlook"
	// length 1.0, sophistication 0.5+0.1+0.1+0.1+0.2=1.0, views 0
	got := postQuality(model.Post{Text: text})
	if math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("rich post quality = %v, want 0.8", got)
	}
}

func TestPostQualitySpamPenalty(t *testing.T) {
	clean := postQuality(model.Post{Text: strings.Repeat("y ", 60) + "steady progress"})
	spammy := postQuality(model.Post{Text: strings.Repeat("y ", 60) + "URGENT steady progress"})
	if math.Abs((clean-spammy)-0.12) > 1e-9 {
		t.Fatalf("spam penalty delta = %v, want 0.12", clean-spammy)
	}
}

func TestContentQualityEmptyAndClamped(t *testing.T) {
	if got := ContentQuality(nil); got != 0 {
		t.Fatalf("empty set = %v, want 0", got)
	}
	posts := []model.Post{{Text: "🚀🚀🚀 URGENT"}, {Text: "GUARANTEE 💎💎💎"}}
	got := ContentQuality(posts)
	if got < 0 || got > 1 {
		t.Fatalf("quality out of range: %v", got)
	}
}

func TestViewsFactorCapped(t *testing.T) {
	low := postQuality(model.Post{Text: strings.Repeat("z ", 60), Views: 500})
	capped := postQuality(model.Post{Text: strings.Repeat("z ", 60), Views: 50000})
	if math.Abs((capped-low)-0.1) > 1e-9 {
		t.Fatalf("views factor delta = %v, want 0.1", capped-low)
	}
}
