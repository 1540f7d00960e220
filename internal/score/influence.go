package score

import "math"

// Influence combines normalized sub-scores into a 0-100 influence score.
// Caps: views 10k, engagement 20%, frequency 10/week, followers 50k.
func Influence(avgViews, engagementRate, postingFrequency, contentQuality float64, verified, admin bool, followers int) float64 {
	viewsScore := math.Min(avgViews/10000, 1.0)
	engagementScore := math.Min(engagementRate/20, 1.0)
	frequencyScore := math.Min(postingFrequency/10, 1.0)
	followersScore := math.Min(float64(followers)/50000, 1.0)

	base := viewsScore*0.25 +
		engagementScore*0.25 +
		frequencyScore*0.15 +
		contentQuality*0.20 +
		followersScore*0.15

	if verified {
		base += 0.10
	}
	if admin {
		base += 0.05
	}

	return math.Min(base, 1.0) * 100
}
