package score

import "kolscan/internal/model"

// Evaluate applies the threshold policy to a computed metrics record. Seven
// independent checks are counted and at least 60% must pass. Two overrides
// force qualification: verified or admin users with influence >= 30, and any
// user with influence >= 70. A user with zero posts never qualifies.
func Evaluate(m model.KOLMetrics, c model.KOLCriteria) bool {
	if m.PostCount == 0 {
		return false
	}

	met, total := 0, 0
	check := func(ok bool) {
		total++
		if ok {
			met++
		}
	}
	check(m.FollowerCount >= c.MinFollowers || m.IsVerified || m.IsAdmin)
	check(m.EngagementRate >= c.MinEngagementRate)
	check(m.PostingFrequency >= c.MinPostsPerWeek)
	check(m.AvgViews >= float64(c.MinAverageViews))
	check(m.ForwardRatio >= c.MinForwardRatio)
	check(m.BotProbability <= c.MaxBotProbability)
	check(m.ContentQualityScore >= c.QualityContentThreshold)

	meets := float64(met) >= float64(total)*0.6

	if (m.IsVerified || m.IsAdmin) && m.InfluenceScore >= 30 {
		meets = true
	}
	if m.InfluenceScore >= 70 {
		meets = true
	}
	return meets
}
