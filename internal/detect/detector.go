package detect

import (
	"context"
	"sort"
	"time"

	"kolscan/internal/logging"
	"kolscan/internal/metrics"
	"kolscan/internal/model"
	"kolscan/internal/score"
	"kolscan/internal/tgclient"
)

// Detector is the participant-metrics KOL identification strategy: for each
// participant it collects that user's recent posts in the channel, computes
// a KOLMetrics record, and keeps the ones that pass the criteria.
type Detector struct {
	Client   tgclient.Client
	Criteria model.KOLCriteria
	// FetchWindow and PostLimit default to the score package constants.
	FetchWindow int
	PostLimit   int
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewDetector(client tgclient.Client, criteria model.KOLCriteria) *Detector {
	return &Detector{Client: client, Criteria: criteria}
}

func (d *Detector) Name() string { return "participant-metrics" }

// Analyze scores every participant and returns the qualifying metrics,
// sorted by influence score descending. A failure on one user is logged and
// skipped; it never aborts the batch.
func (d *Detector) Analyze(ctx context.Context, channelRef string, participants []model.Participant) []model.KOLMetrics {
	now := time.Now().UTC()
	if d.Now != nil {
		now = d.Now()
	}
	var candidates []model.KOLMetrics
	for _, p := range participants {
		if p.UserID == 0 {
			continue
		}
		// Bots are excluded unless verified.
		if p.IsBot && !p.IsVerified {
			continue
		}
		posts, err := d.userPosts(ctx, channelRef, p.UserID)
		if err != nil {
			logging.Warn("participant_analysis_failed", map[string]any{
				"user_id": p.UserID, "channel": channelRef, "error": err.Error(),
			})
			continue
		}
		metrics.UsersAnalyzed.Inc()
		m := score.ComputeMetrics(p, posts, now)
		m.QualifiesAsKOL = score.Evaluate(m, d.Criteria)
		if m.QualifiesAsKOL {
			candidates = append(candidates, m)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].InfluenceScore > candidates[j].InfluenceScore
	})
	return candidates
}

// Identify adapts Analyze to the Strategy seam.
func (d *Detector) Identify(ctx context.Context, in Input) ([]model.KOLDetail, error) {
	kols := d.Analyze(ctx, in.ChannelRef, in.Participants)
	out := make([]model.KOLDetail, 0, len(kols))
	for _, m := range kols {
		out = append(out, m.Detail())
	}
	return out, nil
}

// userPosts fetches a bounded window of channel messages and keeps the
// user's own non-empty posts, truncated to the post limit.
func (d *Detector) userPosts(ctx context.Context, channelRef string, userID int64) ([]model.Post, error) {
	window := d.FetchWindow
	if window <= 0 {
		window = score.FetchWindow
	}
	limit := d.PostLimit
	if limit <= 0 {
		limit = score.DefaultPostLimit
	}
	msgs, err := d.Client.GetRecentMessages(ctx, channelRef, tgclient.MessageFilter{
		FromUserID: userID,
		Limit:      window,
	})
	if err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, limit)
	for _, m := range msgs {
		// The gateway may ignore the sender filter; keep it strict here.
		if m.SenderID != userID || m.Text == "" {
			continue
		}
		posts = append(posts, m)
		if len(posts) >= limit {
			break
		}
	}
	return posts, nil
}
