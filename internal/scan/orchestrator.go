package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kolscan/internal/detect"
	"kolscan/internal/logging"
	"kolscan/internal/metrics"
	"kolscan/internal/model"
	"kolscan/internal/tgclient"
	"kolscan/internal/util"
)

// ErrChannelResolution marks a channel that could not be resolved at all.
// It is distinct from an empty report so callers can tell "inaccessible"
// apart from "zero members".
var ErrChannelResolution = errors.New("channel resolution failed")

const recentActivityCap = 10

// Orchestrator runs one full channel analysis: resolve the channel, fetch
// admin and recent participant sets, classify members, run the KOL strategy
// the data supports, and assemble the report. It holds no per-scan state and
// is safe to use concurrently for different channels.
type Orchestrator struct {
	Client       tgclient.Client
	Criteria     model.KOLCriteria
	MessageLimit int // recent channel-message window, default 100
	// RecentParticipantLimit bounds the recent-participant query; 0 means
	// the gateway default.
	RecentParticipantLimit int
	// PostFetchWindow and PostLimit govern per-user post collection in the
	// detector; 0 means the detector defaults.
	PostFetchWindow int
	PostLimit       int
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewOrchestrator(client tgclient.Client, criteria model.KOLCriteria) *Orchestrator {
	return &Orchestrator{Client: client, Criteria: criteria}
}

// ScanChannel builds a ChannelReport for ref. If the channel itself cannot
// be resolved the error wraps ErrChannelResolution. If participant-level
// retrieval fails the report degrades to basic fields with
// EnhancedData=false rather than failing.
func (o *Orchestrator) ScanChannel(ctx context.Context, ref string) (model.ChannelReport, error) {
	start := time.Now()
	metrics.ScanRuns.Inc()
	defer metrics.ObserveScanDuration(start)

	ch, err := o.Client.ResolveChannel(ctx, ref)
	if err != nil {
		metrics.ScanErrors.Inc()
		return model.ChannelReport{}, fmt.Errorf("%w: %s: %v", ErrChannelResolution, ref, err)
	}

	now := time.Now().UTC()
	if o.Now != nil {
		now = o.Now()
	}
	report := model.ChannelReport{
		ChannelID:   ch.ID,
		Title:       ch.Title,
		Username:    ch.Username,
		Description: util.NormalizeWhitespace(ch.Description),
		MemberCount: ch.MemberCount,
		Verified:    ch.Verified,
		Scam:        ch.Scam,
		Fake:        ch.Fake,
		ScannedAt:   now,
	}

	msgLimit := o.MessageLimit
	if msgLimit <= 0 {
		msgLimit = 100
	}
	activeSenders := make(map[int64]struct{})
	msgs, err := o.Client.GetRecentMessages(ctx, ref, tgclient.MessageFilter{Limit: msgLimit})
	if err != nil {
		logging.Warn("recent_messages_unavailable", map[string]any{"channel": ref, "error": err.Error()})
	} else {
		report.MessageCount = len(msgs)
		for i, m := range msgs {
			if m.SenderID != 0 {
				activeSenders[m.SenderID] = struct{}{}
			}
			if i < recentActivityCap {
				report.RecentActivity = append(report.RecentActivity, model.MessageActivity{
					MessageID: m.ID,
					SenderID:  m.SenderID,
					Date:      m.Date,
					Views:     m.Views,
					Forwards:  m.Forwards,
				})
			}
		}
	}

	admins, adminErr := o.Client.GetParticipants(ctx, ref, tgclient.ParticipantFilter{Role: tgclient.RoleAdmins})
	recent, recentErr := o.Client.GetParticipants(ctx, ref, tgclient.ParticipantFilter{
		Role:  tgclient.RoleRecent,
		Limit: o.RecentParticipantLimit,
	})
	if adminErr != nil && recentErr != nil {
		// Graceful degradation: basic channel metadata only.
		logging.Info("scan_basic_only", map[string]any{
			"channel": ref, "admin_error": adminErr.Error(), "recent_error": recentErr.Error(),
		})
		return report, nil
	}

	adminSet := make(map[int64]model.Participant, len(admins))
	for _, a := range admins {
		adminSet[a.UserID] = a
	}
	participants := mergeParticipants(admins, recent)

	for _, p := range participants {
		switch {
		case p.IsBot:
			report.BotCount++
		case p.IsAdmin:
			report.AdminCount++
		}
		if _, active := activeSenders[p.UserID]; active || (p.HasPhoto && p.Username != "") {
			report.ActiveMembers++
		}
	}

	detector := detect.NewDetector(o.Client, o.Criteria)
	detector.FetchWindow = o.PostFetchWindow
	detector.PostLimit = o.PostLimit
	detector.Now = o.Now
	strategy := detect.Select(len(participants) > 0, detector, detect.NewComprehensive(o.Client))
	kols, err := strategy.Identify(ctx, detect.Input{
		ChannelRef:   ref,
		Participants: participants,
		Admins:       adminSet,
	})
	if err != nil {
		logging.Warn("kol_identification_failed", map[string]any{
			"channel": ref, "strategy": strategy.Name(), "error": err.Error(),
		})
	} else {
		report.KOLDetails = kols
		report.KOLCount = len(kols)
		metrics.KOLsFound.Add(float64(len(kols)))
	}
	report.EnhancedData = true

	logging.Info("scan_complete", map[string]any{
		"channel":  ref,
		"strategy": strategy.Name(),
		"members":  report.MemberCount,
		"active":   report.ActiveMembers,
		"bots":     report.BotCount,
		"admins":   report.AdminCount,
		"kols":     report.KOLCount,
	})
	return report, nil
}

// mergeParticipants deduplicates by user id; the admin record wins so the
// admin flag survives the merge.
func mergeParticipants(admins, recent []model.Participant) []model.Participant {
	seen := make(map[int64]struct{}, len(admins)+len(recent))
	out := make([]model.Participant, 0, len(admins)+len(recent))
	for _, p := range admins {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		p.IsAdmin = true
		out = append(out, p)
	}
	for _, p := range recent {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		out = append(out, p)
	}
	return out
}
