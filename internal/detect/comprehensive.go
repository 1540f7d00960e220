package detect

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"kolscan/internal/model"
	"kolscan/internal/score"
	"kolscan/internal/tgclient"
	"kolscan/internal/util"
)

// Comprehensive is the message-driven fallback strategy. It exists because
// per-user post filtering is permission-dependent: when only channel-wide
// history is readable, influence is approximated from the language and
// engagement visible in recent messages. It is a degraded alternative to
// the Detector, not a replacement.
type Comprehensive struct {
	Client tgclient.Client
	// MessageLimit bounds the history scan; defaults to 100.
	MessageLimit int
}

const (
	comprehensiveMessageLimit = 100
	comprehensiveTopN         = 10

	adminInclusionThreshold    = 15
	nonAdminInclusionThreshold = 20

	verifiedAdminBonus = 15
	adminBonus         = 10
)

var cryptoSignalWords = []string{
	"bitcoin", "btc", "ethereum", "eth", "crypto", "defi", "nft",
	"token", "coin", "trading", "market", "price", "pump", "analysis",
	"bullish", "bearish", "altcoin",
}

var leadershipPhrases = []string{
	"i recommend", "my analysis", "buy signal", "sell signal",
	"entry point", "take profit", "stop loss", "my portfolio",
	"follow my", "join my", "alpha", "dyor",
}

var crossPlatformMarkers = []string{
	"twitter.com", "x.com", "youtube.com", "youtu.be",
	"discord.gg", "instagram.com", "tiktok.com",
}

// Three wallet-address shapes: EVM hex, Bitcoin (legacy + bech32), and
// Solana Base58.
var walletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`0x[0-9a-fA-F]{40}`),
	regexp.MustCompile(`\b(?:[13][1-9A-HJ-NP-Za-km-z]{25,39}|bc1[0-9a-z]{20,})\b`),
	regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`),
}

type senderStats struct {
	userID             int64
	messageCount       int
	cryptoSignals      int
	leadership         int
	walletMentions     int
	crossPlatformRefs  int
	engagementReceived int
	texts              []model.Post
}

func (s *senderStats) rawScore() int {
	return s.messageCount*1 +
		s.cryptoSignals*3 +
		s.engagementReceived*2 +
		s.leadership*4 +
		s.walletMentions*2 +
		s.crossPlatformRefs*1
}

func (s *senderStats) hasSignal() bool {
	return s.cryptoSignals > 0 || s.leadership > 0 || s.walletMentions > 0 || s.crossPlatformRefs > 0
}

func NewComprehensive(client tgclient.Client) *Comprehensive {
	return &Comprehensive{Client: client}
}

func (c *Comprehensive) Name() string { return "comprehensive-engagement" }

// Identify scans recent channel messages, accumulates per-sender signal
// counters, and returns the top scorers (at most ten). Admins get a flat
// bonus and a lower inclusion bar.
func (c *Comprehensive) Identify(ctx context.Context, in Input) ([]model.KOLDetail, error) {
	limit := c.MessageLimit
	if limit <= 0 {
		limit = comprehensiveMessageLimit
	}
	msgs, err := c.Client.GetRecentMessages(ctx, in.ChannelRef, tgclient.MessageFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	stats := make(map[int64]*senderStats)
	for _, m := range msgs {
		if m.SenderID == 0 || m.Text == "" {
			continue
		}
		s, ok := stats[m.SenderID]
		if !ok {
			s = &senderStats{userID: m.SenderID}
			stats[m.SenderID] = s
		}
		s.messageCount++
		s.engagementReceived += m.Replies
		s.texts = append(s.texts, m)

		text := strings.ToLower(m.Text)
		s.cryptoSignals += util.CountMatchesFold(text, cryptoSignalWords)
		s.leadership += util.CountMatchesFold(text, leadershipPhrases)
		s.crossPlatformRefs += util.CountMatchesFold(text, crossPlatformMarkers)
		for _, re := range walletPatterns {
			if re.MatchString(m.Text) {
				s.walletMentions++
				break
			}
		}
	}

	// Admins are candidates even when silent in the window.
	for id := range in.Admins {
		if _, ok := stats[id]; !ok {
			stats[id] = &senderStats{userID: id}
		}
	}

	type scored struct {
		stats *senderStats
		total int
		admin model.Participant
		isAdm bool
	}
	var kept []scored
	for id, s := range stats {
		admin, isAdmin := in.Admins[id]
		total := s.rawScore()
		if isAdmin {
			if admin.IsVerified {
				total += verifiedAdminBonus
			} else {
				total += adminBonus
			}
			if total >= adminInclusionThreshold || admin.IsVerified || s.hasSignal() {
				kept = append(kept, scored{stats: s, total: total, admin: admin, isAdm: true})
			}
			continue
		}
		// Non-admins qualify on raw activity alone.
		if s.rawScore() >= nonAdminInclusionThreshold {
			kept = append(kept, scored{stats: s, total: total})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].total > kept[j].total })
	if len(kept) > comprehensiveTopN {
		kept = kept[:comprehensiveTopN]
	}

	out := make([]model.KOLDetail, 0, len(kept))
	for _, k := range kept {
		d := model.KOLDetail{
			UserID:         k.stats.userID,
			InfluenceScore: float64(k.total),
			EngagementRate: float64(k.stats.engagementReceived),
			SpecialtyTags:  score.Specialties(k.stats.texts),
		}
		if k.isAdm {
			d.Username = k.admin.Username
			d.FirstName = k.admin.FirstName
			d.LastName = k.admin.LastName
			d.IsAdmin = true
			d.IsVerified = k.admin.IsVerified
			d.FollowerCount = k.admin.FollowerCount
		} else {
			c.fillIdentity(ctx, &d)
		}
		out = append(out, d)
	}
	return out, nil
}

// fillIdentity resolves a sender's user entity; failure leaves the id-only
// record in place rather than dropping it.
func (c *Comprehensive) fillIdentity(ctx context.Context, d *model.KOLDetail) {
	u, err := c.Client.GetUserEntity(ctx, formatUserID(d.UserID))
	if err != nil {
		return
	}
	d.Username = u.Username
	d.FirstName = u.FirstName
	d.LastName = u.LastName
	d.IsVerified = u.IsVerified
	d.FollowerCount = u.FollowerCount
}
