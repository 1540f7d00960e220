package model

import "time"

// Participant is a channel member as reported by the platform.
// Optional platform fields are resolved once at ingestion; a zero value is
// the documented default (no photo, unknown dates, zero followers).
type Participant struct {
	UserID        int64
	Username      string
	FirstName     string
	LastName      string
	IsBot         bool
	IsVerified    bool
	IsAdmin       bool
	HasPhoto      bool
	FollowerCount int       // platform subscriber count, 0 if not exposed
	JoinedAt      time.Time // zero if unknown
	CreatedAt     time.Time // account creation, zero if unknown
}

// Post is one channel message attributable to a sender within the scan
// window. Slices of Post are ordered by Date descending (index 0 = most
// recent); that ordering is significant for frequency and burst checks.
type Post struct {
	ID        int64
	SenderID  int64 // 0 if the platform hid the sender
	Date      time.Time
	Text      string
	Views     int
	Forwards  int
	Replies   int
	Reactions int
}

// Channel holds the channel metadata a report is built around.
type Channel struct {
	ID          int64
	Title       string
	Username    string
	Description string
	MemberCount int
	Verified    bool
	Scam        bool
	Fake        bool
}

// KOLCriteria are the tunable thresholds for KOL qualification. All
// thresholds are non-negative; MaxBotProbability and
// QualityContentThreshold live in [0,1].
type KOLCriteria struct {
	MinFollowers            int     `yaml:"minFollowers"`
	MinEngagementRate       float64 `yaml:"minEngagementRate"` // percent
	MinPostsPerWeek         float64 `yaml:"minPostsPerWeek"`
	MinAverageViews         int     `yaml:"minAverageViews"`
	MinForwardRatio         float64 `yaml:"minForwardRatio"`
	MaxBotProbability       float64 `yaml:"maxBotProbability"`
	MinAccountAgeDays       int     `yaml:"minAccountAgeDays"`
	QualityContentThreshold float64 `yaml:"qualityContentThreshold"`
}

// DefaultCriteria returns the stock thresholds.
func DefaultCriteria() KOLCriteria {
	return KOLCriteria{
		MinFollowers:            1000,
		MinEngagementRate:       2.0,
		MinPostsPerWeek:         3.0,
		MinAverageViews:         500,
		MinForwardRatio:         0.05,
		MaxBotProbability:       0.3,
		MinAccountAgeDays:       90,
		QualityContentThreshold: 0.6,
	}
}

// KOLMetrics is the per-user scoring record built fresh for each scan.
// Invariants: BotProbability and ContentQualityScore in [0,1],
// InfluenceScore in [0,100].
type KOLMetrics struct {
	UserID              int64
	Username            string
	FirstName           string
	LastName            string
	IsAdmin             bool
	IsVerified          bool
	FollowerCount       int
	PostCount           int
	EngagementRate      float64 // percent
	AvgViews            float64
	AvgForwards         float64
	ForwardRatio        float64
	PostingFrequency    float64 // posts per week
	ContentQualityScore float64
	BotProbability      float64
	AccountAgeDays      int
	InfluenceScore      float64
	QualifiesAsKOL      bool
	SpecialtyTags       []string
}

// KOLDetail is the report-facing summary of one qualifying user.
type KOLDetail struct {
	UserID              int64    `json:"user_id"`
	Username            string   `json:"username,omitempty"`
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name,omitempty"`
	IsAdmin             bool     `json:"is_admin"`
	IsVerified          bool     `json:"is_verified"`
	InfluenceScore      float64  `json:"influence_score"`
	EngagementRate      float64  `json:"engagement_rate"`
	AvgViews            float64  `json:"avg_views"`
	PostingFrequency    float64  `json:"posting_frequency"`
	ContentQualityScore float64  `json:"content_quality_score"`
	BotProbability      float64  `json:"bot_probability"`
	SpecialtyTags       []string `json:"specialty_tags"`
	FollowerCount       int      `json:"follower_count"`
}

// Detail converts a metrics record to its report summary.
func (m KOLMetrics) Detail() KOLDetail {
	return KOLDetail{
		UserID:              m.UserID,
		Username:            m.Username,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		IsAdmin:             m.IsAdmin,
		IsVerified:          m.IsVerified,
		InfluenceScore:      m.InfluenceScore,
		EngagementRate:      m.EngagementRate,
		AvgViews:            m.AvgViews,
		PostingFrequency:    m.PostingFrequency,
		ContentQualityScore: m.ContentQualityScore,
		BotProbability:      m.BotProbability,
		SpecialtyTags:       m.SpecialtyTags,
		FollowerCount:       m.FollowerCount,
	}
}

// MessageActivity summarizes one recent channel message for the report.
type MessageActivity struct {
	MessageID int64     `json:"message_id"`
	SenderID  int64     `json:"sender_id"`
	Date      time.Time `json:"date"`
	Views     int       `json:"views"`
	Forwards  int       `json:"forwards"`
}

// ChannelReport is the per-scan output. It is built once per invocation and
// carries no state across calls; scan history lives in the store, not here.
// EnhancedData is false when participant-level retrieval was unavailable and
// only basic channel metadata could be reported.
type ChannelReport struct {
	ChannelID      int64             `json:"channel_id"`
	Title          string            `json:"title"`
	Username       string            `json:"username,omitempty"`
	Description    string            `json:"description,omitempty"`
	MemberCount    int               `json:"member_count"`
	Verified       bool              `json:"verified"`
	Scam           bool              `json:"scam"`
	Fake           bool              `json:"fake"`
	MessageCount   int               `json:"message_count"`
	RecentActivity []MessageActivity `json:"recent_activity"`
	EnhancedData   bool              `json:"enhanced_data"`
	ActiveMembers  int               `json:"active_members"`
	AdminCount     int               `json:"admin_count"`
	BotCount       int               `json:"bot_count"`
	KOLCount       int               `json:"kol_count"`
	KOLDetails     []KOLDetail       `json:"kol_details"`
	ScannedAt      time.Time         `json:"scanned_at"`
}
