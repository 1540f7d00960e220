package tgclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"kolscan/internal/metrics"
	"kolscan/internal/model"
)

// ErrNotFound is returned when the gateway cannot resolve a channel or user.
var ErrNotFound = errors.New("entity not found")

// RoleFilter selects which participant slice to fetch.
type RoleFilter string

const (
	RoleAny    RoleFilter = ""
	RoleAdmins RoleFilter = "administrators"
	RoleRecent RoleFilter = "recent"
)

// MessageFilter narrows a recent-message query. FromUserID 0 means any
// sender.
type MessageFilter struct {
	FromUserID int64
	Limit      int
}

// ParticipantFilter narrows a participant query. Limit 0 means the gateway
// default.
type ParticipantFilter struct {
	Role  RoleFilter
	Limit int
}

// Client is the transport capability the engine consumes. Implementations
// must return messages ordered most recent first. Any implementation (live
// gateway, recorded fixtures, mock) satisfying this contract is acceptable.
type Client interface {
	ResolveChannel(ctx context.Context, ref string) (model.Channel, error)
	GetRecentMessages(ctx context.Context, channelRef string, f MessageFilter) ([]model.Post, error)
	GetParticipants(ctx context.Context, channelRef string, f ParticipantFilter) ([]model.Participant, error)
	GetUserEntity(ctx context.Context, ref string) (model.Participant, error)
}

// HTTPClient talks to the MTProto gateway service over its REST surface.
type HTTPClient struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: 20 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("TG_GATEWAY_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("TG_GATEWAY_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
}

type rawUser struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Bot               bool   `json:"bot"`
	Verified          bool   `json:"verified"`
	Admin             bool   `json:"admin"`
	Photo             bool   `json:"photo"`
	ParticipantsCount int    `json:"participants_count"`
	CreatedAt         string `json:"created_at"`
	JoinedAt          string `json:"joined_at"`
}

func (r rawUser) participant() model.Participant {
	p := model.Participant{
		UserID:        r.ID,
		Username:      r.Username,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		IsBot:         r.Bot,
		IsVerified:    r.Verified,
		IsAdmin:       r.Admin,
		HasPhoto:      r.Photo,
		FollowerCount: r.ParticipantsCount,
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.JoinedAt); err == nil {
		p.JoinedAt = t
	}
	return p
}

type rawMessage struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"sender_id"`
	Date      time.Time `json:"date"`
	Text      string    `json:"text"`
	Views     int       `json:"views"`
	Forwards  int       `json:"forwards"`
	Replies   int       `json:"replies"`
	Reactions int       `json:"reactions"`
}

func (r rawMessage) post() model.Post {
	return model.Post{
		ID:        r.ID,
		SenderID:  r.SenderID,
		Date:      r.Date,
		Text:      r.Text,
		Views:     r.Views,
		Forwards:  r.Forwards,
		Replies:   r.Replies,
		Reactions: r.Reactions,
	}
}

// ResolveChannel fetches channel metadata. A 404 maps to ErrNotFound so the
// caller can distinguish a missing channel from an empty one.
func (c *HTTPClient) ResolveChannel(ctx context.Context, ref string) (model.Channel, error) {
	var out model.Channel
	if ref == "" {
		return out, errors.New("empty channel ref")
	}
	u := fmt.Sprintf("%s/channels/%s", c.baseURL, url.PathEscape(ref))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}
	resp, err := c.doWithRetry(ctx, req, "/channels")
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return out, fmt.Errorf("%w: channel %s", ErrNotFound, ref)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			Username    string `json:"username"`
			Description string `json:"description"`
			MemberCount int    `json:"member_count"`
			Verified    bool   `json:"verified"`
			Scam        bool   `json:"scam"`
			Fake        bool   `json:"fake"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, err
	}
	out = model.Channel{
		ID:          raw.Data.ID,
		Title:       raw.Data.Title,
		Username:    raw.Data.Username,
		Description: raw.Data.Description,
		MemberCount: raw.Data.MemberCount,
		Verified:    raw.Data.Verified,
		Scam:        raw.Data.Scam,
		Fake:        raw.Data.Fake,
	}
	return out, nil
}

// GetRecentMessages returns recent channel messages, newest first.
func (c *HTTPClient) GetRecentMessages(ctx context.Context, channelRef string, f MessageFilter) ([]model.Post, error) {
	u := fmt.Sprintf("%s/channels/%s/messages?limit=%d", c.baseURL, url.PathEscape(channelRef), clamp(f.Limit, 1, 200))
	if f.FromUserID != 0 {
		u += "&from_user=" + strconv.FormatInt(f.FromUserID, 10)
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req, "/messages")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	var raw struct {
		Data []rawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, d.post())
	}
	return out, nil
}

// GetParticipants returns channel participants for a role slice.
func (c *HTTPClient) GetParticipants(ctx context.Context, channelRef string, f ParticipantFilter) ([]model.Participant, error) {
	u := fmt.Sprintf("%s/channels/%s/participants", c.baseURL, url.PathEscape(channelRef))
	q := url.Values{}
	if f.Role != RoleAny {
		q.Set("role", string(f.Role))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(clamp(f.Limit, 1, 500)))
	}
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req, "/participants")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	var raw struct {
		Data []rawUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Participant, 0, len(raw.Data))
	for _, d := range raw.Data {
		p := d.participant()
		if f.Role == RoleAdmins {
			p.IsAdmin = true
		}
		out = append(out, p)
	}
	return out, nil
}

// GetUserEntity resolves one user by id or username.
func (c *HTTPClient) GetUserEntity(ctx context.Context, ref string) (model.Participant, error) {
	var out model.Participant
	if ref == "" {
		return out, errors.New("empty user ref")
	}
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(ref))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}
	resp, err := c.doWithRetry(ctx, req, "/users")
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return out, fmt.Errorf("%w: user %s", ErrNotFound, ref)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("gateway status %d", resp.StatusCode)
	}
	var raw struct {
		Data rawUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, err
	}
	return raw.Data.participant(), nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, endpoint string) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				metrics.IncAPIRetry(endpoint)
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
