package detect

import (
	"context"
	"strconv"

	"kolscan/internal/model"
)

// Input carries what a strategy needs to identify KOLs in one channel.
// Participants may be empty when the platform withheld the member list;
// Admins is keyed by user id and may also be empty.
type Input struct {
	ChannelRef   string
	Participants []model.Participant
	Admins       map[int64]model.Participant
}

// Strategy identifies KOLs for a channel. Two implementations exist: the
// participant-metrics Detector (preferred) and the message-driven
// Comprehensive scorer (used when per-user post history is unobtainable).
// They are selected by data availability and never merged.
type Strategy interface {
	Name() string
	Identify(ctx context.Context, in Input) ([]model.KOLDetail, error)
}

// Select picks the strategy the available data supports.
func Select(participantsAvailable bool, d *Detector, c *Comprehensive) Strategy {
	if participantsAvailable {
		return d
	}
	return c
}

func formatUserID(id int64) string { return strconv.FormatInt(id, 10) }
