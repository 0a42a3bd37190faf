package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/ports"
)

// LogSink writes activity to the log. Used when no broker is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, a ports.TicketActivity) error {
	s.log.Info().
		Str("event_id", a.ID).
		Str("routing_key", a.RoutingKey()).
		Int64("ticket_id", a.TicketID).
		Ints64("member_ids", a.MemberIDs).
		Time("at", a.At).
		Msg("ticket activity")
	return nil
}
