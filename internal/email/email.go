package email

import (
	"context"
	"fmt"

	"github.com/krylovda/pitchbook/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify player %d: %s for pitch %d on %s %s-%s\n",
		event.PlayerID, event.Type, event.PitchID, event.BookingDate, event.StartTime, event.EndTime)
	return nil
}
