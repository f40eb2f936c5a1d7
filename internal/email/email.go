package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightagent/internal/kafka"
)

// Sender delivers search-completed notifications. The demo sender prints
// instead of talking to a mail relay.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.SearchEvent) error {
	fmt.Printf("notify: search %s %s->%s on %s found %d direct flights, cheapest %d %s\n",
		event.ID, event.Origin, event.Destination, event.Date, event.DirectCount, event.CheapestPrice, event.Currency)
	return nil
}
