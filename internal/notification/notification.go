package notification

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

const TypeInvitationAccepted = "invitation_accepted"

// Event is a fire-and-forget message toward a single user. Delivery
// mechanics (email, push) live downstream of the outbox table.
type Event struct {
	RecipientID snowflake.ID
	Type        string
	ProjectID   snowflake.ID
	ActorID     snowflake.ID
}

type Sink interface {
	Publish(ctx context.Context, event Event) error
}
