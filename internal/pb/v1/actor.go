package pb

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// Metadata keys carrying the caller identity.
const (
	MetadataUsername = "x-orbit-username"
	MetadataHostname = "x-orbit-hostname"
)

// SystemActor identifies the user and host behind a call.
type SystemActor struct {
	// Hostname is the machine the call came from.
	Hostname string
	// Username is the account that issued the call.
	Username string
}

// String returns username@hostname.
func (a *SystemActor) String() string {
	if a == nil {
		return ""
	}

	return a.Username + "@" + a.Hostname
}

// AppendActor attaches actor to the outgoing metadata of ctx.
func AppendActor(ctx context.Context, actor *SystemActor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		MetadataUsername, actor.Username,
		MetadataHostname, actor.Hostname,
	)
}

// ActorFromIncoming reads the actor of an incoming call. It returns nil when
// the caller sent no username.
func ActorFromIncoming(ctx context.Context) *SystemActor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	usernames := md.Get(MetadataUsername)
	if len(usernames) == 0 || usernames[0] == "" {
		return nil
	}

	actor := &SystemActor{Username: usernames[0]}
	if hostnames := md.Get(MetadataHostname); len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	return actor
}
