//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"os/user"

	pb "github.com/oshokin/golden-orbit/internal/pb/v1"
)

// unknownIdentity stands in for a hostname or username that cannot be read.
const unknownIdentity = "unknown"

// DetectActor returns the local hostname and username sent with every request.
// Control-room consoles often run in containers without a passwd entry, so
// the USER and LOGNAME variables are tried before giving up.
func DetectActor() *pb.SystemActor {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = unknownIdentity
	}

	return &pb.SystemActor{
		Hostname: hostname,
		Username: detectUsername(),
	}
}

func detectUsername() string {
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}

	for _, key := range []string{"USER", "LOGNAME"} {
		if name := os.Getenv(key); name != "" {
			return name
		}
	}

	return unknownIdentity
}
