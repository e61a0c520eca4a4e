package instance

import (
	"os"

	"github.com/angelmondragon/farmstore/pkg/env"
)

// GetID identifies the running process in logs. An explicit id wins over
// the platform's dyno name and the host name.
func GetID() string {
	if id := env.First("", "FARMSTORE_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
