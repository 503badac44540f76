// Package env provides host environment information.
package env

import (
	"github.com/denisbrodbeck/machineid"
)

const appID = "robotalks.sport"

// MachineID retrieves a short ID identifying the machine, stable for this
// application and not revealing the raw machine ID. Falls back to
// "unknown" when the host provides no machine ID.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil || len(id) < 12 {
		return "unknown"
	}
	return id[:12]
}
