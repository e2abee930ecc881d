package instance

import "os"

// GetID returns the process instance identifier used in startup logs. Heroku
// style DYNO names win over an explicit INSTANCE_ID.
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	return "local"
}
