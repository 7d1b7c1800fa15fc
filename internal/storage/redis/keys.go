package redis

import "fmt"

// Key prefix for all listgate data
const keyPrefix = "listgate"

// settingsKey returns the default Redis key for the settings document
func settingsKey() string {
	return fmt.Sprintf("%s:config", keyPrefix)
}
