package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateClientID checks the names used as keys in the API key map.
func ValidateClientID(client string) error {
	if client == "" {
		return fmt.Errorf("client ID cannot be empty")
	}
	if !clientIDPattern.MatchString(client) {
		return fmt.Errorf("invalid client ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAPIKeys validates every client name and rejects empty keys.
func ValidateAPIKeys(keys map[string]string) error {
	for client, key := range keys {
		if err := ValidateClientID(client); err != nil {
			return err
		}
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("empty API key for client %s", client)
		}
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ParseLimit reads a limit query value; anything unparsable means default.
func ParseLimit(raw string) int {
	n, _ := strconv.Atoi(raw)
	return ValidateLimit(n)
}
