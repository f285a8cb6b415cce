package handlers

import (
	"regexp"
	"strings"
	"time"
)

// Username must be email-shaped; passwords carry a minimum length.
var emailRegex = regexp.MustCompile(`^\w+([._]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)

const minPasswordLength = 8

func validateCredentials(username, password string) []string {
	var msgs []string
	if strings.TrimSpace(username) == "" {
		msgs = append(msgs, "username should not be empty")
	} else if !emailRegex.MatchString(username) {
		msgs = append(msgs, "username must be an email address")
	}
	if password == "" {
		msgs = append(msgs, "password should not be empty")
	} else if len(password) < minPasswordLength {
		msgs = append(msgs, "password must be at least 8 characters")
	}
	return msgs
}

func validateJournalTitle(title string) []string {
	if strings.TrimSpace(title) == "" {
		return []string{"title should not be empty"}
	}
	return nil
}

func validatePage(title, date string) ([]string, time.Time) {
	var msgs []string
	if strings.TrimSpace(title) == "" {
		msgs = append(msgs, "title should not be empty")
	}
	var parsed time.Time
	if date == "" {
		msgs = append(msgs, "date should not be empty")
	} else {
		var err error
		parsed, err = time.Parse(time.RFC3339, date)
		if err != nil {
			msgs = append(msgs, "date must be a valid ISO 8601 date string")
		}
	}
	return msgs, parsed
}
