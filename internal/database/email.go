package database

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// emailMatch matches a stored email the way the customer join compares them:
// ignoring case and surrounding whitespace.
func emailMatch(email string) primitive.Regex {
	key := strings.ToLower(strings.TrimSpace(email))
	return primitive.Regex{Pattern: `^\s*` + regexp.QuoteMeta(key) + `\s*$`, Options: "i"}
}
