package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new time-ordered identifier. Version 7 ids sort by creation
// time, so ids issued later compare greater, which keeps id tie-breaks stable.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
