package utils

import (
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// GenerateID returns a fresh UUID string for entities keyed by opaque ids.
func GenerateID() string {
	return uuid.New().String()
}

// IsUUID checks if the string is a valid UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Slugify derives a URL-friendly slug from a display name ("High Five" -> "high-five").
func Slugify(name string) string {
	return slug.Make(name)
}
