package types

// Status is a type for the status of a record in the database.
// This is used to track the lifecycle of a record and to determine if it should be included in queries
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)
