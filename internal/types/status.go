package types

// Status is the soft archival state of a persisted row. It is distinct from
// the active flag on subscription events which carries replay semantics.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

func (s Status) String() string {
	return string(s)
}
