package models

// Group is a shared namespace backed by one storage directory.
type Group struct {
	ID int64
	// Name is the unique, user-chosen display name.
	Name string
	// PathName is the directory name under the storage root. It differs
	// from Name when the directory name collided at creation time.
	PathName string
	OwnerID  int64
}
