// Package groups keeps the in-memory directory of groups and creates new
// ones together with their storage directory.
package groups

// Group is a named shared namespace with one owner and a storage subtree.
type Group struct {
	ID       int64
	Name     string
	PathName string
	OwnerID  int64
}

// IsOwner reports whether accountID owns the group.
func (g *Group) IsOwner(accountID int64) bool {
	return g.OwnerID == accountID
}
