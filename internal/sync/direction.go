package sync

// Direction identifies which way content flows during a sync run.
type Direction string

const (
	// DirectionPush syncs local (source) content out to the target.
	DirectionPush Direction = "push"

	// DirectionPull syncs target content back to the local side.
	DirectionPull Direction = "pull"
)

// IsValid returns true if the direction is recognized.
func (d Direction) IsValid() bool {
	return d == DirectionPush || d == DirectionPull
}

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// ConflictPreference tells the executor how to settle detected conflicts.
type ConflictPreference string

const (
	// PreferNone defers conflicts to the caller.
	PreferNone ConflictPreference = ""

	// PreferSource overwrites the target with the source version.
	PreferSource ConflictPreference = "source"

	// PreferTarget keeps the target version, copying it back to the source.
	PreferTarget ConflictPreference = "target"
)

// Side identifies which copy the timestamp resolver favors on a tie.
type Side string

const (
	// SideLocal favors the project-local copy.
	SideLocal Side = "local"

	// SideRemote favors the shared source-of-truth copy.
	SideRemote Side = "remote"
)
