package port

// Scratch is a request-scoped workspace for temporary artifacts. Nothing in it is
// shared with other requests.
type Scratch interface {
	// Path returns the location of a named artifact inside the workspace.
	Path(name string) string
	// Write stores data as a named artifact and returns its path.
	Write(name string, data []byte) (string, error)
	// Read returns the content of the artifact at path.
	Read(path string) ([]byte, error)
	// Close removes the workspace and everything in it.
	Close() error
}

type ScratchPool interface {
	// Acquire creates a fresh workspace with a collision-free name.
	Acquire() (Scratch, error)
	// Purge removes every artifact not owned by an active workspace.
	Purge() error
	// Active returns the number of open workspaces.
	Active() int
}
