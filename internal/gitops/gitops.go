// Package gitops wraps the git binary with the small command surface the
// sync engine needs. Every call shells out to git and blocks until the
// subprocess exits.
package gitops

import "time"

type Status struct {
	Modified  []string
	Staged    []string
	Untracked []string
	Ahead     int
	Behind    int
	IsClean   bool
	Branch    string
	HasRemote bool
}

type Identity struct {
	Name  string
	Email string
}

// PullResult reports the outcome of a pull. Conflicts lists the paths git
// left in an unmerged state; an empty list means the pull merged cleanly.
type PullResult struct {
	Conflicts []string
}

// Git is the version-control surface consumed by the orchestrator and the
// conflict resolver. The stage argument of Show follows git's index stage
// addressing: ":2:<path>" for ours, ":3:<path>" for theirs.
type Git interface {
	Fetch() error
	Pull() (*PullResult, error)
	Push() error
	Add(paths []string) error
	Commit(message string) error
	CheckoutOurs(paths []string) error
	CheckoutTheirs(paths []string) error
	ConflictingFiles() ([]string, error)
	Show(ref string) (string, error)
	Status() (*Status, error)
	HasRemote() bool
	IsOnline() bool
	LatestCommitHash() (string, error)
	LastModifiedBy(path string) (string, time.Time, error)
	CurrentIdentity() (Identity, error)
}
