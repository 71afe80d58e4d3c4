package jobs

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"cronkeeper/internal/crontab"
)

// timeLayout is the format used for created/updated metadata values.
const timeLayout = time.RFC3339

// Job is the managed view of one crontab block. It is computed from the
// block on every read, never stored independently.
type Job struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schedule    string            `json:"schedule"`
	Command     string            `json:"command"`
	Environment map[string]string `json:"environment,omitempty"`
	Enabled     bool              `json:"enabled"`
	Created     time.Time         `json:"created"`
	Updated     time.Time         `json:"updated"`
}

// Entry is one schedule line as reported by the unfiltered listing. Lines
// in unmanaged blocks carry no identity fields, only the raw shape plus
// their sibling comment texts.
type Entry struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	Schedule string   `json:"schedule"`
	Command  string   `json:"command"`
	Enabled  bool     `json:"enabled"`
	Managed  bool     `json:"managed"`
	Comments []string `json:"comments,omitempty"`
}

// GenerateID produces the opaque identifier stored in the
// crontab-manager-id metadata key.
func GenerateID() string {
	return uuid.NewString()
}

// CreateBlock builds the canonical block encoding of a job: metadata
// comments (id first, managed-by last), environment assignments in sorted
// key order, then exactly one schedule entry.
func CreateBlock(j Job) *crontab.Block {
	var lines []crontab.Line
	lines = append(lines, metaComment(keyID, j.ID))
	if j.Name != "" {
		lines = append(lines, metaComment(keyName, j.Name))
	}
	if j.Description != "" {
		lines = append(lines, metaComment(keyDescription, j.Description))
	}
	if !j.Created.IsZero() {
		lines = append(lines, metaComment(keyCreated, j.Created.Format(timeLayout)))
	}
	if !j.Updated.IsZero() {
		lines = append(lines, metaComment(keyUpdated, j.Updated.Format(timeLayout)))
	}
	lines = append(lines, metaComment(keyManagedBy, ManagedByTag))

	names := make([]string, 0, len(j.Environment))
	for name := range j.Environment {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, crontab.NewEnv(name, j.Environment[name]))
	}

	lines = append(lines, crontab.NewEntry(j.Schedule, j.Command, j.Enabled))
	return crontab.NewBlock(lines...)
}

// FromBlock derives the job view of a block. It returns false for blocks
// without ownership metadata or without any schedule entry. A managed block
// holding several entries is not a supported shape; only its first entry is
// visible through this view.
func FromBlock(b *crontab.Block) (Job, bool) {
	meta := ParseMetadata(b)
	if meta == nil {
		return Job{}, false
	}
	entries := b.Entries()
	if len(entries) == 0 {
		return Job{}, false
	}
	first := entries[0]

	j := Job{
		ID:          meta[keyID],
		Name:        meta[keyName],
		Description: meta[keyDescription],
		Schedule:    first.Schedule,
		Command:     first.Command,
		Enabled:     first.Active(),
	}
	if t, err := time.Parse(timeLayout, meta[keyCreated]); err == nil {
		j.Created = t
	}
	if t, err := time.Parse(timeLayout, meta[keyUpdated]); err == nil {
		j.Updated = t
	}
	for _, e := range b.Envs() {
		if j.Environment == nil {
			j.Environment = make(map[string]string)
		}
		j.Environment[e.Name] = e.Value
	}
	return j, true
}

// FindBlock returns the first block whose metadata id equals the given id.
// Lookup is linear: documents are small and rebuilt fresh per transaction,
// so no index is maintained.
func FindBlock(doc *crontab.Document, id string) *crontab.Block {
	if id == "" {
		return nil
	}
	for _, b := range doc.Blocks {
		if meta := ParseMetadata(b); meta != nil && meta[keyID] == id {
			return b
		}
	}
	return nil
}

// blockEntries expands every schedule line of a block into listing entries.
// Sibling entries share the block's comment texts but report their own
// active flags.
func blockEntries(b *crontab.Block) []Entry {
	meta := ParseMetadata(b)
	var comments []string
	if meta == nil {
		for _, c := range b.Comments() {
			comments = append(comments, c.Body())
		}
	}
	var out []Entry
	for _, e := range b.Entries() {
		entry := Entry{
			Schedule: e.Schedule,
			Command:  e.Command,
			Enabled:  e.Active(),
			Managed:  meta != nil,
			Comments: comments,
		}
		if meta != nil {
			entry.ID = meta[keyID]
			entry.Name = meta[keyName]
		}
		out = append(out, entry)
	}
	return out
}
