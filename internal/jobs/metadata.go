// Package jobs translates between opaque crontab blocks and the managed job
// view. It is the only package that knows the comment-based metadata
// encoding.
package jobs

import (
	"fmt"
	"regexp"

	"cronkeeper/internal/crontab"
)

// ManagedByTag marks blocks owned by this tool. Ownership is a data
// property carried in a comment, compared by value; any block, whatever its
// origin, is a plain data record.
const ManagedByTag = "koha-crontab-manager"

// Metadata keys serialized as "# @<key>: <value>" comment lines. Keys
// outside this set are ignored on read and never produced.
const (
	keyID          = "crontab-manager-id"
	keyName        = "name"
	keyDescription = "description"
	keyCreated     = "created"
	keyUpdated     = "updated"
	keyManagedBy   = "managed-by"
)

var knownKeys = map[string]struct{}{
	keyID:          {},
	keyName:        {},
	keyDescription: {},
	keyCreated:     {},
	keyUpdated:     {},
	keyManagedBy:   {},
}

// metaRe recognizes the exact tagged-comment shape. It is deliberately a
// narrow scanner, not a general key-value parser, so unrelated comments
// that happen to contain colons are never picked up.
var metaRe = regexp.MustCompile(`^#\s*@([a-z-]+):\s*(.*)$`)

// ParseMetadata scans the block's comment lines for tagged metadata.
// It returns nil unless the crontab-manager-id key is present: that key is
// the sole discriminator of ownership, so a block this tool did not create
// is never mistaken for one it manages.
func ParseMetadata(b *crontab.Block) map[string]string {
	var meta map[string]string
	for _, c := range b.Comments() {
		m := metaRe.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}
		if _, known := knownKeys[m[1]]; !known {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[m[1]] = m[2]
	}
	if meta == nil {
		return nil
	}
	if _, ok := meta[keyID]; !ok {
		return nil
	}
	return meta
}

func metaComment(key, value string) *crontab.Comment {
	return crontab.NewComment(fmt.Sprintf("@%s: %s", key, value))
}
