// Package store implements the transactional engine over one crontab file:
// every mutation is preceded by a retained backup and a failed transaction
// never corrupts the live file.
package store

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"cronkeeper/internal/crontab"
	"cronkeeper/internal/shared"
)

// backupTimeFormat is the filename-safe timestamp appended to backup names.
// It contains no underscore so the label/timestamp split stays unambiguous,
// and it sorts lexicographically in chronological order.
const backupTimeFormat = "2006-01-02T15-04-05.000000000"

// DefaultRetention is the number of backups kept when not configured.
const DefaultRetention = 10

// Backup is a handle to one immutable snapshot of the crontab file.
type Backup struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Mutator inspects and mutates the in-memory document inside a transaction.
// Returning an error aborts the transaction before anything is written.
type Mutator func(doc *crontab.Document) error

// Store serializes read → backup → mutate → write over one crontab path.
// Transactions from concurrent callers in this process are serialized by an
// internal mutex; writers in other processes must be excluded externally.
type Store struct {
	path      string
	backupDir string
	retention int
	log       *slog.Logger
	mu        sync.Mutex

	// test seams, following the pattern of injectable Now/After hooks in
	// retry-style configs
	now       func() time.Time
	writeFile func(name string, data []byte, perm os.FileMode) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for non-fatal engine events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithRetention sets how many backups are kept. Values below one fall back
// to DefaultRetention; the [1,100] bound is enforced at the configuration
// boundary.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.retention = n
		}
	}
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store over the given crontab path and backup directory.
func New(path, backupDir string, opts ...Option) *Store {
	s := &Store{
		path:      path,
		backupDir: backupDir,
		retention: DefaultRetention,
		log:       slog.Default(),
		now:       time.Now,
		writeFile: os.WriteFile,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the crontab path the store manages.
func (s *Store) Path() string { return s.path }

// Read loads and parses the current file. A missing or unreadable file is a
// NotFound-kind error; callers may treat it as "nothing configured yet".
func (s *Store) Read() (*crontab.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, shared.MarkKind(shared.Wrap(err, "read crontab"), shared.KindNotFound)
	}
	return crontab.Parse(data), nil
}

var labelSafeRe = regexp.MustCompile(`[^A-Za-z0-9.-]+`)

// Backup snapshots the current on-disk content (not an in-memory document)
// to a new file named <label>_<timestamp> in the backup directory, creating
// the directory if absent.
func (s *Store) Backup(label string) (Backup, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Backup{}, shared.MarkKind(shared.Wrap(err, "backup read"), shared.KindIO)
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return Backup{}, shared.MarkKind(shared.Wrap(err, "backup dir"), shared.KindIO)
	}
	ts := s.now().UTC()
	b := Backup{
		Label:     sanitizeLabel(label),
		Timestamp: ts,
	}
	b.Name = b.Label + "_" + ts.Format(backupTimeFormat)
	b.Path = filepath.Join(s.backupDir, b.Name)
	if err := s.writeFile(b.Path, data, 0o600); err != nil {
		return Backup{}, shared.MarkKind(shared.Wrap(err, "backup write"), shared.KindIO)
	}
	s.log.Debug("backup written", slog.String("name", b.Name))
	return b, nil
}

// ListBackups returns the retained backups, most recent first. Files in the
// backup directory that do not follow the naming scheme are ignored.
func (s *Store) ListBackups() ([]Backup, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			// no backups taken yet
			return nil, nil
		}
		return nil, shared.MarkKind(shared.Wrap(err, "list backups"), shared.KindIO)
	}
	var backups []Backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, ok := parseBackupName(e.Name())
		if !ok {
			continue
		}
		b.Path = filepath.Join(s.backupDir, e.Name())
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Name > backups[j].Name
	})
	return backups, nil
}

// SafelyModify runs one transaction: read the document, take an automatic
// backup, apply the mutator, write the result, and restore the backup if the
// write fails. A mutator error aborts before anything touches the live file.
// A backup failure aborts the whole transaction since the backup is the only
// rollback path.
func (s *Store) SafelyModify(label string, fn Mutator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Read()
	if err != nil {
		return err
	}
	bak, err := s.Backup(label)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		// nothing written yet; the on-disk file is untouched
		return err
	}
	if err := s.writeDocument(doc); err != nil {
		s.restore(bak)
		return err
	}
	s.prune()
	return nil
}

// writeDocument overwrites the live file with the serialized document,
// preserving its current mode.
func (s *Store) writeDocument(doc *crontab.Document) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := s.writeFile(s.path, doc.Serialize(), mode); err != nil {
		return shared.MarkKind(shared.Wrap(err, "write crontab"), shared.KindIO)
	}
	return nil
}

// restore copies a backup over the live file after a failed write.
func (s *Store) restore(b Backup) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		s.log.Error("rollback read failed", slog.String("backup", b.Name), slog.Any("err", err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Error("rollback write failed", slog.String("backup", b.Name), slog.Any("err", err))
		return
	}
	s.log.Warn("crontab restored from backup", slog.String("backup", b.Name))
}

// prune evicts the oldest backups beyond the retention bound. Eviction
// failures are logged, never surfaced: the transaction already succeeded.
func (s *Store) prune() {
	backups, err := s.ListBackups()
	if err != nil {
		s.log.Warn("backup prune skipped", slog.Any("err", err))
		return
	}
	for _, b := range backups[min(s.retention, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			s.log.Warn("backup eviction failed", slog.String("name", b.Name), slog.Any("err", err))
			continue
		}
		s.log.Debug("backup evicted", slog.String("name", b.Name))
	}
}

func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "modify"
	}
	return labelSafeRe.ReplaceAllString(label, "-")
}

func parseBackupName(name string) (Backup, bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return Backup{}, false
	}
	ts, err := time.Parse(backupTimeFormat, name[i+1:])
	if err != nil {
		return Backup{}, false
	}
	return Backup{Name: name, Label: name[:i], Timestamp: ts}, true
}
