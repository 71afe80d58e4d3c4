// Package discovery enumerates candidate scripts under a configured root and
// reverse-engineers their accepted arguments from static text inspection.
// Everything here is best-effort: absent or unparseable documentation is an
// expected, common case and never fails a discovery call.
package discovery

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"cronkeeper/internal/shared"
)

// RootVar is the symbolic variable scripts are addressed through, so
// discovered paths stay portable across machines where the root differs.
const RootVar = "$KOHA_CRON_PATH"

// Script describes one executable script found under the root.
type Script struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	RelPath     string `json:"rel_path"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Script types recognized by extension.
const (
	TypePerl  = "perl"
	TypeShell = "shell"
)

// Engine discovers scripts under one root directory. All operations are
// read-only and safe to run concurrently with crontab transactions.
type Engine struct {
	root      string
	allowlist []string
	log       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAllowlist restricts discovery to scripts matching the given patterns.
// An empty allowlist keeps everything.
func WithAllowlist(patterns []string) Option {
	return func(e *Engine) { e.allowlist = patterns }
}

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over the given script root.
func New(root string, opts ...Option) *Engine {
	e := &Engine{root: root, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Root returns the engine's script root directory.
func (e *Engine) Root() string { return e.root }

// Discover recursively walks the root and returns the known script types,
// allowlist-filtered and sorted by name.
func (e *Engine) Discover() ([]Script, error) {
	var scripts []Script
	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		typ, ok := scriptType(d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		s := Script{
			Name:    d.Name(),
			Path:    path,
			RelPath: RootVar + "/" + filepath.ToSlash(rel),
			Type:    typ,
		}
		if !e.allowed(s) {
			return nil
		}
		s.Description, _ = e.Describe(path)
		scripts = append(scripts, s)
		return nil
	})
	if err != nil {
		return nil, shared.MarkKind(shared.Wrap(err, "discover scripts"), shared.KindIO)
	}
	sort.Slice(scripts, func(i, j int) bool {
		if scripts[i].Name != scripts[j].Name {
			return scripts[i].Name < scripts[j].Name
		}
		return scripts[i].RelPath < scripts[j].RelPath
	})
	return scripts, nil
}

// allowed applies the allowlist: a script is kept when its relative path
// exactly equals a pattern, has a pattern as a strict prefix, or its bare
// name equals a pattern. First matching pattern wins. Patterns may be
// written with or without the root-variable prefix.
//
// The prefix test is a plain string prefix, so a pattern also matches
// sibling paths sharing the prefix without a separator (pattern "batch"
// matches "batch2/x"). Known wart, kept for compatibility with existing
// allowlists.
func (e *Engine) allowed(s Script) bool {
	if len(e.allowlist) == 0 {
		return true
	}
	rel := strings.TrimPrefix(s.RelPath, RootVar+"/")
	for _, raw := range e.allowlist {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		p = strings.TrimPrefix(p, RootVar+"/")
		if rel == p || strings.HasPrefix(rel, p) || s.Name == p {
			return true
		}
	}
	return false
}

// ValidateCommand checks that the command's first whitespace token exactly
// equals a discovered script's relative path and returns the matched
// descriptor. This is the sole gate preventing arbitrary commands from
// entering managed jobs.
func (e *Engine) ValidateCommand(command string) (*Script, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, shared.MarkKind(shared.Wrap(shared.ErrValidation, "empty command"), shared.KindValidation)
	}
	scripts, err := e.Discover()
	if err != nil {
		return nil, err
	}
	for i := range scripts {
		if scripts[i].RelPath == fields[0] {
			return &scripts[i], nil
		}
	}
	return nil, shared.MarkKind(
		shared.Wrapf(shared.ErrValidation, "%q does not reference an approved script", fields[0]),
		shared.KindValidation,
	)
}

func scriptType(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pl":
		return TypePerl, true
	case ".sh":
		return TypeShell, true
	default:
		return "", false
	}
}
