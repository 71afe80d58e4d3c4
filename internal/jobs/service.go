package jobs

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"cronkeeper/internal/crontab"
	"cronkeeper/internal/shared"
	"cronkeeper/internal/store"
)

// ScriptRootVar is the global environment assignment that names the script
// root directory on the machine the crontab belongs to.
const ScriptRootVar = "KOHA_CRON_PATH"

// CommandValidator gates job commands; non-nil errors reject the input.
// Wired to the discovery engine's approved-script check.
type CommandValidator func(command string) error

var validate = validator.New()

// cronParser checks schedule syntax only. Expressions are never evaluated
// against time; existing lines in the file stay opaque.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Service implements job CRUD over the transactional store.
type Service struct {
	store           *store.Store
	validateCommand CommandValidator
	log             *slog.Logger
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCommandValidator sets the approved-script gate applied to created and
// updated commands.
func WithCommandValidator(fn CommandValidator) Option {
	return func(s *Service) { s.validateCommand = fn }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a job service over the given store.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInput is the caller-supplied shape of a new job.
type CreateInput struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Schedule    string            `json:"schedule" validate:"required"`
	Command     string            `json:"command" validate:"required"`
	Environment map[string]string `json:"environment"`
	// Enabled defaults to true when unspecified.
	Enabled *bool `json:"enabled"`
}

// UpdateInput is a partial update: nil fields carry over unchanged from the
// job's current state.
type UpdateInput struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Schedule    *string           `json:"schedule"`
	Command     *string           `json:"command"`
	Environment map[string]string `json:"environment"`
	Enabled     *bool             `json:"enabled"`
}

// List returns the managed jobs in document order. A missing crontab file
// means nothing is configured yet and yields an empty list.
func (s *Service) List() ([]Job, error) {
	doc, err := s.readOrEmpty()
	if err != nil {
		return nil, err
	}
	var out []Job
	for _, b := range doc.Blocks {
		if j, ok := FromBlock(b); ok {
			out = append(out, j)
		}
	}
	return out, nil
}

// ListAll returns every schedule entry in the file, managed or not, in
// document order.
func (s *Service) ListAll() ([]Entry, error) {
	doc, err := s.readOrEmpty()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, b := range doc.Blocks {
		out = append(out, blockEntries(b)...)
	}
	return out, nil
}

// Get returns the managed job with the given id.
func (s *Service) Get(id string) (Job, error) {
	doc, err := s.readOrEmpty()
	if err != nil {
		return Job{}, err
	}
	b := FindBlock(doc, id)
	if b == nil {
		return Job{}, s.notFound(id)
	}
	j, ok := FromBlock(b)
	if !ok {
		return Job{}, s.notFound(id)
	}
	return j, nil
}

// Create validates the input and appends a new managed block in one
// transaction.
func (s *Service) Create(in CreateInput) (Job, error) {
	if err := validate.Struct(in); err != nil {
		return Job{}, shared.MarkKind(err, shared.KindValidation)
	}
	if err := s.checkSchedule(in.Schedule); err != nil {
		return Job{}, err
	}
	if err := s.checkCommand(in.Command); err != nil {
		return Job{}, err
	}

	now := s.now().UTC().Truncate(time.Second)
	j := Job{
		ID:          GenerateID(),
		Name:        in.Name,
		Description: in.Description,
		Schedule:    in.Schedule,
		Command:     in.Command,
		Environment: in.Environment,
		Enabled:     in.Enabled == nil || *in.Enabled,
		Created:     now,
		Updated:     now,
	}

	err := s.store.SafelyModify("create-job", func(doc *crontab.Document) error {
		doc.AddBlock(CreateBlock(j))
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	s.log.Info("job created", slog.String("id", j.ID), slog.String("name", j.Name))
	return j, nil
}

// Update applies a partial update. The block is rebuilt wholesale from the
// merged field set so the output always matches the canonical encoding, no
// matter how the block was previously (possibly manually) edited. The id
// and created timestamp are immutable; updated is always refreshed.
func (s *Service) Update(id string, in UpdateInput) (Job, error) {
	if in.Schedule != nil {
		if err := s.checkSchedule(*in.Schedule); err != nil {
			return Job{}, err
		}
	}
	if in.Command != nil {
		if err := s.checkCommand(*in.Command); err != nil {
			return Job{}, err
		}
	}
	if in.Name != nil && *in.Name == "" {
		return Job{}, shared.MarkKind(shared.Wrap(shared.ErrValidation, "name must not be empty"), shared.KindValidation)
	}

	var updated Job
	err := s.store.SafelyModify("update-job", func(doc *crontab.Document) error {
		b := FindBlock(doc, id)
		if b == nil {
			return s.notFound(id)
		}
		j, ok := FromBlock(b)
		if !ok {
			return s.notFound(id)
		}
		if in.Name != nil {
			j.Name = *in.Name
		}
		if in.Description != nil {
			j.Description = *in.Description
		}
		if in.Schedule != nil {
			j.Schedule = *in.Schedule
		}
		if in.Command != nil {
			j.Command = *in.Command
		}
		if in.Environment != nil {
			j.Environment = in.Environment
		}
		if in.Enabled != nil {
			j.Enabled = *in.Enabled
		}
		j.Updated = s.now().UTC().Truncate(time.Second)

		b.Replace(CreateBlock(j).Lines)
		updated = j
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	s.log.Info("job updated", slog.String("id", id))
	return updated, nil
}

// Delete removes the managed block from the document.
func (s *Service) Delete(id string) error {
	err := s.store.SafelyModify("delete-job", func(doc *crontab.Document) error {
		b := FindBlock(doc, id)
		if b == nil {
			return s.notFound(id)
		}
		doc.RemoveBlock(b)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("job deleted", slog.String("id", id))
	return nil
}

// SetEnabled flips the active flag on every schedule entry in the job's
// block, not just the first: the listing view surfaces only the first
// entry, and toggling all of them keeps that view and the on-disk reality
// consistent. Toggling to the current state is a no-op that still succeeds.
func (s *Service) SetEnabled(id string, enabled bool) error {
	label := "disable-job"
	if enabled {
		label = "enable-job"
	}
	err := s.store.SafelyModify(label, func(doc *crontab.Document) error {
		b := FindBlock(doc, id)
		if b == nil {
			return s.notFound(id)
		}
		for _, e := range b.Entries() {
			e.SetActive(enabled)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("job toggled", slog.String("id", id), slog.Bool("enabled", enabled))
	return nil
}

// GlobalEnvironment returns the active environment assignments that apply
// globally rather than per job: assignments living in blocks that carry no
// schedule entries.
func (s *Service) GlobalEnvironment() (map[string]string, error) {
	doc, err := s.readOrEmpty()
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, b := range doc.Blocks {
		if len(b.Entries()) > 0 {
			continue
		}
		for _, e := range b.Envs() {
			if e.Active() {
				env[e.Name] = e.Value
			}
		}
	}
	return env, nil
}

// ScriptRoot resolves the configured script root from the document's
// KOHA_CRON_PATH assignment. The boolean reports whether it was present.
func (s *Service) ScriptRoot() (string, bool, error) {
	env, err := s.GlobalEnvironment()
	if err != nil {
		return "", false, err
	}
	root, ok := env[ScriptRootVar]
	return root, ok, nil
}

// readOrEmpty treats a missing crontab file as an empty document.
func (s *Service) readOrEmpty() (*crontab.Document, error) {
	doc, err := s.store.Read()
	if err != nil {
		if shared.IsNotFound(err) {
			return crontab.Parse(nil), nil
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) notFound(id string) error {
	return shared.MarkKind(shared.Wrapf(shared.ErrNotFound, "job %s", id), shared.KindNotFound)
}

func (s *Service) checkSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return shared.MarkKind(shared.Wrap(err, "invalid schedule"), shared.KindValidation)
	}
	return nil
}

func (s *Service) checkCommand(command string) error {
	if s.validateCommand == nil {
		return nil
	}
	if err := s.validateCommand(command); err != nil {
		return shared.MarkKind(err, shared.KindValidation)
	}
	return nil
}
