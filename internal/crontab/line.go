// Package crontab models a crontab file as an ordered sequence of blocks of
// typed lines and round-trips unmodified content byte-for-byte.
package crontab

import (
	"regexp"
	"strings"
)

// Line is one physical line of a crontab file.
//
// Lines parsed from a file remember their original text and render it back
// unchanged until they are modified; lines built programmatically render in
// canonical form.
type Line interface {
	Render() string
}

// Comment is a comment line, stored verbatim including the leading '#'.
type Comment struct {
	Text string
}

// NewComment returns a comment line for the given body text. The body is
// prefixed with "# " unless it already starts with '#'.
func NewComment(body string) *Comment {
	if strings.HasPrefix(body, "#") {
		return &Comment{Text: body}
	}
	return &Comment{Text: "# " + body}
}

// Render implements Line.
func (c *Comment) Render() string { return c.Text }

// Body returns the comment text with the leading '#' and surrounding
// whitespace stripped.
func (c *Comment) Body() string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c.Text), "#"))
}

// Env is an environment assignment line (NAME=value). An inactive assignment
// is serialized commented out but stays structurally present.
type Env struct {
	Name   string
	Value  string
	active bool
	raw    string
}

// NewEnv returns an active environment assignment line.
func NewEnv(name, value string) *Env {
	return &Env{Name: name, Value: value, active: true}
}

// Active reports whether the assignment is in effect.
func (e *Env) Active() bool { return e.active }

// SetActive toggles the assignment. A toggled line loses its original text
// and renders canonically from then on.
func (e *Env) SetActive(active bool) {
	if e.active != active {
		e.raw = ""
	}
	e.active = active
}

// Render implements Line.
func (e *Env) Render() string {
	if e.raw != "" {
		return e.raw
	}
	s := e.Name + "=" + e.Value
	if !e.active {
		return "#" + s
	}
	return s
}

// Entry is a scheduled command line: a schedule expression followed by the
// command to run. The schedule expression is carried opaquely; this package
// never interprets it.
type Entry struct {
	Schedule string
	Command  string
	active   bool
	raw      string
}

// NewEntry returns a schedule entry line.
func NewEntry(schedule, command string, active bool) *Entry {
	return &Entry{Schedule: schedule, Command: command, active: active}
}

// Active reports whether the entry is live (not commented out).
func (e *Entry) Active() bool { return e.active }

// SetActive enables or disables the entry. A toggled line loses its original
// text and renders canonically from then on.
func (e *Entry) SetActive(active bool) {
	if e.active != active {
		e.raw = ""
	}
	e.active = active
}

// Render implements Line.
func (e *Entry) Render() string {
	if e.raw != "" {
		return e.raw
	}
	s := e.Schedule + " " + e.Command
	if !e.active {
		return "#" + s
	}
	return s
}

var envRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// scheduleFieldRe matches a single field of a five-field schedule
// expression, including name forms (jan, mon) and step/range syntax.
var scheduleFieldRe = regexp.MustCompile(`^[A-Za-z0-9*,/-]+$`)

func parseEnv(s string, active bool, raw string) (*Env, bool) {
	m := envRe.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	return &Env{Name: m[1], Value: m[2], active: active, raw: raw}, true
}

// descriptors are the schedule keywords cron accepts in place of the five
// fields. Only these may open an entry; other @-tokens (metadata comments in
// particular) are not schedules.
var descriptors = map[string]bool{
	"@reboot":   true,
	"@yearly":   true,
	"@annually": true,
	"@monthly":  true,
	"@weekly":   true,
	"@daily":    true,
	"@midnight": true,
	"@hourly":   true,
}

// parseEntry recognizes "<schedule> <command>" where the schedule is either
// an @descriptor or five schedule fields. For commented-out candidates the
// caller passes strict=true so prose comments are not mistaken for entries.
func parseEntry(s string, active bool, raw string, strict bool) (*Entry, bool) {
	fields := strings.Fields(s)
	if len(fields) >= 2 && descriptors[strings.ToLower(fields[0])] {
		return &Entry{
			Schedule: fields[0],
			Command:  strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), fields[0])),
			active:   active,
			raw:      raw,
		}, true
	}
	if len(fields) < 6 {
		return nil, false
	}
	if strict {
		if !strings.ContainsAny(fields[0][:1], "0123456789*") {
			return nil, false
		}
		for _, f := range fields[:5] {
			if !scheduleFieldRe.MatchString(f) {
				return nil, false
			}
		}
	}
	schedule := strings.Join(fields[:5], " ")
	command := strings.Join(fields[5:], " ")
	return &Entry{Schedule: schedule, Command: command, active: active, raw: raw}, true
}

// parseLine classifies one non-blank physical line. Anything unrecognized is
// kept as a Comment so no content is ever dropped.
func parseLine(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "#") {
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if env, ok := parseEnv(body, false, raw); ok {
			return env
		}
		if entry, ok := parseEntry(body, false, raw, true); ok {
			return entry
		}
		return &Comment{Text: raw}
	}
	if env, ok := parseEnv(trimmed, true, raw); ok {
		return env
	}
	if entry, ok := parseEntry(trimmed, true, raw, false); ok {
		return entry
	}
	return &Comment{Text: raw}
}
