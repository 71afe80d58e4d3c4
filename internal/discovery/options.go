package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Option value types.
const (
	TypeBoolean     = "boolean"
	TypeString      = "string"
	TypeInteger     = "integer"
	TypeFloat       = "float"
	TypeIncremental = "incremental"
)

// Option destination shapes.
const (
	DestScalar = "scalar"
	DestArray  = "array"
	DestHash   = "hash"
)

// OptionSpec is one declared command-line option of a script.
type OptionSpec struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name,omitempty"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Negatable   bool   `json:"negatable"`
	Incremental bool   `json:"incremental"`
	Repeatable  bool   `json:"repeatable"`
	DestType    string `json:"dest_type"`
}

// PositionalArg is one argument a script consumes by position rather than
// by named flag. Source records the textual construct it was detected from.
type PositionalArg struct {
	Position int    `json:"position"`
	Variadic bool   `json:"variadic,omitempty"`
	Source   string `json:"source"`
	Label    string `json:"label,omitempty"`
}

// Args is the reverse-engineered argument surface of one script.
type Args struct {
	Options    []OptionSpec    `json:"options"`
	Positional []PositionalArg `json:"positional_args"`
}

var (
	getOptionsStartRe = regexp.MustCompile(`\bGetOptions\s*\(`)
	getOptionsEndRe   = regexp.MustCompile(`\)\s*;`)
	quotedRe          = regexp.MustCompile(`'([^']*)'|"([^"]*)"`)

	// optionSpecRe is the explicit grammar for one specification string:
	//
	//	name(|alias)* [!|+]? ([=|:] (s|i|o|f|digits|+))? [@|%]?
	//
	// Strings not matching it carry no option information and are skipped.
	optionSpecRe = regexp.MustCompile(`^([\w?][\w-]*)((?:\|[\w?-]+)*)([!+]?)(?:([=:])([siof]|\d+|\+))?([@%]?)$`)
)

// ParseOptions statically inspects a script's source for its declared
// options and positional arguments. Anomalies degrade to empty output; this
// never fails a discovery call.
func (e *Engine) ParseOptions(path string) Args {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Debug("option parse skipped", slog.String("path", path), slog.Any("err", err))
		return Args{}
	}
	text := string(data)
	return Args{
		Options:    parseDeclaredOptions(text),
		Positional: detectPositionals(text),
	}
}

// parseDeclaredOptions locates the first GetOptions(...) call, collects its
// lines up to the closing ");", and parses every quoted token inside as a
// candidate specification string.
func parseDeclaredOptions(text string) []OptionSpec {
	loc := getOptionsStartRe.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	var block []string
	for _, line := range strings.Split(text[loc[1]:], "\n") {
		block = append(block, line)
		if getOptionsEndRe.MatchString(line) {
			break
		}
	}

	var options []OptionSpec
	for _, m := range quotedRe.FindAllStringSubmatch(strings.Join(block, "\n"), -1) {
		token := m[1]
		if token == "" {
			token = m[2]
		}
		if spec, ok := parseOptionSpec(token); ok {
			options = append(options, spec)
		}
	}
	return options
}

// parseOptionSpec parses one specification string against the grammar.
func parseOptionSpec(token string) (OptionSpec, bool) {
	m := optionSpecRe.FindStringSubmatch(token)
	if m == nil {
		return OptionSpec{}, false
	}
	spec := OptionSpec{
		Name:     m[1],
		Type:     TypeBoolean,
		DestType: DestScalar,
	}
	for _, alias := range strings.Split(m[2], "|") {
		if len(alias) == 1 {
			spec.ShortName = alias
			break
		}
	}
	switch m[3] {
	case "!":
		spec.Negatable = true
	case "+":
		spec.Incremental = true
		spec.Type = TypeIncremental
	}
	if sep := m[4]; sep != "" {
		spec.Required = sep == "="
		switch code := m[5]; code {
		case "s":
			spec.Type = TypeString
		case "i", "o":
			spec.Type = TypeInteger
		case "f":
			spec.Type = TypeFloat
		case "+":
			spec.Type = TypeIncremental
			spec.Incremental = true
		default:
			// a bare digit string is an integer default
			spec.Type = TypeInteger
		}
	}
	switch m[6] {
	case "@":
		spec.DestType = DestArray
		spec.Repeatable = true
	case "%":
		spec.DestType = DestHash
		spec.Repeatable = true
	}
	return spec, true
}

var (
	argvIndexRe = regexp.MustCompile(`\$ARGV\[(\d+)\]`)
	argvShiftRe = regexp.MustCompile(`(?:\$(\w+)\s*=\s*)?shift\s*\(?\s*@ARGV\s*\)?`)
	argvLoopRe  = regexp.MustCompile(`(?:foreach|for)\s+(?:my\s+)?(?:\$(\w+)\s*)?\(\s*@ARGV\s*\)`)
	argvBulkRe  = regexp.MustCompile(`@(\w+)\s*=\s*@ARGV`)
)

// detectPositionals applies the positional-argument heuristics in priority
// order and stops at the first that yields results: explicit $ARGV[n]
// indexing, then repeated shift @ARGV, then a whole-@ARGV loop or bulk
// assignment. Only one family is ever reported.
func detectPositionals(text string) []PositionalArg {
	if args := indexedPositionals(text); len(args) > 0 {
		return args
	}
	if args := shiftPositionals(text); len(args) > 0 {
		return args
	}
	return variadicPositional(text)
}

// indexedPositionals reports one argument per index from 0 up to the
// highest index referenced anywhere in the source.
func indexedPositionals(text string) []PositionalArg {
	max := -1
	for _, m := range argvIndexRe.FindAllStringSubmatch(text, -1) {
		var idx int
		fmt.Sscanf(m[1], "%d", &idx)
		if idx > max {
			max = idx
		}
	}
	if max < 0 {
		return nil
	}
	args := make([]PositionalArg, 0, max+1)
	for i := 0; i <= max; i++ {
		source := fmt.Sprintf("$ARGV[%d]", i)
		assignRe := regexp.MustCompile(`\$(\w+)\s*=\s*\$ARGV\[` + fmt.Sprint(i) + `\]`)
		arg := PositionalArg{Position: i, Source: source}
		if m := assignRe.FindStringSubmatch(text); m != nil {
			arg.Label = humanize(m[1])
		}
		args = append(args, arg)
	}
	return args
}

// shiftPositionals reports one argument per shift @ARGV occurrence, in
// order of appearance.
func shiftPositionals(text string) []PositionalArg {
	var args []PositionalArg
	for i, m := range argvShiftRe.FindAllStringSubmatch(text, -1) {
		args = append(args, PositionalArg{
			Position: i,
			Source:   "shift @ARGV",
			Label:    humanize(m[1]),
		})
	}
	return args
}

// variadicPositional reports a single variadic argument for scripts that
// iterate or capture the whole argument list.
func variadicPositional(text string) []PositionalArg {
	if m := argvLoopRe.FindStringSubmatch(text); m != nil {
		return []PositionalArg{{
			Position: -1,
			Variadic: true,
			Source:   collapseSpace(m[0]),
			Label:    humanize(m[1]),
		}}
	}
	if m := argvBulkRe.FindStringSubmatch(text); m != nil {
		return []PositionalArg{{
			Position: -1,
			Variadic: true,
			Source:   collapseSpace(m[0]),
			Label:    humanize(m[1]),
		}}
	}
	return nil
}

// humanize turns a destination variable name into a best-effort label:
// "input_file" becomes "Input File".
func humanize(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
