package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cronkeeper/internal/discovery"
)

func writeScript(t *testing.T, source string) (*discovery.Engine, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "script.pl")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o755))
	return discovery.New(root), path
}

func TestParseOptions_DeclaredOptions(t *testing.T) {
	e, path := writeScript(t, `#!/usr/bin/perl
use Getopt::Long;
GetOptions(
    'verbose|v' => \$verbose,
    'name|n=s'  => \$name,
    'count|c=i@' => \@counts,
);
`)

	args := e.ParseOptions(path)
	require.Len(t, args.Options, 3)

	assert.Equal(t, discovery.OptionSpec{
		Name:      "verbose",
		ShortName: "v",
		Type:      discovery.TypeBoolean,
		DestType:  discovery.DestScalar,
	}, args.Options[0])

	assert.Equal(t, discovery.OptionSpec{
		Name:      "name",
		ShortName: "n",
		Type:      discovery.TypeString,
		Required:  true,
		DestType:  discovery.DestScalar,
	}, args.Options[1])

	assert.Equal(t, discovery.OptionSpec{
		Name:       "count",
		ShortName:  "c",
		Type:       discovery.TypeInteger,
		Required:   true,
		Repeatable: true,
		DestType:   discovery.DestArray,
	}, args.Options[2])
}

func TestParseOptions_GrammarVariants(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  discovery.OptionSpec
	}{
		{
			name:  "negatable boolean",
			token: "quiet|q!",
			want: discovery.OptionSpec{
				Name: "quiet", ShortName: "q", Type: discovery.TypeBoolean,
				Negatable: true, DestType: discovery.DestScalar,
			},
		},
		{
			name:  "incremental",
			token: "debug|d+",
			want: discovery.OptionSpec{
				Name: "debug", ShortName: "d", Type: discovery.TypeIncremental,
				Incremental: true, DestType: discovery.DestScalar,
			},
		},
		{
			name:  "optional value",
			token: "limit:i",
			want: discovery.OptionSpec{
				Name: "limit", Type: discovery.TypeInteger,
				DestType: discovery.DestScalar,
			},
		},
		{
			name:  "float",
			token: "rate|r=f",
			want: discovery.OptionSpec{
				Name: "rate", ShortName: "r", Type: discovery.TypeFloat,
				Required: true, DestType: discovery.DestScalar,
			},
		},
		{
			name:  "extended integer",
			token: "port=o",
			want: discovery.OptionSpec{
				Name: "port", Type: discovery.TypeInteger,
				Required: true, DestType: discovery.DestScalar,
			},
		},
		{
			name:  "hash destination",
			token: "define|D=s%",
			want: discovery.OptionSpec{
				Name: "define", ShortName: "D", Type: discovery.TypeString,
				Required: true, Repeatable: true, DestType: discovery.DestHash,
			},
		},
		{
			name:  "first single-char alias wins",
			token: "help|usage|h|?",
			want: discovery.OptionSpec{
				Name: "help", ShortName: "h", Type: discovery.TypeBoolean,
				DestType: discovery.DestScalar,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, path := writeScript(t, "GetOptions('"+tt.token+"' => \\$x);\n")
			args := e.ParseOptions(path)
			require.Len(t, args.Options, 1)
			assert.Equal(t, tt.want, args.Options[0])
		})
	}
}

func TestParseOptions_SkipsNonMatchingStrings(t *testing.T) {
	e, path := writeScript(t, `
GetOptions(
    'verbose|v' => \$verbose,
    'not a spec at all!!' => \$junk,
);
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Options, 1)
	assert.Equal(t, "verbose", args.Options[0].Name)
}

func TestParseOptions_OnlyFirstGetOptionsBlock(t *testing.T) {
	e, path := writeScript(t, `
GetOptions(
    'alpha' => \$a,
);
GetOptions(
    'beta' => \$b,
);
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Options, 1)
	assert.Equal(t, "alpha", args.Options[0].Name)
}

func TestParseOptions_NoGetOptions(t *testing.T) {
	e, path := writeScript(t, "#!/usr/bin/perl\nprint \"hello\";\n")
	args := e.ParseOptions(path)
	assert.Empty(t, args.Options)
	assert.Empty(t, args.Positional)
}

func TestParseOptions_MissingFile(t *testing.T) {
	e := discovery.New(t.TempDir())
	args := e.ParseOptions("/no/such/script.pl")
	assert.Empty(t, args.Options)
	assert.Empty(t, args.Positional)
}

func TestPositionals_IndexedAccess(t *testing.T) {
	e, path := writeScript(t, `
my $file = $ARGV[0];
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 1)
	assert.Equal(t, discovery.PositionalArg{
		Position: 0,
		Source:   "$ARGV[0]",
		Label:    "File",
	}, args.Positional[0])
}

func TestPositionals_IndexedAccessFillsGaps(t *testing.T) {
	e, path := writeScript(t, `
my $input_file = $ARGV[0];
my $limit = $ARGV[2];
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 3)
	assert.Equal(t, "Input File", args.Positional[0].Label)
	assert.Equal(t, "$ARGV[1]", args.Positional[1].Source)
	assert.Empty(t, args.Positional[1].Label, "no assignment context for the gap")
	assert.Equal(t, "Limit", args.Positional[2].Label)
}

func TestPositionals_Shift(t *testing.T) {
	e, path := writeScript(t, `
my $source = shift @ARGV;
my $target = shift(@ARGV);
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 2)
	assert.Equal(t, 0, args.Positional[0].Position)
	assert.Equal(t, "shift @ARGV", args.Positional[0].Source)
	assert.Equal(t, "Source", args.Positional[0].Label)
	assert.Equal(t, 1, args.Positional[1].Position)
	assert.Equal(t, "Target", args.Positional[1].Label)
}

func TestPositionals_VariadicLoop(t *testing.T) {
	e, path := writeScript(t, `
foreach my $file (@ARGV) {
    process($file);
}
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 1)
	assert.True(t, args.Positional[0].Variadic)
	assert.Equal(t, "File", args.Positional[0].Label)
	assert.Contains(t, args.Positional[0].Source, "@ARGV")
}

func TestPositionals_VariadicBulkAssignment(t *testing.T) {
	e, path := writeScript(t, `
my @files = @ARGV;
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 1)
	assert.True(t, args.Positional[0].Variadic)
	assert.Equal(t, "Files", args.Positional[0].Label)
	assert.Equal(t, "@files = @ARGV", args.Positional[0].Source)
}

func TestPositionals_IndexedTakesPrecedence(t *testing.T) {
	e, path := writeScript(t, `
my $first = $ARGV[0];
my $rest = shift @ARGV;
foreach my $f (@ARGV) { }
`)
	args := e.ParseOptions(path)
	require.Len(t, args.Positional, 1)
	assert.Equal(t, "$ARGV[0]", args.Positional[0].Source)
}
