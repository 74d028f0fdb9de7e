package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate      Lay out problems into PDF documents")
	fmt.Fprintln(w, "  import        Load YAML collections into the catalog")
	fmt.Fprintln(w, "  collections   List available collections")
	fmt.Fprintln(w, "  export        Write a catalog collection as YAML")
	fmt.Fprintln(w, "  doctor        Check the catalog and system")
	fmt.Fprintln(w, "  completion    Generate shell completion script")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tsumego-pdf help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf generate [collection] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Lay out problems into a problems PDF and, optionally, a solutions key.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  collection   Collection name (optional if config has problems.collection)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Selection:")
	fmt.Fprintln(w, "  -s, --section <s>         Section of the collection")
	fmt.Fprintln(w, "  -n, --problems <list>     Problem numbers, e.g. 1-20,25 (default: all)")
	fmt.Fprintln(w, "      --shuffle             Shuffle the problems")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Problems PDF: path, auto, auto:FORMAT")
	fmt.Fprintln(w, "      --key-output <path>   Solutions PDF (implies --key)")
	fmt.Fprintln(w, "                            Formats: YYYY, YY, MM, DD, HH, mm, ss")
	fmt.Fprintln(w, "                            Presets: default, iso, compact, long")
	fmt.Fprintln(w, "  -d, --output-dir <dir>    Directory for automatic names")
	fmt.Fprintln(w, "  -k, --key                 Also write the solutions key")
	fmt.Fprintln(w, "      --verify              Re-read written PDFs")
	fmt.Fprintln(w, "      --catalog <path>      SQLite catalog")
	fmt.Fprintln(w, "      --collections <dir>   YAML collections instead of the catalog")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Render workers per document (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       letter, a4, legal or WxH in points")
	fmt.Fprintln(w, "      --orientation <s>     portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin on every side in inches")
	fmt.Fprintln(w, "      --page-numbers        Number pages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "      --columns <n>         Diagram columns per page")
	fmt.Fprintln(w, "      --column-spacing <f>  Gap between columns in inches")
	fmt.Fprintln(w, "      --spacing <f>         Gap below each diagram in inches")
	fmt.Fprintln(w, "      --placement <s>       default, block, proportional, block-proportional")
	fmt.Fprintln(w, "      --display-width <n>   Board columns shown per diagram (1-19)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Diagrams:")
	fmt.Fprintln(w, "      --color <s>           Color to play: default, black, white, random")
	fmt.Fprintln(w, "      --random-flip         Mirror diagrams at random")
	fmt.Fprintln(w, "      --transpose           Swap axes where allowed")
	fmt.Fprintln(w, "      --no-labels           Omit problem labels")
	fmt.Fprintln(w, "      --collection-label    Print the collection name in labels")
	fmt.Fprintln(w, "      --seed <n>            Random seed (0 = from the clock)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Booklet:")
	fmt.Fprintln(w, "  -b, --booklet             Impose pages two per sheet side")
	fmt.Fprintln(w, "      --signatures <n>      Number of signatures")
	fmt.Fprintln(w, "      --digital             Reader spreads instead of printer's spreads")
	fmt.Fprintln(w, "      --cover <s>           board, none or an image path")
	fmt.Fprintln(w, "      --cover-text <file>   Markdown printed on the cover")
	fmt.Fprintln(w, "      --embed-cover         Print the cover inside the first signature")
	fmt.Fprintln(w, "      --center-padding <f>  Gutter between facing pages in inches")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log pipeline stages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TSUMEGO_CONFIG, TSUMEGO_CATALOG, TSUMEGO_COLLECTIONS, TSUMEGO_OUTPUT_DIR,")
	fmt.Fprintln(w, "  TSUMEGO_PAGE_SIZE, TSUMEGO_WORKERS, TSUMEGO_SEED")
}

func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf import [flags] <file or dir>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Load YAML collections into the SQLite catalog, replacing same-named ones.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --catalog <path>      SQLite catalog")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log each import")
}

func printCollectionsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf collections [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List collections with their problem and section counts.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --catalog <path>      SQLite catalog")
	fmt.Fprintln(w, "      --collections <dir>   YAML collections instead of the catalog")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf export [flags] <collection>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a catalog collection in the YAML form accepted by import.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Write to a file instead of stdout")
	fmt.Fprintln(w, "      --catalog <path>      SQLite catalog")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf doctor [--json] [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the catalog opens and the system can render.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Machine-readable output")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate", "gen":
		printGenerateUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "collections", "ls":
		printCollectionsUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: tsumego-pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: tsumego-pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
