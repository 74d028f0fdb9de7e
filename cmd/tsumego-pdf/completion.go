package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagNumber
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for file arguments, empty when none
}

// completionMeta holds completion hints. Flag names, types and
// descriptions come from the FlagSets.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

var flagCompletionMeta = map[string]completionMeta{
	"page-size":   {Values: []string{"letter", "a4", "legal"}},
	"orientation": {Values: []string{"portrait", "landscape"}},
	"placement":   {Values: []string{"default", "block", "proportional", "block-proportional"}},
	"color":       {Values: []string{"default", "black", "white", "random"}},

	"config":     {FileGlob: "*.yaml,*.yml"},
	"catalog":    {FileGlob: "*.db"},
	"cover":      {FileGlob: "*.png,*.jpg,*.jpeg"},
	"cover-text": {FileGlob: "*.md"},
	"output":     {FileGlob: "*.pdf"},
	"key-output": {FileGlob: "*.pdf"},

	"collections": {IsDir: true},
	"output-dir":  {IsDir: true},
}

// extractFlags reads flag definitions from fs, enriched with
// flagCompletionMeta.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "uint64", "float64":
			fd.Type = flagNumber
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "generate", Desc: "Lay out problems into PDF documents", Flags: extractFlags(newGenerateFlagSet(&generateFlags{}))},
		{Name: "import", Desc: "Load YAML collections into the catalog", Flags: extractFlags(newCatalogFlagSet("import", &catalogCommandFlags{})), FilePattern: "*.yaml,*.yml"},
		{Name: "collections", Desc: "List available collections", Flags: extractFlags(newCatalogFlagSet("collections", &catalogCommandFlags{}))},
		{Name: "export", Desc: "Write a catalog collection as YAML", Flags: extractFlags(newExportFlagSet(&exportFlags{}))},
		{Name: "doctor", Desc: "Check the catalog and system"},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	switch shell {
	case ShellBash:
		return generateBash(w, cmds)
	case ShellZsh:
		return generateZsh(w, cmds)
	case ShellFish:
		return generateFish(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsumego-pdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(tsumego-pdf completion bash)\"          # ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(tsumego-pdf completion zsh)\"           # ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  tsumego-pdf completion fish > ~/.config/fish/completions/tsumego-pdf.fish")
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

// bashGlobs turns "*.yaml,*.yml" into a compgen -X filter.
func bashGlobs(globs string) string {
	var exts []string
	for g := range strings.SplitSeq(globs, ",") {
		exts = append(exts, strings.TrimPrefix(g, "*."))
	}
	if len(exts) == 1 {
		return "!*." + exts[0]
	}
	return "!*.@(" + strings.Join(exts, "|") + ")"
}

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# bash completion for tsumego-pdf\n")
	b.WriteString("_tsumego_pdf() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", commandNames(cmds))
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 && c.FilePattern == "" {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        case \"$prev\" in\n")
		for _, f := range c.Flags {
			names := "--" + f.Long
			if f.Short != "" {
				names += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", names, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -X '%s' -- \"$cur\")); return ;;\n", names, bashGlobs(f.FileGlob))
			case flagDir:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", names)
			}
		}
		b.WriteString("        esac\n")
		var longs []string
		for _, f := range c.Flags {
			longs = append(longs, "--"+f.Long)
		}
		b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(longs, " "))
		if c.FilePattern != "" {
			b.WriteString("        else\n")
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -f -X '%s' -- \"$cur\"))\n", bashGlobs(c.FilePattern))
		}
		b.WriteString("        fi\n        ;;\n")
	}
	b.WriteString("    help)\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\")) ;;\n", commandNames(cmds))
	b.WriteString("    completion)\n")
	b.WriteString("        COMPREPLY=($(compgen -W \"bash zsh fish\" -- \"$cur\")) ;;\n")
	b.WriteString("    esac\n}\n")
	b.WriteString("shopt -s extglob\n")
	b.WriteString("complete -o filenames -F _tsumego_pdf tsumego-pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshEscape escapes characters with special meaning inside _arguments specs.
func zshEscape(s string) string {
	return strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:").Replace(s)
}

func zshAction(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagFile:
		return ":file:_files -g '(" + strings.ReplaceAll(f.FileGlob, ",", "|") + ")'"
	case flagDir:
		return ":directory:_files -/"
	case flagBool:
		return ""
	default:
		return ":" + f.Long + ":"
	}
}

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("#compdef tsumego-pdf\n\n")
	b.WriteString("_tsumego_pdf() {\n")
	b.WriteString("    local -a commands\n    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n        return\n    fi\n\n")
	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n        _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			spec := "[" + zshEscape(f.Desc) + "]" + zshAction(f)
			if f.Short != "" {
				fmt.Fprintf(&b, "            '(-%s --%s)'{-%s,--%s}'%s' \\\n", f.Short, f.Long, f.Short, f.Long, spec)
			} else {
				fmt.Fprintf(&b, "            '--%s%s' \\\n", f.Long, spec)
			}
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "            '*:file:_files -g \"(%s)\"'\n", strings.ReplaceAll(c.FilePattern, ",", "|"))
		} else {
			b.WriteString("            '*::'\n")
		}
		b.WriteString("        ;;\n")
	}
	b.WriteString("    completion)\n        _values 'shell' bash zsh fish ;;\n")
	b.WriteString("    help)\n        _describe 'command' commands ;;\n")
	b.WriteString("    esac\n}\n\n")
	b.WriteString("compdef _tsumego_pdf tsumego-pdf\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	b.WriteString("# fish completion for tsumego-pdf\n")
	b.WriteString("complete -c tsumego-pdf -f\n")
	names := commandNames(cmds)
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c tsumego-pdf -n 'not __fish_seen_subcommand_from %s' -a %s -d '%s'\n",
			names, c.Name, strings.ReplaceAll(c.Desc, "'", "\\'"))
	}
	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c tsumego-pdf -n '%s' -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Type {
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile, flagDir:
				line += " -r -F"
			case flagString, flagNumber:
				line += " -x"
			}
			line += fmt.Sprintf(" -d '%s'", strings.ReplaceAll(f.Desc, "'", "\\'"))
			b.WriteString(line + "\n")
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c tsumego-pdf -n '%s' -F\n", cond)
		}
	}
	b.WriteString("complete -c tsumego-pdf -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n")

	_, err := io.WriteString(w, b.String())
	return err
}
