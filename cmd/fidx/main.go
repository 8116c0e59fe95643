package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	fileindex "fileindex/pkg"
)

func main() {
	// Colored output only when stdout is a terminal
	color.NoColor = color.NoColor || !isatty.IsTerminal(os.Stdout.Fd())

	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	if os.Args[1] == "--help" || os.Args[1] == "-h" || os.Args[1] == "help" {
		showHelp()
		return
	}

	opts, command, commandArgs, err := parseGlobalOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fidx: %v\n", err)
		os.Exit(1)
	}

	fileindex.SetVerboseLevel(opts.VerboseLevel)
	fileindex.SetDebugFlags(opts.DebugFlags)

	if err := runCommand(opts, command, commandArgs); err != nil {
		fmt.Fprintf(os.Stderr, "fidx: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(opts *globalOptions, command string, args []string) error {
	switch command {
	case "init":
		return cmdInit(opts)
	case "scan":
		return cmdScan(opts, args)
	case "refresh":
		return cmdRefresh(opts, args)
	case "merge":
		return cmdMerge(opts, args)
	case "lookup":
		return cmdLookup(opts, args)
	case "find-hash":
		return cmdFindHash(opts, args)
	case "stats":
		return cmdStats(opts)
	default:
		return fmt.Errorf("unknown command '%s' (see 'fidx --help')", command)
	}
}

// openRepo opens the repository from --repo or by upward discovery. When
// create is set a missing repository is initialised in the current directory
// instead of failing.
func openRepo(opts *globalOptions, create bool) (*fileindex.Index, error) {
	dir := opts.RepoPath
	if dir == "" {
		found, err := fileindex.FindRepoDir()
		if err != nil {
			if !create {
				return nil, err
			}
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", cwdErr)
			}
			found = cwd
		}
		dir = found
	}

	return fileindex.OpenRepository(dir, opts.ConfigOverrides)
}

func cmdInit(opts *globalOptions) error {
	idx, err := openRepo(opts, true)
	if err != nil {
		return err
	}
	defer idx.Close()

	// Persist the (possibly empty) state so both store files exist
	if err := idx.Save(); err != nil {
		return err
	}
	fmt.Printf("Initialised empty fidx repository\n")
	return nil
}

func cmdScan(opts *globalOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("scan requires exactly one directory argument")
	}

	idx, err := openRepo(opts, true)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Scan(args[0]); err != nil {
		return err
	}

	// Scan itself is not a save point; persist explicitly so the CLI result
	// survives the process
	if err := idx.Save(); err != nil {
		return err
	}

	fmt.Printf("Indexed %s (%d files tracked)\n", args[0], idx.Len())
	return nil
}

func cmdRefresh(opts *globalOptions, args []string) error {
	deepScan := false
	for _, arg := range args {
		switch arg {
		case "--deep":
			deepScan = true
		default:
			return fmt.Errorf("unknown refresh option '%s'", arg)
		}
	}

	idx, err := openRepo(opts, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Refresh(deepScan); err != nil {
		return err
	}

	fmt.Printf("Refreshed index (%d files, %d roots)\n", idx.Len(), len(idx.Roots()))
	return nil
}

func cmdMerge(opts *globalOptions, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("merge requires entries-file and roots-file arguments")
	}

	store, err := fileindex.NewFileStore(args[0], args[1])
	if err != nil {
		return err
	}
	other, err := fileindex.Open(store, nil)
	if err != nil {
		return fmt.Errorf("failed to open index to merge: %w", err)
	}
	defer other.Close()

	idx, err := openRepo(opts, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Merge(other); err != nil {
		return err
	}

	fmt.Printf("Merged %d entries, %d roots (%d files tracked)\n", other.Len(), len(other.Roots()), idx.Len())
	return nil
}

func cmdLookup(opts *globalOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("lookup requires exactly one path argument")
	}

	idx, err := openRepo(opts, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	hash, ok := idx.LookupHash(args[0])
	if !ok {
		return fmt.Errorf("path not indexed: %s", args[0])
	}

	fmt.Printf("%s  %s\n", hash, args[0])
	return nil
}

func cmdFindHash(opts *globalOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("find-hash requires exactly one hash argument")
	}
	if len(args[0]) != fileindex.HexDigestLen {
		return fmt.Errorf("invalid hash length %d, expected %d hex characters", len(args[0]), fileindex.HexDigestLen)
	}

	idx, err := openRepo(opts, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	matches := idx.FindByHash(args[0])
	for _, path := range matches {
		fmt.Println(path)
	}
	if len(matches) == 0 {
		return errors.New("no indexed files match that hash")
	}
	return nil
}

func cmdStats(opts *globalOptions) error {
	idx, err := openRepo(opts, false)
	if err != nil {
		return err
	}
	defer idx.Close()

	heading := color.New(color.Bold).SprintFunc()
	value := color.CyanString

	fmt.Printf("%s %s\n", heading("Files tracked:"), value("%d", idx.Len()))
	fmt.Printf("%s\n", heading("Roots:"))
	for _, root := range idx.Roots() {
		marker := color.GreenString("ok")
		if _, err := os.Stat(root); err != nil {
			marker = color.RedString("missing")
		}
		fmt.Printf("  %s  [%s]\n", root, marker)
	}
	return nil
}

// globalOptions holds options shared by all commands
type globalOptions struct {
	RepoPath        string
	VerboseLevel    int
	DebugFlags      string
	ConfigOverrides []string
}

// parseGlobalOptions splits argv into global options, the command name, and
// the command's own arguments
func parseGlobalOptions(argv []string) (*globalOptions, string, []string, error) {
	opts := &globalOptions{}

	i := 0
	for ; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--repo":
			if i+1 >= len(argv) {
				return nil, "", nil, fmt.Errorf("--repo requires a directory argument")
			}
			i++
			opts.RepoPath = argv[i]
		case "--verbose", "-v":
			if i+1 >= len(argv) {
				return nil, "", nil, fmt.Errorf("--verbose requires a level argument")
			}
			i++
			level, err := strconv.Atoi(argv[i])
			if err != nil {
				return nil, "", nil, fmt.Errorf("invalid verbose level '%s'", argv[i])
			}
			if err := fileindex.ValidateVerboseLevel(level); err != nil {
				return nil, "", nil, err
			}
			opts.VerboseLevel = level
		case "--debug":
			if i+1 >= len(argv) {
				return nil, "", nil, fmt.Errorf("--debug requires a flags argument")
			}
			i++
			opts.DebugFlags = argv[i]
		case "--config":
			if i+1 >= len(argv) {
				return nil, "", nil, fmt.Errorf("--config requires a key:value argument")
			}
			i++
			opts.ConfigOverrides = append(opts.ConfigOverrides, argv[i])
		default:
			// First non-option is the command
			return opts, arg, argv[i+1:], nil
		}
	}

	return nil, "", nil, fmt.Errorf("no command given")
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "Usage: fidx [global-options] <command> [args]\n")
	fmt.Fprintf(os.Stderr, "Try 'fidx --help' for more information.\n")
}

func showHelp() {
	fmt.Printf("fidx - maintain a persistent file content-hash index\n\n")
	fmt.Printf("Usage: fidx [global-options] <command> [args]\n\n")
	fmt.Printf("COMMANDS:\n")
	fmt.Printf("  init                    Initialise a repository in the current directory\n")
	fmt.Printf("  scan DIR                Track DIR and index new files under it\n")
	fmt.Printf("  refresh [--deep]        Prune dead roots/entries, index new files;\n")
	fmt.Printf("                          --deep also recomputes every stored hash\n")
	fmt.Printf("  merge ENTRIES ROOTS     Absorb another index's store files\n")
	fmt.Printf("  lookup PATH             Print the stored hash for PATH\n")
	fmt.Printf("  find-hash HASH          Print every indexed path with HASH\n")
	fmt.Printf("  stats                   Show index statistics\n\n")
	fmt.Printf("GLOBAL OPTIONS:\n")
	fmt.Printf("  --repo DIR              Repository root (default: search upward for %s)\n", fileindex.RepoDirName)
	fmt.Printf("  --verbose, -v N         Verbose level (0-3)\n")
	fmt.Printf("  --debug FLAGS           Debug flags (comma-separated: scan,refresh,store)\n")
	fmt.Printf("  --config KEY:VALUE      Override a config value for this run\n")
	fmt.Printf("                          (entries, roots, ephemeral, hash_workers,\n")
	fmt.Printf("                          hash_buffer, level, debug)\n")
}
