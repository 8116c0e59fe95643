package main

import (
	"fmt"
	"os"
	"strconv"

	fileindex "fileindex/pkg"
)

func main() {
	args, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "finddupes: %v\n", err)
		showUsage()
		os.Exit(1)
	}

	if args.ShowHelp {
		showHelp()
		return
	}

	fileindex.SetVerboseLevel(args.VerboseLevel)
	fileindex.SetDebugFlags(args.DebugFlags)

	pairs, err := findDuplicates(args.Directory1, args.Directory2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "finddupes: %v\n", err)
		os.Exit(1)
	}

	for _, pair := range pairs {
		fmt.Printf("Duplicate found: %s and %s\n", pair.Path, pair.Match)
	}
}

// findDuplicates indexes both directories into throwaway stores and compares
// them. No state survives the run.
func findDuplicates(directory1, directory2 string) ([]fileindex.DuplicatePair, error) {
	idx1, err := openEphemeralIndex()
	if err != nil {
		return nil, err
	}
	defer idx1.Close()

	idx2, err := openEphemeralIndex()
	if err != nil {
		return nil, err
	}
	defer idx2.Close()

	if err := idx1.Scan(directory1); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", directory1, err)
	}
	if err := idx2.Scan(directory2); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", directory2, err)
	}

	return idx1.FindDuplicates(idx2), nil
}

func openEphemeralIndex() (*fileindex.Index, error) {
	store, err := fileindex.NewEphemeralStore()
	if err != nil {
		return nil, err
	}

	idx, err := fileindex.Open(store, nil)
	if err != nil {
		store.Close()
		return nil, err
	}
	return idx, nil
}

// arguments holds the parsed command line
type arguments struct {
	Directory1   string
	Directory2   string
	VerboseLevel int
	DebugFlags   string
	ShowHelp     bool
}

func parseArguments(argv []string) (*arguments, error) {
	args := &arguments{}
	var positional []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--help", "-h", "help":
			args.ShowHelp = true
			return args, nil
		case "--verbose", "-v":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("--verbose requires a level argument")
			}
			i++
			level, err := strconv.Atoi(argv[i])
			if err != nil {
				return nil, fmt.Errorf("invalid verbose level '%s'", argv[i])
			}
			if err := fileindex.ValidateVerboseLevel(level); err != nil {
				return nil, err
			}
			args.VerboseLevel = level
		case "--debug":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("--debug requires a flags argument")
			}
			i++
			args.DebugFlags = argv[i]
		default:
			positional = append(positional, argv[i])
		}
	}

	if len(positional) != 2 {
		return nil, fmt.Errorf("expected exactly 2 directory arguments, got %d", len(positional))
	}

	args.Directory1 = positional[0]
	args.Directory2 = positional[1]
	return args, nil
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "Usage: finddupes <directory1> <directory2>\n")
	fmt.Fprintf(os.Stderr, "Try 'finddupes --help' for more information.\n")
}

func showHelp() {
	fmt.Printf("finddupes - find duplicate files between two directory trees\n\n")
	fmt.Printf("Usage: finddupes [options] <directory1> <directory2>\n\n")
	fmt.Printf("Each directory is indexed into a throwaway in-memory index, then every\n")
	fmt.Printf("file in directory2 is matched by content hash against directory1.\n")
	fmt.Printf("One line is printed per duplicate pair:\n\n")
	fmt.Printf("  Duplicate found: <path-in-directory2> and <path-in-directory1>\n\n")
	fmt.Printf("OPTIONS:\n")
	fmt.Printf("  --verbose, -v N   Verbose level (0-3)\n")
	fmt.Printf("  --debug FLAGS     Debug flags (comma-separated: scan,refresh,store)\n")
	fmt.Printf("  --help, -h        Show this help\n")
}
