// Command cyphergraph is an interactive and scriptable front end for the
// query engine: point it at a BadgerDB path for persistent storage, or
// leave it unset for a throwaway in-memory graph seeded with demo data.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph"
	"github.com/wbrown/cyphergraph/graph/badgergraph"
	"github.com/wbrown/cyphergraph/graph/memgraph"
	"github.com/wbrown/cyphergraph/runner"
)

func main() {
	var dbPath string
	var interactive bool
	var help bool
	var verbose bool
	var queryStr string
	var limit int

	flag.StringVar(&dbPath, "db", "", "BadgerDB database path (in-memory demo graph if unset)")
	flag.BoolVar(&interactive, "i", false, "interactive mode")
	flag.BoolVar(&help, "h", false, "show help")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (show physical plan annotations)")
	flag.StringVar(&queryStr, "query", "", "run a single query and exit")
	flag.IntVar(&limit, "limit", 50, "max rows to display per result")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [database_path]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A Cypher-flavored graph query engine.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                 # In-memory demo graph, print usage\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i                              # Interactive mode, in-memory demo graph\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -db mydata.badger -i            # Interactive mode, persistent graph\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -query 'MATCH (n) RETURN n'     # Run a single query and exit\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}
	if dbPath == "" && flag.NArg() > 0 {
		dbPath = flag.Arg(0)
	}

	model, seeded, closeModel, err := openModel(dbPath)
	if err != nil {
		fatal("failed to open graph: %v", err)
	}
	defer closeModel()

	r := runner.NewRunner(model)
	r.EnableAnnotations(verbose)

	switch {
	case queryStr != "":
		runOne(r, queryStr, limit, verbose)
	case interactive:
		runInteractive(r, limit, verbose)
	default:
		if seeded {
			fmt.Println(color.GreenString("Seeded an in-memory demo graph. Use -i for interactive mode or -query to run a query."))
		} else {
			fmt.Println("Use -i for interactive mode or -query to run a query.")
		}
	}
}

// openModel opens a BadgerDB-backed graph at path, or an empty in-memory
// graph seeded with a small demo dataset when path is empty. seeded
// reports whether demo data was loaded.
func openModel(path string) (model graph.Model, seeded bool, closeFn func(), err error) {
	if path == "" {
		g := memgraph.New()
		seedDemoData(g)
		return g, true, func() {}, nil
	}

	g, err := badgergraph.Open(path)
	if err != nil {
		return nil, false, func() {}, err
	}
	return g, false, func() { g.Close() }, nil
}

func seedDemoData(g *memgraph.Graph) {
	alice := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Alice", "age": int64(30)})
	bob := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Bob", "age": int64(25)})
	charlie := g.AddNode([]string{"Person"}, map[string]cyphergraph.Value{"name": "Charlie", "age": int64(35)})

	g.AddRelationship("KNOWS", alice.ID, bob.ID, nil)
	g.AddRelationship("KNOWS", alice.ID, charlie.ID, nil)
	g.AddRelationship("KNOWS", bob.ID, charlie.ID, nil)
}

func runOne(r *runner.Runner, query string, limit int, verbose bool) {
	result, elapsed, err := execute(r, query)
	if err != nil {
		fatal("%v", err)
	}
	printResult(result, elapsed, limit, verbose)
}

func runInteractive(r *runner.Runner, limit int, verbose bool) {
	fmt.Println(color.CyanString("=== cyphergraph interactive mode ==="))
	fmt.Println("Commands:")
	fmt.Println("  .help    - show an example query")
	fmt.Println("  .exit    - exit")
	fmt.Println("  <query>; - run a Cypher-flavored query (end it with ';'; it may span lines)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgGreen).Sprint("cyphergraph> ")

	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == ".exit":
			return
		case line == ".help":
			fmt.Println("Enter a query, e.g. MATCH (n) RETURN n LIMIT 10;")
			continue
		}

		query := line
		for !strings.HasSuffix(query, ";") {
			fmt.Print(color.New(color.FgGreen).Sprint("        > "))
			if !scanner.Scan() {
				return
			}
			query += "\n" + scanner.Text()
		}
		query = strings.TrimSuffix(strings.TrimSpace(query), ";")

		result, elapsed, err := execute(r, query)
		if err != nil {
			fmt.Println(color.RedString("error: %v", err))
			continue
		}
		printResult(result, elapsed, limit, verbose)
	}
}

func execute(r *runner.Runner, query string) (*runner.Result, time.Duration, error) {
	start := time.Now()
	result, err := r.Run(query, nil)
	return result, time.Since(start), err
}

func printResult(result *runner.Result, elapsed time.Duration, limit int, verbose bool) {
	table, err := result.Show(limit)
	if err != nil {
		fmt.Println(color.RedString("error rendering result: %v", err))
		return
	}
	fmt.Println(table)
	fmt.Println(color.YellowString("(%.3fms)", float64(elapsed.Microseconds())/1000.0))
	if verbose {
		fmt.Println(color.CyanString("--- physical plan ---"))
		fmt.Println(result.PhysicalPlan())
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString(format, args...))
	os.Exit(1)
}
