// Command build-testgraph populates a BadgerDB-backed graph with a
// synthetic social network, for benchmarking and manual query exploration
// against graph/badgergraph without needing a real dataset on hand.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph/badgergraph"
)

// GraphConfig specifies what kind of test graph to build.
type GraphConfig struct {
	NumPeople     int // number of Person nodes
	FriendsPerSon int // average KNOWS edges per person
	OutputPath    string
}

// DefaultConfig returns a small graph for quick manual exploration.
// Size: ~200 people, ~200 edges.
func DefaultConfig() GraphConfig {
	return GraphConfig{NumPeople: 200, FriendsPerSon: 3, OutputPath: "testdata/social_small.badger"}
}

// MediumConfig returns a medium graph for profiling.
// Size: ~5,000 people, ~10,000 edges.
func MediumConfig() GraphConfig {
	return GraphConfig{NumPeople: 5000, FriendsPerSon: 5, OutputPath: "testdata/social_medium.badger"}
}

// LargeConfig returns a large graph for stress testing.
// Size: ~100,000 people, ~400,000 edges.
func LargeConfig() GraphConfig {
	return GraphConfig{NumPeople: 100000, FriendsPerSon: 8, OutputPath: "testdata/social_large.badger"}
}

func main() {
	configType := flag.String("config", "default", "Config type: default, medium, or large")
	flag.Parse()

	var config GraphConfig
	switch *configType {
	case "default":
		config = DefaultConfig()
	case "medium":
		config = MediumConfig()
	case "large":
		config = LargeConfig()
	default:
		fmt.Fprintf(os.Stderr, "Unknown config type: %s (use 'default', 'medium', or 'large')\n", *configType)
		os.Exit(1)
	}

	fmt.Printf("Building test graph: %s\n", config.OutputPath)
	fmt.Printf("  People: %d\n", config.NumPeople)
	fmt.Printf("  Friends/person: %d\n", config.FriendsPerSon)
	fmt.Printf("  Approx edges: %d\n", config.NumPeople*(config.FriendsPerSon/2))
	fmt.Println()

	g, err := BuildTestGraph(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build graph: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	if err := PrintGraphStats(config.OutputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nDone! Explore it with:")
	fmt.Printf("   cyphergraph -db %s -i\n", config.OutputPath)
}

var firstNames = []string{"Alice", "Bob", "Charlie", "Dana", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy"}
var cities = []string{"New York", "Boston", "Seattle", "Austin", "Denver"}

// BuildTestGraph creates a pre-populated BadgerDB graph for benchmarking:
// config.NumPeople Person nodes with random name/age/city properties, and
// a random KNOWS relationship to roughly FriendsPerSon/2 other people per
// node.
func BuildTestGraph(config GraphConfig) (*badgergraph.Graph, error) {
	if err := os.RemoveAll(config.OutputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing graph: %w", err)
	}

	g, err := badgergraph.Open(config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph: %w", err)
	}

	ids := make([]cyphergraph.NodeID, config.NumPeople)
	for i := 0; i < config.NumPeople; i++ {
		props := map[string]cyphergraph.Value{
			"name": fmt.Sprintf("%s%d", firstNames[i%len(firstNames)], i),
			"age":  int64(18 + rand.Intn(60)),
			"city": cities[i%len(cities)],
		}
		n, err := g.AddNode([]string{"Person"}, props)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("failed to add node: %w", err)
		}
		ids[i] = n.ID
	}

	edgesPerPerson := config.FriendsPerSon / 2
	for _, id := range ids {
		for j := 0; j < edgesPerPerson; j++ {
			other := ids[rand.Intn(len(ids))]
			if other.Equal(id) {
				continue
			}
			if _, err := g.AddRelationship("KNOWS", id, other, nil); err != nil {
				g.Close()
				return nil, fmt.Errorf("failed to add relationship: %w", err)
			}
		}
	}

	return g, nil
}

// PrintGraphStats prints on-disk size statistics for a built test graph.
func PrintGraphStats(path string) error {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to stat graph: %w", err)
	}

	fmt.Printf("Graph Statistics:\n")
	fmt.Printf("  Path: %s\n", path)
	fmt.Printf("  Size on disk: %.2f MB\n", float64(size)/1024/1024)
	return nil
}
