//go:build ignore

// Package main generates a synthetic data tree for benchmarking gen-file-index.
// Usage: go run scripts/generate-data-tree.go -entities 500 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numEntities = flag.Int("entities", 200, "Number of entities per domain")
	maxFiles    = flag.Int("files", 12, "Maximum data files per entity")
	maxDepth    = flag.Int("depth", 3, "Maximum nesting depth below an entity")
	domains     = flag.String("domains", "tracon,enroute", "Comma separated domain names")
	outputDir   = flag.String("output", "testdata/bench", "Output directory")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var subdirs = []string{"charts", "sectors", "procedures", "airways", "boundaries", "fixes"}

// noise files are written next to data files and must not be indexed.
var noise = []string{"README.md", "notes.txt", "source.kml", "preview.png"}

const featureCollection = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":%q},"geometry":{"type":"Point","coordinates":[%.4f,%.4f]}}]}
`

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	total := 0
	for _, domain := range strings.Split(*domains, ",") {
		domain = strings.TrimSpace(domain)
		if domain == "" {
			continue
		}
		for i := 0; i < *numEntities; i++ {
			entity := entityName(domain, i)
			n, err := writeEntity(rng, filepath.Join(*outputDir, domain, entity), entity)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			total += n
		}
	}

	fmt.Printf("Generated %d data files under %s\n", total, *outputDir)
}

// entityName returns airport style codes for tracon and center style codes otherwise.
func entityName(domain string, i int) string {
	if domain == "tracon" {
		return fmt.Sprintf("K%c%c%c", 'A'+byte(i/676%26), 'A'+byte(i/26%26), 'A'+byte(i%26))
	}
	return fmt.Sprintf("Z%c%c%d", 'A'+byte(i/26%26), 'A'+byte(i%26), i/676)
}

func writeEntity(rng *rand.Rand, dir, entity string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	// Some entities are deliberately empty.
	count := rng.Intn(*maxFiles + 1)
	for i := 0; i < count; i++ {
		path := dir
		for d := rng.Intn(*maxDepth + 1); d > 0; d-- {
			path = filepath.Join(path, subdirs[rng.Intn(len(subdirs))])
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return 0, err
		}

		ext := ".geojson"
		if rng.Intn(3) == 0 {
			ext = ".json"
		}
		name := fmt.Sprintf("%s-%03d%s", strings.ToLower(entity), i, ext)
		body := fmt.Sprintf(featureCollection, name, rng.Float64()*360-180, rng.Float64()*180-90)
		if err := os.WriteFile(filepath.Join(path, name), []byte(body), 0o644); err != nil {
			return 0, err
		}

		if rng.Intn(4) == 0 {
			junk := noise[rng.Intn(len(noise))]
			if err := os.WriteFile(filepath.Join(path, junk), []byte("not indexed\n"), 0o644); err != nil {
				return 0, err
			}
		}
	}
	return count, nil
}
