// Command hublocator-build runs the eight-stage graph-construction
// pipeline standalone, writing final_graph.json and the calculated
// weights artifact without standing up the HTTP server. Mirrors the
// teacher's preprocessing/cmd/gtfs_index/main.go: a thin flag wrapper
// around a single library call.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"hublocator/build"
	"hublocator/config"
	"hublocator/graphmodel"
	"hublocator/provider"
)

func main() {
	var configPath string
	var weightsOut string
	flag.StringVar(&configPath, "config", "", "Path to YAML config file (empty uses built-in defaults)")
	flag.StringVar(&weightsOut, "weights-out", "", "Path to write the calculated-weights JSON artifact (defaults to <graph_output_dir>/weights.json)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, err := config.APIToken()
	if err != nil {
		log.Fatalf("failed to load api token: %v", err)
	}

	cache, err := provider.NewCache(cfg.CacheDir, 1024)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	client := provider.NewClient(cfg, token, cache)
	defer client.Close()

	log.Printf("starting build run against %d lines", len(build.DefaultLines))
	result, err := build.Run(context.Background(), cfg, client, cache, build.DefaultLines)
	if err != nil {
		log.Fatalf("build run failed: %v", err)
	}

	graphPath := cfg.GraphOutputDir + "/final_graph.json"
	if err := graphmodel.WriteGraph(result.Graph, graphPath); err != nil {
		log.Fatalf("failed to write graph artifact: %v", err)
	}

	if weightsOut == "" {
		weightsOut = cfg.GraphOutputDir + "/weights.json"
	}
	if err := os.MkdirAll(cfg.GraphOutputDir, 0o755); err != nil {
		log.Fatalf("failed to ensure output dir: %v", err)
	}
	f, err := os.Create(weightsOut)
	if err != nil {
		log.Fatalf("failed to create weights output %s: %v", weightsOut, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Weights); err != nil {
		log.Fatalf("failed to write weights: %v", err)
	}

	fmt.Printf("build run %s complete: %d hubs, %d edges, %d weight records, %d warnings\n",
		result.RunID, result.Graph.HubCount(), result.Graph.EdgeCount(), len(result.Weights), len(result.Warnings))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}
}
