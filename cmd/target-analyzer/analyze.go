package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/target-analyzer-mcp/internal/analysis"
	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// fileResult is one entry of the -json output.
type fileResult struct {
	Path    string           `json:"path"`
	Report  *analysis.Report `json:"report,omitempty"`
	Overlay string           `json:"overlay,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// runAnalyze implements "target-analyzer analyze". It returns the process
// exit code: 0 when every file was analyzed, 1 when any failed, 2 on usage
// errors.
func runAnalyze(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	profileName := fs.String("profile", "", "shooting profile (generic, pm)")
	jsonOut := fs.Bool("json", false, "print reports as JSON")
	overlayDir := fs.String("overlay", "", "directory for annotated images")
	workers := fs.Int("workers", runtime.NumCPU(), "images analyzed in parallel")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "analyze: no input files")
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 2
	}
	if *profileName != "" {
		cfg.Profile = *profileName
	}
	paths := fs.Args()
	if cfg.DebugMaskPath != "" && len(paths) > 1 {
		fmt.Fprintln(stderr, "analyze: debug_mask_path ignored for more than one file")
		cfg.DebugMaskPath = ""
	}

	var logger *log.Logger
	if cfg.Debug {
		logger = log.New(stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
	}
	profile, err := analysis.Lookup(cfg.Profile, detection.NewDetector(cfg, logger))
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return 2
	}

	if *overlayDir != "" {
		if err := os.MkdirAll(*overlayDir, 0o755); err != nil {
			fmt.Fprintf(stderr, "analyze: %v\n", err)
			return 2
		}
	}

	var outputs []string
	if *overlayDir != "" {
		outputs = overlayPaths(*overlayDir, paths)
	}
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(max(*workers, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			out := ""
			if outputs != nil {
				out = outputs[i]
			}
			results[i] = analyzeFile(path, profile, out, cfg.Overlay)
			return nil
		})
	}
	// per-file failures are recorded in results
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(stderr, "analyze: %v\n", err)
			return 1
		}
	} else {
		for _, r := range results {
			if r.Report != nil && r.Error == "" {
				fmt.Fprint(stdout, r.Report.Summary())
				if r.Overlay != "" {
					fmt.Fprintf(stdout, "  Overlay:            %s\n", r.Overlay)
				}
			} else {
				fmt.Fprintf(stdout, "%s\n  Error: %s\n", r.Path, r.Error)
			}
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if os.Getenv(config.EnvLogLevel) == "debug" {
		cfg.Debug = true
	}
	return cfg, nil
}

// overlayPaths names the annotated image of every input "<name>_result.png"
// in dir. Inputs sharing a base name get "<name>_<n>_result.png" instead, n
// counting from 1 in input order, so parallel workers never write the same
// file.
func overlayPaths(dir string, inputs []string) []string {
	stems := make([]string, len(inputs))
	count := make(map[string]int)
	for i, p := range inputs {
		base := filepath.Base(p)
		stems[i] = strings.TrimSuffix(base, filepath.Ext(base))
		count[stems[i]]++
	}

	used := make(map[string]bool)
	for _, stem := range stems {
		if count[stem] == 1 {
			used[stem+"_result.png"] = true
		}
	}

	next := make(map[string]int)
	out := make([]string, len(inputs))
	for i, stem := range stems {
		name := stem + "_result.png"
		if count[stem] > 1 {
			for {
				next[stem]++
				name = fmt.Sprintf("%s_%d_result.png", stem, next[stem])
				if !used[name] {
					break
				}
			}
			used[name] = true
		}
		out[i] = filepath.Join(dir, name)
	}
	return out
}

// analyzeFile analyzes one image. A non-empty overlayPath receives the
// annotated image.
func analyzeFile(path string, profile analysis.Profile, overlayPath string, colors config.OverlayColors) fileResult {
	result := fileResult{Path: path}

	img, err := imaging.LoadImage(path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	report, err := analysis.Analyze(img, profile)
	if report != nil {
		report.Source = path
		result.Report = report
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if overlayPath != "" {
		if err := analysis.RenderOverlay(img, report, colors).Save(overlayPath); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Overlay = overlayPath
	}

	return result
}
