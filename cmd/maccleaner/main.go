package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/TomerGlick/MacCleaner-sub001/internal/archive"
	"github.com/TomerGlick/MacCleaner-sub001/internal/classify"
	"github.com/TomerGlick/MacCleaner-sub001/internal/cleaner"
	"github.com/TomerGlick/MacCleaner-sub001/internal/config"
	"github.com/TomerGlick/MacCleaner-sub001/internal/guard"
	"github.com/TomerGlick/MacCleaner-sub001/internal/logger"
	"github.com/TomerGlick/MacCleaner-sub001/internal/scanner"
	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
	"github.com/TomerGlick/MacCleaner-sub001/internal/utils"
	pkgversion "github.com/TomerGlick/MacCleaner-sub001/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version")
	debug := flag.Bool("debug", false, "Enable debug logging")
	roots := flag.String("roots", "", "Comma-separated scan roots (catalog roots are always included)")
	clean := flag.String("clean", "", "Comma-separated category tags to clean (e.g. temp,old,log)")
	scanRate := flag.Int("scan-rate", 0, "Max files examined per second (0 = unlimited)")
	dryRun := flag.Bool("dry-run", false, "Show what would be cleaned without touching the disk")
	dangerouslyDelete := flag.Bool("dangerously-delete", false, "Permanently delete instead of moving to Trash")
	noBackup := flag.Bool("no-backup", false, "Skip the safety archive before deleting")
	flag.Parse()

	if *showVersion {
		fmt.Printf("maccleaner %s\n", pkgversion.Version)
		return
	}

	if err := logger.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
	}
	defer logger.Close()

	if err := run(*roots, *clean, *scanRate, types.CleanupOptions{
		CreateBackup:   !*noBackup,
		MoveToTrash:    !*dangerouslyDelete,
		SkipInUseFiles: true,
		DryRun:         *dryRun,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rootsFlag, cleanFlag string, scanRate int, opts types.CleanupOptions) error {
	cfg, err := config.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	g := guard.New()
	g.UpdateForVersion(pkgversion.OSMajor())

	scanRoots := scanner.ExpandCatalog(cfg.Catalog)
	for _, r := range strings.Split(rootsFlag, ",") {
		if r = strings.TrimSpace(r); r != "" {
			scanRoots = append(scanRoots, r)
		}
	}
	if len(scanRoots) == 0 {
		return fmt.Errorf("nothing to scan: no roots given and no catalog paths present")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanOpts := []scanner.Option{scanner.WithBatchSize(cfg.Thresholds.ScanBatchSize)}
	if scanRate > 0 {
		scanOpts = append(scanOpts, scanner.WithRateLimit(scanRate))
	}
	sc := scanner.New(g, scanOpts...)
	result, err := sc.Scan(ctx, scanRoots, func(path string, scanned int, _ float64) {
		fmt.Fprintf(os.Stderr, "\rscanned %d files...", scanned)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\rscanned %d files in %s (%d errors)\n",
		len(result.Files), result.Duration.Round(10*time.Millisecond), len(result.Errors))

	cl := classify.New(g, cfg.Thresholds)
	byTag := make(map[types.CategoryTag][]types.FileRecord)
	sizeByTag := make(map[types.CategoryTag]int64)
	for _, f := range result.Files {
		for _, tag := range cl.Classify(f) {
			byTag[tag] = append(byTag[tag], f)
			sizeByTag[tag] += f.Size
		}
	}
	for tag, files := range byTag {
		fmt.Printf("%-14s %6d files  %s\n", tag, len(files), utils.FormatSize(sizeByTag[tag]))
	}

	if cleanFlag == "" {
		return nil
	}

	var selection []types.FileRecord
	seen := make(map[string]bool)
	for _, tag := range strings.Split(cleanFlag, ",") {
		for _, f := range byTag[types.CategoryTag(strings.TrimSpace(tag))] {
			if !seen[f.Path] {
				seen[f.Path] = true
				selection = append(selection, f)
			}
		}
	}
	if len(selection) == 0 {
		fmt.Println("nothing matched the requested categories")
		return nil
	}

	backupDir := filepath.Join(utils.HomeDir(), ".maccleaner", "backups")
	exec := cleaner.NewExecutor(g, archive.NewStore(backupDir), backupDir)
	outcome, err := exec.Cleanup(ctx, types.CleanupSelection{Files: selection, Options: opts}, func(p cleaner.Progress) {
		fmt.Fprintf(os.Stderr, "\rcleaning %d/%d...", p.Current, p.Total)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr)
	fmt.Printf("removed %d files, freed %s\n", outcome.FilesRemoved, utils.FormatSize(outcome.SpaceFreed))
	if outcome.Archive != nil {
		fmt.Printf("backup: %s\n", outcome.Archive.Path)
	}
	for _, e := range outcome.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
	return nil
}
