package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shelfscan/internal/catalog"
	"shelfscan/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Interactively scan barcodes, then process the batch",
	Long: `Reads barcodes from stdin (one per line, as a keyboard-wedge
scanner types them) until EOF or a blank line, then resolves and stores
every scanned book.`,
	RunE: runScan,
}

var addCmd = &cobra.Command{
	Use:   "add [code]...",
	Short: "Look up and store one or more codes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the spool directory for dropped scan files",
	Long: `Watches the configured spool directory. Files dropped there are
read as one code per line, processed, and renamed with a .done suffix.
Runs until interrupted.`,
	RunE: runWatch,
}

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Show the recent scan audit trail",
	RunE:  runScans,
}

func init() {
	scansCmd.Flags().Int("limit", 50, "number of events to show")
	rootCmd.AddCommand(scanCmd, addCmd, watchCmd, scansCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	buf := scanner.NewBuffer()
	buf.Start()

	fmt.Println("Scanning. One code per line; blank line or EOF to finish.")
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			break
		}
		buf.Add(line)
		fmt.Printf("  scanned: %s\n", line)
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	codes := buf.Stop()
	if len(codes) == 0 {
		fmt.Println("Nothing scanned.")
		return nil
	}
	return processBatch(commandContext(cmd), codes)
}

func runAdd(cmd *cobra.Command, args []string) error {
	return processBatch(commandContext(cmd), args)
}

func processBatch(ctx context.Context, codes []string) error {
	ctx, cancel := context.WithTimeout(ctx, reasonableBatchTimeout(len(codes)))
	defer cancel()

	cat, st, err := newCatalog(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("Processing %d code(s)...\n", len(codes))
	failures := 0
	for _, res := range cat.ProcessCodes(ctx, codes) {
		if res.Err != nil {
			failures++
			fmt.Printf("  FAILED   %-16s %v\n", res.Code, res.Err)
			continue
		}
		fmt.Printf("  %-8s %-16s %s\n", strings.ToUpper(string(res.Outcome)), res.ISBN, res.Title)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d codes failed", failures, len(codes))
	}
	return nil
}

// watchProcessor adapts the catalog batch API to the watcher.
type watchProcessor struct{ cat *catalog.Catalog }

func (p watchProcessor) ProcessCodes(ctx context.Context, codes []string) {
	for _, res := range p.cat.ProcessCodes(ctx, codes) {
		if res.Err != nil {
			fmt.Printf("  FAILED   %-16s %v\n", res.Code, res.Err)
			continue
		}
		fmt.Printf("  %-8s %-16s %s\n", strings.ToUpper(string(res.Outcome)), res.ISBN, res.Title)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, st, err := newCatalog(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := scanner.NewWatcher(cfg.SpoolDir, watchProcessor{cat: cat}, logger.Named("watcher"))
	if err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.SpoolDir)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("watcher stopped", zap.Error(ctx.Err()))
	return nil
}

func runScans(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.ListScans(commandContext(cmd), limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No scan events recorded.")
		return nil
	}

	printTable([]string{"TIME", "CODE", "STATUS", "DETAIL"}, func(add func(...interface{})) {
		for _, e := range events {
			add(e.ScannedAt, e.Code, e.Status, e.Detail)
		}
	})
	return nil
}
