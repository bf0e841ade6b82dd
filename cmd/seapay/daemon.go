package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/night-owl-018/seapay-certifier/internal/async"
	"github.com/night-owl-018/seapay-certifier/internal/watch"
)

var (
	pollInterval  time.Duration
	watchDebounce time.Duration
)

// daemonCmd watches the data directory and runs a batch whenever its
// contents change. Filesystem notifications trigger batches promptly; a slow
// poll of the inbox fingerprint catches anything the notifier misses, which
// happens on network mounts. Batches run on a single background worker.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch the data directory and process new sheets automatically",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		queue := async.NewBatchQueue(a.proc, a.logger,
			async.WithBatchTimeout(a.cfg.Processing.BatchTimeout))

		notify, err := watch.New(a.cfg.Paths.DataDir, watchDebounce, a.logger).Start(ctx)
		if err != nil {
			return fmt.Errorf("watch inbox: %w", err)
		}

		enqueue := func() {
			label := fmt.Sprintf("watch-%s", time.Now().Format("20060102-150405"))
			_ = queue.Enqueue(ctx, async.Job{RunLabel: label})
		}

		lastSeen := ""
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		a.logger.Info("daemon started",
			"dir", a.cfg.Paths.DataDir, "interval", pollInterval.String())
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				queue.Shutdown(shutdownCtx)
				cancel()
				return nil
			case _, ok := <-notify:
				if !ok {
					continue
				}
				state, err := inboxFingerprint(a.cfg.Paths.DataDir)
				if err == nil && state != "" {
					lastSeen = state
				}
				enqueue()
			case <-ticker.C:
				state, err := inboxFingerprint(a.cfg.Paths.DataDir)
				if err != nil {
					a.logger.Error("inbox scan failed", "error", err)
					continue
				}
				if state == "" || state == lastSeen {
					continue
				}
				lastSeen = state
				enqueue()
			}
		}
	},
}

// inboxFingerprint hashes the inbox listing (names, sizes, mtimes) so a new
// or replaced PDF triggers exactly one batch.
func inboxFingerprint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d:%d", e.Name(), info.Size(), info.ModTime().UnixNano()))
	}
	if len(parts) == 0 {
		return "", nil
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:]), nil
}

func init() {
	daemonCmd.Flags().DurationVar(&pollInterval, "interval", time.Minute, "inbox poll fallback interval")
	daemonCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "settle time after inbox changes")
	rootCmd.AddCommand(daemonCmd)
}
