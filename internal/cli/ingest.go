package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/service/ingest"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Index documents into the knowledge base",
		Long:  "Parses pdf, docx, html, txt, md and json files, splits them into chunks and indexes them. Re-ingesting a file replaces its previous chunks.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
	cmd.Flags().BoolP("watch", "w", false, "Keep running and re-index a directory when files change")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Delay before re-indexing a changed file")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var all []*ingest.Result
	for _, path := range args {
		results, err := a.svc.Ingest.IngestPath(ctx, path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		all = append(all, results...)
	}
	b, _ := json.MarshalIndent(all, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("--watch takes exactly one directory")
	}
	if info, err := os.Stat(args[0]); err != nil || !info.IsDir() {
		return fmt.Errorf("--watch requires a directory: %s", args[0])
	}

	debounce, _ := cmd.Flags().GetDuration("debounce")
	a.log.Info("watching for changes", zap.String("dir", args[0]))
	return a.svc.Ingest.Watch(ctx, args[0], debounce)
}
