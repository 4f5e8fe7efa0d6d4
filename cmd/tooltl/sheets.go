package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tooltl/tooltl/sheets"
)

var sheetJob = sheets.Job{Timeout: sheets.DefaultTimeout}

var sheetsCmd = &cobra.Command{
	Use:   "sheets <url> <output.json>",
	Short: "Export a published spreadsheet as JSON rows",
	Long: `Fetches the JSON payload of a spreadsheet web app, turns every row into an
object keyed by the column headers and writes the result.

Columns whose header starts with "#" or "_" are private and left out.

Example:
  tooltl sheets https://example.com/exec data/items.json --key id`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		job := sheetJob
		job.Name = args[0]
		job.URL = args[0]
		job.Output = args[1]
		if err := (&sheets.Exporter{Logger: logger}).Export(ctx, job); err != nil {
			return err
		}
		status(fmt.Sprintf("sheet exported to %s", job.Output))
		return nil
	},
}

func init() {
	f := sheetsCmd.Flags()
	f.StringVar(&sheetJob.Sheet, "sheet", "", "Export a single named sheet")
	f.StringVar(&sheetJob.Key, "key", "", "Key the rows by this column")
	f.BoolVar(&sheetJob.KeepEmpty, "keep-empty", false, "Keep the empty cells")
	f.BoolVar(&sheetJob.Coerce, "coerce", false, "Convert numeric and boolean cells")
	f.DurationVar(&sheetJob.Timeout, "timeout", sheetJob.Timeout, "Request timeout")
}
