package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// ErrInconsistent is returned by the check command when the files violate a
// duplication invariant.
var ErrInconsistent = errors.New("catalog files are inconsistent")

type CheckCommand struct {
	Paths catalog.Paths
	JSON  bool

	Out io.Writer
	Log *logger.Logger

	cfg *config.Config
}

func NewCheckCommand(cfg *config.Config) *CheckCommand {
	return &CheckCommand{Out: os.Stdout, Log: logger.Nop(), cfg: cfg}
}

func (cmd *CheckCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)

	registerPathFlags(fs, &cmd.Paths, cmd.cfg)
	fs.BoolVar(&cmd.JSON, "json", false, "Print the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s check [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Verify that the flat module and lesson files agree with the course tree.\n")
		fmt.Fprintf(os.Stderr, "Exits with status 1 when an invariant is violated. Orphans are reported only.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s check\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s check -json -courses ./backup/courses.json\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *CheckCommand) Run() error {
	checker := consistency.NewChecker(cmd.Paths, consistency.WithLogger(cmd.Log))

	report, err := checker.Check(context.Background())
	if err != nil {
		return fmt.Errorf("consistency check failed: %w", err)
	}

	if cmd.JSON {
		enc := json.NewEncoder(cmd.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	} else {
		fmt.Fprint(cmd.Out, report.Summary())
	}

	if !report.Consistent() {
		return fmt.Errorf("%w: %d errors, run 'repair' to rebuild the flat files", ErrInconsistent, report.Errors())
	}
	return nil
}
