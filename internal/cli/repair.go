package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/coursecatalog/internal/audit"
	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

type RepairCommand struct {
	Paths     catalog.Paths
	BackupDir string

	Out io.Writer
	Log *logger.Logger

	cfg *config.Config
}

func NewRepairCommand(cfg *config.Config) *RepairCommand {
	return &RepairCommand{Out: os.Stdout, Log: logger.Nop(), cfg: cfg}
}

func (cmd *RepairCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("repair", flag.ContinueOnError)

	registerPathFlags(fs, &cmd.Paths, cmd.cfg)
	fs.StringVar(&cmd.BackupDir, "backup-dir", cmd.cfg.Audit.BackupDir, "Directory for the snapshot taken before rewriting (empty disables it)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s repair [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the flat module and lesson files and the id lists from the course tree.\n")
		fmt.Fprintf(os.Stderr, "Orphaned records are kept. Stop the server first or use POST /api/consistency/repair.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *RepairCommand) Run() error {
	opts := []consistency.Option{consistency.WithLogger(cmd.Log)}
	if cmd.BackupDir != "" {
		opts = append(opts, consistency.WithBackup(audit.NewAuditor(cmd.BackupDir)))
	}
	checker := consistency.NewChecker(cmd.Paths, opts...)

	res, err := checker.Repair(context.Background())
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}

	fmt.Fprint(cmd.Out, res.Summary())
	if res.Backup != "" {
		fmt.Fprintf(cmd.Out, "previous content saved to %s\n", res.Backup)
	}
	return nil
}
