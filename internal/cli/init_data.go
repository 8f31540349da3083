package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/entrypoint"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

type InitDataCommand struct {
	Paths catalog.Paths

	Out io.Writer
	Log *logger.Logger

	cfg *config.Config
}

func NewInitDataCommand(cfg *config.Config) *InitDataCommand {
	return &InitDataCommand{Out: os.Stdout, Log: logger.Nop(), cfg: cfg}
}

func (cmd *InitDataCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("init-data", flag.ContinueOnError)

	registerPathFlags(fs, &cmd.Paths, cmd.cfg)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s init-data [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the missing data files holding an empty array. Existing files are left alone.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *InitDataCommand) Run() error {
	created, err := entrypoint.InitData(cmd.Paths, cmd.Log)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Fprintln(cmd.Out, "all data files already exist")
		return nil
	}
	for _, path := range created {
		fmt.Fprintf(cmd.Out, "created %s\n", path)
	}
	return nil
}
