package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/etnz/retirement/lotcsv"
	"github.com/etnz/retirement/renderer"
	"github.com/google/subcommands"
)

type validateCmd struct{}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check the structure of lot files" }
func (*validateCmd) Usage() string {
	return `rtm validate [<file>...]

  Checks that each lot file has the required columns and that no row is
  missing fields. Without argument, checks the file given by -lots.

  Exits with a failure status when any file is invalid.

`
}

func (*validateCmd) SetFlags(f *flag.FlagSet) {}

func (*validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	files := f.Args()
	if len(files) == 0 {
		files = []string{*lotsFile}
	}
	status := subcommands.ExitSuccess
	for _, name := range files {
		report, err := validateFile(name)
		if err != nil {
			return failure("%v", err)
		}
		if !report.Valid {
			status = subcommands.ExitFailure
		}
		printMarkdown(renderer.ValidationMarkdown(name, report))
	}
	return status
}

func validateFile(name string) (lotcsv.Report, error) {
	f, err := os.Open(name)
	if err != nil {
		return lotcsv.Report{}, err
	}
	defer f.Close()
	return lotcsv.Validate(f)
}
