// Command rtm plans the cash flow of a retirement funded by a cryptocurrency
// portfolio.
//
// Shell completion is installed with
//
//	COMP_INSTALL=1 rtm
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/retirement/cmd"
	"github.com/etnz/retirement/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	completion(cmd.Commands).Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// predictors overrides the value predictor of well known flags.
var predictors = map[string]complete.Predictor{
	"lots":    predict.Files("*.csv"),
	"config":  predict.Files("*.yaml"),
	"method":  predict.Set{"hifo", "fifo"},
	"backend": predict.Set{"mcp", "gemini"},
}

// completion describes the command line of rtm for shell completion.
func completion(commands []subcommands.Command) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{"help": {}, "flags": {}},
		Flags: flags(flag.CommandLine),
	}
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flags(fs), Args: args(c.Name())}
	}
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = nil
			return
		}
		if p, ok := predictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}

func args(command string) complete.Predictor {
	switch command {
	case "validate":
		return predict.Files("*.csv")
	case "topic":
		topics, err := docs.GetAllTopics()
		if err != nil {
			return predict.Nothing
		}
		return predict.Set(topics)
	default:
		return predict.Nothing
	}
}
