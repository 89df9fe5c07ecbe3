package cmd

import (
	"flag"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of mm and its subcommands.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub: make(map[string]*complete.Command),
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.yaml"),
			"state-dir": predict.Dirs("*"),
			"real":      predict.Nothing,
			"v":         predict.Nothing,
		},
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(f)
		root.Sub[c.Command.Name()] = &complete.Command{
			Flags: flagPredictors(f),
			Args:  argsPredictor(c.Command.Name()),
		}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	predictors := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		switch {
		case isBool(fl):
			predictors[fl.Name] = predict.Nothing
		case fl.Name == "scenario":
			predictors[fl.Name] = predict.Set(scenarioNames())
		case fl.Name == "format":
			predictors[fl.Name] = predict.Set{"csv", "pdf"}
		case fl.Name == "o":
			predictors[fl.Name] = predict.Files("*")
		default:
			predictors[fl.Name] = predict.Something
		}
	})
	return predictors
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func argsPredictor(name string) complete.Predictor {
	switch name {
	case "import":
		return predict.Files("*.csv")
	case "topic":
		index, err := docs.Index()
		if err != nil {
			return predict.Nothing
		}
		var topics []string
		for _, t := range index {
			topics = append(topics, t.Name)
		}
		return predict.Set(topics)
	case "add", "multiplier":
		return predict.Set{"today"}
	case "clear", "set", "list", "timeline", "chart", "export", "serve":
		return predict.Nothing
	default:
		return predict.Something
	}
}

func scenarioNames() []string {
	var names []string
	for _, s := range whatif.Scenarios() {
		names = append(names, string(s))
	}
	return names
}

// IsCommand reports whether name is a subcommand of mm, as opposed to an
// extension.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Command.Name() == name {
			return true
		}
	}
	return false
}
