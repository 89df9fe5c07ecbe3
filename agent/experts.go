package agent

import (
	"context"
	"fmt"

	"github.com/etnz/whatif"
	"github.com/etnz/whatif/date"
	"github.com/etnz/whatif/docs"
	"github.com/etnz/whatif/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user has a list of past spending, and wonders what it would be worth had it been
			invested instead. Devise a plan of questions to ask to each expert and come up with the
			best response to the user's request. Never present a figure as investment advice.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher is an expert grounded on Google Search.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is a market researcher, aware of the S&P 500, the MSCI World and Bitcoin,
		their history and the latest news about them.
		Ask the Researcher whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of financial markets. You Leverage Google Search to
			ground your assertions in a solid truth, and explain how past events moved
			the S&P 500, the MSCI World or Bitcoin.
				`}}},
		},
	}
}

// Workspace is the data the Analyst computes on.
type Workspace struct {
	Session  *whatif.Session
	Resolver *whatif.Resolver
	Currency string
}

// NewAnalyst is an expert that values the user's transactions.
func NewAnalyst(w *Workspace) *Expert {
	lib := []Function{w.WhatIf(), w.Multiplier()}
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. He knows the user's list of transactions and computes
		what they would be worth had they been invested in a scenario, on any day, with any growth factor.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are an analyst in charge of the user's list of transactions.
				Use the Tools to value them under a scenario, compare scenarios, or compute
				the growth of a scenario between two days. Always say whether real market data
				or the deterministic model was used.

				` + must(docs.GetTopic("scenarios")) + `
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var scenarioSchema = &genai.Schema{
	Type:        genai.TypeString,
	Enum:        []string{string(whatif.SP500), string(whatif.MSCI), string(whatif.BTC)},
	Description: "The reference asset: sp500, msci or btc.",
}

// WhatIf values the session transactions.
func (w *Workspace) WhatIf() *Func {
	const name = "WhatIf"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `WhatIf lists the user's transactions with what each would be worth on the as-of day
			had it been invested in the scenario on the day it was spent, and the totals.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"scenario": scenarioSchema,
					"asOf": {
						Type:        genai.TypeString,
						Description: "The valuation day as YYYY-MM-DD. Defaults to the user's as-of day.",
					},
					"growth": {
						Type:        genai.TypeNumber,
						Description: "Scales every value, 1.5 means 50% better than the asset did. Defaults to 1.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report: one row per transaction and the totals.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			sc, err := scenarioArg(args, w.Session.Scenario)
			if err != nil {
				return failure(id, name, err)
			}
			asOf, err := dateArg(args, "asOf", w.Session.AsOf)
			if err != nil {
				return failure(id, name, err)
			}
			growth, err := numberArg(args, "growth", 1)
			if err != nil {
				return failure(id, name, err)
			}
			if growth < 0 {
				return failure(id, name, fmt.Errorf("argument 'growth' must not be negative, got %v", growth))
			}
			rows := whatif.Compute(w.Session.Transactions, sc, asOf, growth, w.Resolver.Func(ctx))
			v := renderer.Valuation{Scenario: sc, AsOf: asOf, Growth: growth, RealData: w.Resolver.RealData(), Currency: w.Currency}
			return success(id, name, renderer.RenderResults(renderer.NewResults(v, rows)))
		},
	}
}

// Multiplier resolves the growth of a scenario between two days.
func (w *Workspace) Multiplier() *Func {
	const name = "Multiplier"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: `Multiplier is how much one unit invested in the scenario on 'from' is worth on 'to'.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"scenario": scenarioSchema,
					"from":     {Type: genai.TypeString, Description: "The investment day as YYYY-MM-DD."},
					"to":       {Type: genai.TypeString, Description: "The valuation day as YYYY-MM-DD. Defaults to the user's as-of day."},
				},
				Required: []string{"scenario", "from"},
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			sc, err := scenarioArg(args, "")
			if err != nil {
				return failure(id, name, err)
			}
			from, err := dateArg(args, "from", date.Date{})
			if err != nil {
				return failure(id, name, err)
			}
			if from.IsZero() {
				return failure(id, name, fmt.Errorf("argument 'from' is required"))
			}
			to, err := dateArg(args, "to", w.Session.AsOf)
			if err != nil {
				return failure(id, name, err)
			}
			r := w.Resolver.Resolve(ctx, sc, from, to)
			out := map[string]any{
				"multiplier": r.Value,
				"source":     string(r.Source),
			}
			if !r.OK {
				out["fallback_reason"] = r.Reason.Error()
			}
			return success(id, name, out)
		},
	}
}

func scenarioArg(args map[string]any, def whatif.Scenario) (whatif.Scenario, error) {
	v, ok := args["scenario"]
	if !ok {
		if def == "" {
			return "", fmt.Errorf("argument 'scenario' is required")
		}
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument 'scenario' is not a string as expected but %T", v)
	}
	return whatif.ParseScenario(s)
}

func dateArg(args map[string]any, name string, def date.Date) (date.Date, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("argument '%s' is not a string as expected but %T", name, v)
	}
	d, err := date.Parse(s)
	if err != nil {
		return def, fmt.Errorf("argument '%s' must be a YYYY-MM-DD date: %w", name, err)
	}
	return d, nil
}

func numberArg(args map[string]any, name string, def float64) (float64, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return def, fmt.Errorf("argument '%s' is not a number as expected but %T", name, v)
	}
}
