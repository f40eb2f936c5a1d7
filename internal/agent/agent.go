// Package agent implements the turn-based conversational front end: a chat
// loop around the language model that exposes the flight search as a tool.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/Domenick1991/flightagent/internal/llm"
	"github.com/Domenick1991/flightagent/internal/service/search"
)

const searchToolName = "search_flights"

// maxAlternativesShown keeps the tool summary short for the model.
const maxAlternativesShown = 5

type ModelClient interface {
	GenerateContent(ctx context.Context, model string, req llm.GenerateRequest) (*llm.GenerateResponse, error)
}

type Agent struct {
	client       ModelClient
	cursor       *llm.ModelCursor
	search       search.SearchUseCase
	rankOpts     domain.RankOptions
	in           io.Reader
	out          io.Writer
	now          func() time.Time
	sleep        func(time.Duration)
	maxRetryWait time.Duration
}

type AgentOption func(*Agent)

// WithIO replaces stdin/stdout, mainly for tests.
func WithIO(in io.Reader, out io.Writer) AgentOption {
	return func(a *Agent) {
		a.in = in
		a.out = out
	}
}

func WithRankOptions(opts domain.RankOptions) AgentOption {
	return func(a *Agent) { a.rankOpts = opts.Normalize() }
}

func WithMaxRetryWait(d time.Duration) AgentOption {
	return func(a *Agent) { a.maxRetryWait = d }
}

func WithClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

func WithSleep(sleep func(time.Duration)) AgentOption {
	return func(a *Agent) { a.sleep = sleep }
}

func New(client ModelClient, cursor *llm.ModelCursor, searchUC search.SearchUseCase, opts ...AgentOption) *Agent {
	a := &Agent{
		client:       client,
		cursor:       cursor,
		search:       searchUC,
		rankOpts:     domain.DefaultRankOptions(),
		in:           os.Stdin,
		out:          os.Stdout,
		now:          time.Now,
		sleep:        time.Sleep,
		maxRetryWait: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run reads user turns until EOF or quit. Each turn goes through the model;
// tool calls are dispatched into the search use case and the tool output is
// fed back for the final answer.
func (a *Agent) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "FLIGHT AGENT: Where would you like to go? (type 'quit' to exit)")
	fmt.Fprintln(a.out, "  (example: 'Find me a direct flight from Delhi to Mumbai for Jan 20th')")

	var history []llm.Content
	scanner := bufio.NewScanner(a.in)

	for {
		fmt.Fprint(a.out, "\nYou: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if lower := strings.ToLower(input); lower == "quit" || lower == "exit" {
			return nil
		}

		history = append(history, llm.Content{Role: "user", Parts: []llm.Part{{Text: input}}})

		resp, err := a.invoke(ctx, history)
		if err != nil {
			fmt.Fprintf(a.out, "error calling the model: %v\n", err)
			continue
		}
		history = append(history, resp.Candidates[0].Content)

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			fmt.Fprintf(a.out, "Agent: %s\n", resp.Text())
			continue
		}

		for _, call := range calls {
			output := a.dispatch(ctx, call)
			history = append(history, llm.Content{
				Role: "user",
				Parts: []llm.Part{{
					FunctionResponse: &llm.FunctionResponse{
						Name:     call.Name,
						Response: map[string]any{"content": output},
					},
				}},
			})
		}

		final, err := a.invoke(ctx, history)
		if err != nil {
			fmt.Fprintf(a.out, "error generating final response: %v\n", err)
			continue
		}
		history = append(history, final.Candidates[0].Content)
		fmt.Fprintf(a.out, "Agent: %s\n", final.Text())
	}
}

// invoke runs one model turn with the quota policy: on quota exhaustion walk
// the fallback models in order; once the list is exhausted, wait out the
// suggested quota window and retry the current model once.
func (a *Agent) invoke(ctx context.Context, history []llm.Content) (*llm.GenerateResponse, error) {
	req := a.buildRequest(history)

	resp, err := a.generate(ctx, req)
	attempt := llm.Classify(err)
	switch attempt.Outcome {
	case llm.OutcomeOK:
		return resp, nil
	case llm.OutcomeFailed:
		return nil, err
	}

	for a.cursor.Advance() {
		fmt.Fprintf(a.out, "quota exhausted, attempting fallback model %s\n", a.cursor.Current())
		resp, err = a.generate(ctx, req)
		next := llm.Classify(err)
		if next.Outcome == llm.OutcomeOK {
			fmt.Fprintf(a.out, "fallback to %s succeeded\n", a.cursor.Current())
			return resp, nil
		}
		if next.Outcome == llm.OutcomeFailed {
			return nil, err
		}
	}

	wait := attempt.RetryAfter
	if wait > a.maxRetryWait {
		wait = a.maxRetryWait
	}
	fmt.Fprintf(a.out, "quota exhausted on all models, waiting %s then retrying once\n", wait)
	a.sleep(wait + time.Second)

	resp, err = a.generate(ctx, req)
	if llm.Classify(err).Outcome == llm.OutcomeOK {
		return resp, nil
	}
	return nil, err
}

func (a *Agent) generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	resp, err := a.client.GenerateContent(ctx, a.cursor.Current(), req)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("model %s returned no candidates", a.cursor.Current())
	}
	return resp, nil
}

func (a *Agent) buildRequest(history []llm.Content) llm.GenerateRequest {
	today := a.now().Format("2006-01-02")
	system := fmt.Sprintf(
		"You are a helpful flight assistant. Today is %s. When searching, convert city names to airport codes (e.g. Delhi -> DEL). Always use YYYY-MM-DD format for dates.",
		today,
	)
	temperature := 0.0

	return llm.GenerateRequest{
		SystemInstruction: &llm.Content{Parts: []llm.Part{{Text: system}}},
		Contents:          history,
		Tools:             []llm.Tool{{FunctionDeclarations: []llm.FunctionDeclaration{searchToolDeclaration()}}},
		GenerationConfig:  &llm.GenerationConfig{Temperature: &temperature},
	}
}

func searchToolDeclaration() llm.FunctionDeclaration {
	return llm.FunctionDeclaration{
		Name:        searchToolName,
		Description: "Searches for direct flights between two airport codes for a specific date.",
		Parameters: &llm.Schema{
			Type: "object",
			Properties: map[string]*llm.Schema{
				"origin":      {Type: "string", Description: "The 3-letter IATA code for the origin city (e.g. 'DEL')."},
				"destination": {Type: "string", Description: "The 3-letter IATA code for the destination city (e.g. 'BOM')."},
				"date":        {Type: "string", Description: "The date of travel in 'YYYY-MM-DD' format."},
			},
			Required: []string{"origin", "destination", "date"},
		},
	}
}

func (a *Agent) dispatch(ctx context.Context, call llm.FunctionCall) string {
	if call.Name != searchToolName {
		return fmt.Sprintf("unknown tool %q", call.Name)
	}

	q := domain.SearchQuery{
		Origin:      argString(call.Args, "origin"),
		Destination: argString(call.Args, "destination"),
		Date:        argString(call.Args, "date"),
	}
	fmt.Fprintf(a.out, "\nAGENT ACTION: searching flights from %s to %s on %s...\n", q.Origin, q.Destination, q.Date)

	result, err := a.search.Search(ctx, q, a.rankOpts)
	if err != nil {
		return "I found no flights or there was an API error."
	}
	if len(result.Flights) == 0 {
		return "I found flights, but none were direct."
	}
	return Summarize(result, a.rankOpts)
}

// Summarize renders the recommendation set as the text block handed back to
// the model after a tool call.
func Summarize(result *domain.SearchResult, opts domain.RankOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d direct flights. Recommended (varied airlines, up to %d):\n", len(result.Flights), opts.MaxPicks)
	for _, f := range result.Recommended {
		fmt.Fprintf(&b, "- %s (%s): %s, Departs: %s\n", f.Airline, f.FlightNumber, f.PriceRaw, f.Departure)
	}

	if len(result.Alternatives) > 0 {
		fmt.Fprintf(&b, "\nAlso near-cheapest alternatives within %.0f%%:\n", opts.TolerancePct*100)
		for i, f := range result.Alternatives {
			if i >= maxAlternativesShown {
				break
			}
			fmt.Fprintf(&b, "- %s (%s): %s, Departs: %s\n", f.Airline, f.FlightNumber, f.PriceRaw, f.Departure)
		}
	}
	return b.String()
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}
