// Package generation is the single entry point for producing a response: it picks the
// provider, assembles the conversation, dispatches the call, drives streamed output
// and reports progress, while allowing at most one generation per Status at a time.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/middleware"
	"github.com/sweetpotato0/chatroute/normalize"
	"github.com/sweetpotato0/chatroute/pkg/logging"
	"github.com/sweetpotato0/chatroute/pkg/telemetry"
	"github.com/sweetpotato0/chatroute/prompt"
	"github.com/sweetpotato0/chatroute/provider"
	"github.com/sweetpotato0/chatroute/stream"
	"github.com/sweetpotato0/chatroute/websearch"
)

// DefaultLanguage needs no language instruction.
const DefaultLanguage = "English"

// MetadataPriming marks the synthetic pair carrying the system prompt.
const MetadataPriming = "priming"

// Outcome tells a completed response from a cancelled one.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
)

func (o Outcome) String() string {
	if o == OutcomeCancelled {
		return "cancelled"
	}
	return "completed"
}

// Request describes one generation.
type Request struct {
	// Pairs is the stored conversation, oldest first.
	Pairs []*message.Pair
	// Query is appended as a final user message when not empty.
	Query    string
	Selector provider.Selector
	// SystemPrompt overrides the preset system prompt.
	SystemPrompt string
	WebSearch    websearch.Mode
	// Options are the per-call options, the highest layer of the merge.
	Options provider.Options
	// Language adds a respond-in instruction to the query unless it is English.
	Language string
	// OnUpdate receives the current normalized text zero or more times; its last
	// value equals Result.Text.
	OnUpdate func(text string)
	// OnMetrics receives throughput after every update and once at the end.
	OnMetrics func(Metrics)
}

// Result is a finished generation. A cancelled generation carries the last snapshot.
type Result struct {
	Text     string
	Provider string
	Outcome  Outcome
	Metrics  Metrics
}

// Cancelled reports whether generation stopped early.
func (r *Result) Cancelled() bool { return r.Outcome == OutcomeCancelled }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStatus sets the admission gate and stop flag.
func WithStatus(s *Status) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.status = s
		}
	}
}

// WithNormalizer sets the response rule table.
func WithNormalizer(t *normalize.Table) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.normalizer = t
		}
	}
}

// WithFetcher sets the web-search augmentation source.
func WithFetcher(f websearch.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = f
	}
}

// WithTokenCounter sets the counter used for truncation.
func WithTokenCounter(c message.TokenCounter) Option {
	return func(o *Orchestrator) {
		o.counter = c
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMarker sets the cursor marker shown on streamed updates. An empty marker
// disables it.
func WithMarker(marker string) Option {
	return func(o *Orchestrator) {
		o.marker = marker
	}
}

// WithMiddleware appends middlewares around the provider dispatch.
func WithMiddleware(ms ...middleware.Middleware) Option {
	return func(o *Orchestrator) {
		for _, m := range ms {
			o.chain.Add(m)
		}
	}
}

// Orchestrator runs generations against a provider registry.
type Orchestrator struct {
	registry   *provider.Registry
	status     *Status
	normalizer *normalize.Table
	fetcher    websearch.Fetcher
	counter    message.TokenCounter
	now        func() time.Time
	logger     *slog.Logger
	marker     string
	chain      *middleware.Chain
}

// New creates an orchestrator over registry.
func New(registry *provider.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   registry,
		status:     DefaultStatus(),
		normalizer: normalize.DefaultTable(),
		counter:    message.CharEstimator{},
		now:        time.Now,
		logger:     logging.WithComponent("generation"),
		marker:     stream.DefaultMarker,
		chain:      middleware.NewChain(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Status returns the gate shared with the caller.
func (o *Orchestrator) Status() *Status { return o.status }

// Stop requests the running generation to stop.
func (o *Orchestrator) Stop() { o.status.RequestStop() }

// Generate runs one generation. Failures are returned as *Error; a cancelled
// generation is not a failure. A call made while another generation holds the gate
// fails with ErrGenerationInProgress without invoking any provider.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	res, err := o.generate(ctx, req)
	if err != nil {
		o.logFailure(req, err)
		return nil, err
	}
	o.logger.Info("generation finished",
		"provider", res.Provider,
		"outcome", res.Outcome.String(),
		"metrics", res.Metrics.String(),
	)
	return res, nil
}

// GenerateSync runs a generation without progress updates and returns the final text,
// draining streamed output internally.
func (o *Orchestrator) GenerateSync(ctx context.Context, req Request) (string, error) {
	req.OnUpdate = nil
	req.OnMetrics = nil
	res, err := o.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (o *Orchestrator) logFailure(req Request, err error) {
	kind, _ := KindOf(err)
	level := slog.LevelError
	switch kind {
	case KindInProgress, KindUnknownProvider, KindRejected:
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "generation failed",
		"selector", req.Selector.String(),
		"kind", kind.String(),
		"error", err,
	)
}

func (o *Orchestrator) generate(ctx context.Context, req Request) (res *Result, err error) {
	info, err := o.registry.Select(req.Selector)
	if err != nil {
		return nil, &Error{Kind: KindUnknownProvider, Provider: req.Selector.String(), Err: err}
	}

	if !o.status.acquire() {
		return nil, &Error{Kind: KindInProgress, Provider: info.ID, Err: errorspkg.ErrGenerationInProgress}
	}
	defer o.status.release()

	ctx, span := telemetry.Start(ctx, "generation.Generate",
		telemetry.AttrProvider.String(info.ID),
		telemetry.AttrStream.Bool(info.Stream),
	)
	defer func() { telemetry.End(span, err) }()

	opts := info.MergeOptions(req.Options)
	msgs := o.buildMessages(ctx, info, req)
	msgs = message.Truncate(msgs, info.Budget(), o.counter)

	mctx := middleware.NewContext(ctx)
	mctx.Provider = info.ID
	mctx.Messages = msgs
	mctx.Options = opts

	// Throughput covers the dispatch only, not the web search.
	start := o.now()
	var out *Result
	err = o.chain.Execute(mctx, func(c *middleware.Context) error {
		r, err := o.dispatch(c.Context(), info, c.Messages, c.Options, req, start)
		if err != nil {
			return err
		}
		c.Response = r.Text
		out = r
		return nil
	})
	if err != nil {
		return nil, asError(err, info.ID)
	}
	if out == nil {
		// A middleware answered without dispatching.
		out = o.result(info, start, mctx.Response, OutcomeCompleted)
	}

	span.SetAttributes(
		telemetry.AttrOutcome.String(out.Outcome.String()),
		telemetry.AttrChars.Int(out.Metrics.Chars),
	)
	if req.OnMetrics != nil {
		req.OnMetrics(out.Metrics)
	}
	return out, nil
}

// buildMessages assembles the outgoing conversation: the priming pair, the stored
// pairs, the query, then the language instruction and web results on the final user
// message.
func (o *Orchestrator) buildMessages(ctx context.Context, info provider.Info, req Request) []message.Message {
	search := req.WebSearch.Applies(info.SupportsNativeWebSearch())

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" && req.Selector.Preset != nil {
		systemPrompt = req.Selector.Preset.SystemPrompt
	}
	if search {
		systemPrompt = joinPrompt(systemPrompt, websearch.SystemPrompt)
	}

	pairs := make([]*message.Pair, 0, len(req.Pairs)+1)
	if systemPrompt != "" {
		pairs = append(pairs, message.NewPair(systemPrompt, websearch.SystemResponse,
			message.Hidden(), message.WithMetadata(MetadataPriming, true)))
	}
	pairs = append(pairs, req.Pairs...)
	msgs := message.BuildContext(pairs, req.Query)

	last := len(msgs) - 1
	if last < 0 || msgs[last].Role() != message.RoleUser {
		return msgs
	}

	query := msgs[last].Content()
	b := prompt.NewBuilder()
	if req.Language != "" && !strings.EqualFold(req.Language, DefaultLanguage) {
		if err := b.AddTemplate(prompt.LanguageInstruction, map[string]any{"Language": req.Language}); err != nil {
			o.logger.Warn("language instruction dropped", "language", req.Language, "error", err)
		}
	}
	b.Add(query)
	if search && o.fetcher != nil {
		augmentation, err := o.fetcher.Fetch(ctx, query)
		if err != nil {
			o.logger.Warn("web search failed, continuing without results", "provider", info.ID, "error", err)
		} else {
			b.Add(augmentation)
		}
	}
	msgs[last] = msgs[last].WithContent(b.Build())
	return msgs
}

func joinPrompt(prompt, extra string) string {
	if prompt == "" {
		return extra
	}
	return prompt + "\n\n" + extra
}

// snapshot is the last text a custom-stream provider reported. Providers may call
// StreamUpdate from their own goroutine.
type snapshot struct {
	mu   sync.Mutex
	text string
	seen bool
}

func (s *snapshot) set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.seen = text, true
}

func (s *snapshot) get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.seen
}

func (o *Orchestrator) dispatch(ctx context.Context, info provider.Info, msgs []message.Message, opts provider.Options, req Request, start time.Time) (*Result, error) {
	var last snapshot
	cb := provider.Callbacks{
		StreamUpdate: func(text string) {
			text = o.normalizer.Normalize(text, info.Name)
			last.set(text)
			o.report(req, start, text, text)
		},
	}

	out, err := o.invoke(ctx, info, msgs, opts, cb)
	if err != nil {
		// A raised stop flag alone is not a cancellation.
		text, seen := last.get()
		if ctx.Err() != nil || (info.CustomStream && seen && o.status.Stopped()) {
			return o.result(info, start, text, OutcomeCancelled), nil
		}
		return nil, failure(info, err)
	}

	switch out.Kind() {
	case provider.KindText:
		text := o.normalizer.Normalize(out.Text(), info.Name)
		o.report(req, start, text, text)
		return o.result(info, start, text, OutcomeCompleted), nil
	case provider.KindFragments:
		if !info.Stream {
			return nil, malformed(info, "a non-streaming provider returned fragments")
		}
		return o.aggregate(ctx, info, out, req, start)
	case provider.KindHandled:
		if !info.CustomStream {
			return nil, malformed(info, "a provider without a custom stream returned a handled result")
		}
		text, _ := last.get()
		outcome := OutcomeCompleted
		if o.interrupted(ctx) {
			outcome = OutcomeCancelled
		}
		return o.result(info, start, text, outcome), nil
	}
	return nil, malformed(info, fmt.Sprintf("provider returned a %s result", out.Kind()))
}

// failure classifies a provider error; undecodable output is malformed, anything
// else is a transport failure.
func failure(info provider.Info, err error) *Error {
	kind := KindTransport
	if errors.Is(err, errorspkg.ErrMalformedResponse) {
		kind = KindMalformed
	}
	return &Error{Kind: kind, Provider: info.ID, Err: err}
}

func malformed(info provider.Info, reason string) *Error {
	return &Error{Kind: KindMalformed, Provider: info.ID, Err: errors.New(reason)}
}

// invoke calls the provider, turning a panic into an error.
func (o *Orchestrator) invoke(ctx context.Context, info provider.Info, msgs []message.Message, opts provider.Options, cb provider.Callbacks) (res provider.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", info.ID, r)
		}
	}()
	return info.Provider.Invoke(ctx, msgs, opts, cb)
}

func (o *Orchestrator) aggregate(ctx context.Context, info provider.Info, out provider.Result, req Request, start time.Time) (res *Result, err error) {
	marker := ""
	if req.OnUpdate != nil {
		marker = o.marker
	}
	agg := stream.New(out.Fragments(),
		stream.WithReplace(info.ReplaceFragments),
		stream.WithMarker(marker),
		stream.WithProbe(o.status),
	)

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &Error{Kind: KindTransport, Provider: info.ID, Err: fmt.Errorf("stream panicked: %v", r)}
		}
	}()

	_, err = agg.Drive(ctx, func(snapshot string) {
		body, suffix := snapshot, ""
		if marker != "" {
			if trimmed, ok := strings.CutSuffix(snapshot, marker); ok {
				body, suffix = trimmed, marker
			}
		}
		text := o.normalizer.Normalize(body, info.Name)
		o.report(req, start, text+suffix, text)
	})
	if err != nil {
		return nil, failure(info, err)
	}

	outcome := OutcomeCompleted
	if agg.State() == stream.StateCancelled {
		outcome = OutcomeCancelled
	}
	return o.result(info, start, o.normalizer.Normalize(agg.Text(), info.Name), outcome), nil
}

func (o *Orchestrator) interrupted(ctx context.Context) bool {
	return ctx.Err() != nil || o.status.Stopped()
}

// report delivers one update; display may carry the cursor marker, text does not.
func (o *Orchestrator) report(req Request, start time.Time, display, text string) {
	if req.OnUpdate != nil {
		req.OnUpdate(display)
	}
	if req.OnMetrics != nil {
		req.OnMetrics(newMetrics(text, o.now().Sub(start)))
	}
}

func (o *Orchestrator) result(info provider.Info, start time.Time, text string, outcome Outcome) *Result {
	return &Result{
		Text:     text,
		Provider: info.ID,
		Outcome:  outcome,
		Metrics:  newMetrics(text, o.now().Sub(start)),
	}
}
