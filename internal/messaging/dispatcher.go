package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Dispatcher defaults
const (
	DefaultPauseBetween = 2 * time.Second
	DefaultMaxMentions  = 50
	DefaultConcurrency  = 4
)

// DispatcherConfig controls pacing and mentions
type DispatcherConfig struct {
	// PauseBetween separates consecutive messages to the same destination
	PauseBetween time.Duration
	DelayMessage int
	// MentionsEnabled tags every member of the groups named in MentionGroups
	MentionsEnabled bool
	MentionGroups   []string
	// MaxMentions truncates the member list; 0 keeps everyone
	MaxMentions int
	// Concurrency bounds how many destinations are served at once
	Concurrency int
}

// Dispatcher fans messages out to many destinations. Destinations are
// served in parallel; messages to one destination go out in order.
type Dispatcher struct {
	sender       Sender
	participants ParticipantSource
	observer     Observer
	cfg          DispatcherConfig
	logger       *slog.Logger
}

// NewDispatcher creates a dispatcher. participants and observer may be nil.
func NewDispatcher(sender Sender, participants ParticipantSource, observer Observer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.PauseBetween < 0 {
		cfg.PauseBetween = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:       sender,
		participants: participants,
		observer:     observer,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dispatcher")),
	}
}

// Dispatch sends every non-blank message to every destination and returns
// one result per destination, ordered by destination name. A failure at
// one destination never affects the others.
func (d *Dispatcher) Dispatch(ctx context.Context, destinations []Destination, messages []string) []GroupResult {
	ordered := make([]Destination, len(destinations))
	copy(ordered, destinations)
	sortDestinations(ordered)

	results := make([]GroupResult, len(ordered))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, dest := range ordered {
		g.Go(func() error {
			results[i] = d.dispatchOne(ctx, dest, messages)
			return nil
		})
	}
	_ = g.Wait()

	d.logger.InfoContext(ctx, "dispatch finished",
		slog.Int("destinations", len(ordered)),
		slog.Int("messages", len(messages)))
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, dest Destination, messages []string) GroupResult {
	result := GroupResult{Group: dest.Name, Results: make([]MessageResult, 0, len(messages))}
	logger := d.logger.With(slog.String("group", dest.Name))

	opts := SendOptions{DelayMessage: d.cfg.DelayMessage}
	if d.mentions(dest.Name) {
		phones, err := d.participants.GroupParticipants(ctx, dest.ID)
		if err != nil {
			result.Warning = "participants unavailable, sending without mentions: " + err.Error()
			logger.WarnContext(ctx, "participant lookup failed", slog.String("error", err.Error()))
		} else {
			if d.cfg.MaxMentions > 0 && len(phones) > d.cfg.MaxMentions {
				phones = phones[:d.cfg.MaxMentions]
			}
			opts.Mentions = phones
			result.Mentioned = true
			result.MentionCount = len(phones)
		}
	}

	var pacer *rate.Limiter
	if d.cfg.PauseBetween > 0 {
		pacer = rate.NewLimiter(rate.Every(d.cfg.PauseBetween), 1)
	}

	for i, msg := range messages {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		order := i + 1

		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				result.Results = append(result.Results, MessageResult{Order: order, Error: err.Error()})
				d.failed(ctx, dest.Name)
				continue
			}
		}

		resp, err := d.sender.Send(ctx, dest.ID, msg, opts)
		if err != nil {
			mr := MessageResult{Order: order, Error: err.Error()}
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				mr.StatusCode = httpErr.StatusCode
				mr.Error = httpErr.Body
			}
			result.Results = append(result.Results, mr)
			d.failed(ctx, dest.Name)
			logger.WarnContext(ctx, "message failed", slog.Int("order", order), slog.String("error", err.Error()))
			continue
		}

		result.Results = append(result.Results, MessageResult{Order: order, OK: true, Response: &resp})
		if d.observer != nil {
			d.observer.MessageSent(ctx, dest.Name)
		}
	}
	return result
}

func (d *Dispatcher) mentions(group string) bool {
	if !d.cfg.MentionsEnabled || d.participants == nil {
		return false
	}
	for _, name := range d.cfg.MentionGroups {
		if name == group {
			return true
		}
	}
	return false
}

func (d *Dispatcher) failed(ctx context.Context, group string) {
	if d.observer != nil {
		d.observer.MessageFailed(ctx, group)
	}
}

func sortDestinations(dests []Destination) {
	sort.SliceStable(dests, func(i, j int) bool { return dests[i].Name < dests[j].Name })
}
