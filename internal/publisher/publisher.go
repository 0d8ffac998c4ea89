package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kodbot/internal/content"
	"kodbot/internal/domain"
	"kodbot/internal/metrics"

	"github.com/google/uuid"
)

var ErrDeliveryFailed = errors.New("delivery failed")

// PostGenerator turns a prompt into post text. It reports fallback when the
// text is canned content rather than generated.
type PostGenerator interface {
	Generate(ctx context.Context, prompt string, now time.Time) (text string, fallback bool)
}

type Deliverer interface {
	Deliver(ctx context.Context, text string) bool
}

type Config struct {
	Location *time.Location
	Themes   content.ThemeSet
	Language string
	Schedule []domain.ScheduleEntry
	// Pick and Now default to the process-wide random source and time.Now.
	Pick content.Picker
	Now  func() time.Time
}

// Publisher runs the pipeline: classify, select theme, build prompt,
// generate, derive hashtags, deliver.
type Publisher struct {
	generator PostGenerator
	deliverer Deliverer
	metrics   *metrics.Collector
	cfg       Config
	log       *slog.Logger
}

func New(
	generator PostGenerator,
	deliverer Deliverer,
	metrics *metrics.Collector,
	cfg Config,
	log *slog.Logger,
) *Publisher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Themes == nil {
		cfg.Themes = content.DefaultThemes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Publisher{
		generator: generator,
		deliverer: deliverer,
		metrics:   metrics,
		cfg:       cfg,
		log:       log,
	}
}

// Compose builds a post for now. The body is never empty.
func (p *Publisher) Compose(ctx context.Context, now time.Time) domain.Post {
	return p.compose(ctx, now, p.log)
}

func (p *Publisher) compose(ctx context.Context, now time.Time, log *slog.Logger) domain.Post {
	now = now.In(p.cfg.Location)
	dayPart := content.Classify(now, p.cfg.Location)
	topic := content.SelectTheme(dayPart, p.cfg.Themes, p.cfg.Pick)

	prompt := content.BuildPrompt(content.PromptInput{
		Now:      now,
		DayPart:  dayPart,
		Topic:    topic,
		Language: p.cfg.Language,
	})

	log.InfoContext(ctx, "Generating post",
		"dayPart", dayPart.String(),
		"topic", topic,
		"promptLength", len(prompt))

	body, fallback := p.generator.Generate(ctx, prompt, now)
	p.metrics.ObserveGeneration(fallback)

	return domain.Post{
		DayPart:  dayPart,
		Topic:    topic,
		Body:     body,
		Hashtags: content.FormatHashtags(content.DeriveHashtags(body, dayPart)),
		Fallback: fallback,
	}
}

// PublishScheduled composes and delivers the post for a scheduled slot.
func (p *Publisher) PublishScheduled(ctx context.Context, entry domain.ScheduleEntry) error {
	start := p.cfg.Now()
	log := p.log.With(
		"runID", uuid.NewString(),
		"slot", entry.Clock())

	log.InfoContext(ctx, "Scheduled post is started")

	post := p.compose(ctx, start, log)
	text := withEmoji(post)

	if !p.deliver(ctx, text) {
		log.ErrorContext(ctx, "Scheduled post is not delivered",
			"dayPart", post.DayPart.String(),
			"topic", post.Topic,
			"fallback", post.Fallback)

		return fmt.Errorf("slot %s: %w", entry.Clock(), ErrDeliveryFailed)
	}

	log.InfoContext(ctx, "Scheduled post is delivered",
		"dayPart", post.DayPart.String(),
		"topic", post.Topic,
		"fallback", post.Fallback,
		"clock", start.In(p.cfg.Location).Format("15:04"),
		"durationSeconds", time.Since(start).Seconds())

	return nil
}

// PublishTest delivers a generated post wrapped in a diagnostic banner with
// the daily schedule.
func (p *Publisher) PublishTest(ctx context.Context) bool {
	post := p.Compose(ctx, p.cfg.Now())

	return p.deliver(ctx, p.testMessage(post))
}

// PublishRandom delivers a generated post for the current time of day, shaped
// like a scheduled one.
func (p *Publisher) PublishRandom(ctx context.Context) bool {
	post := p.Compose(ctx, p.cfg.Now())

	return p.deliver(ctx, withEmoji(post))
}

// PublishMessage delivers operator text as is.
func (p *Publisher) PublishMessage(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		p.log.WarnContext(ctx, "Message is empty and will not be delivered")

		return false
	}

	return p.deliver(ctx, text)
}

func (p *Publisher) deliver(ctx context.Context, text string) bool {
	ok := p.deliverer.Deliver(ctx, text)
	p.metrics.ObserveDelivery(ok)

	return ok
}

func (p *Publisher) testMessage(post domain.Post) string {
	var b strings.Builder

	b.WriteString("🧪 *TEST HABARY* - Bot işleýär! 🎉\n\n")
	b.WriteString(post.Text())
	b.WriteString("\n\n---\n")
	b.WriteString(ScheduleSummary(p.cfg.Schedule))
	b.WriteString("\n\n#TestBot #ProgrammaBot #Kod")

	return b.String()
}

// ScheduleSummary lists the daily slots with the kind of post each one
// produces.
func ScheduleSummary(schedule []domain.ScheduleEntry) string {
	var b strings.Builder

	b.WriteString("📅 *Gündelik Programma:*")
	for _, entry := range schedule {
		fmt.Fprintf(&b, "\n• %s - %s", entry.Clock(), slotLabel(content.ClassifyHour(entry.Hour)))
	}

	return b.String()
}

func slotLabel(dayPart domain.DayPart) string {
	switch dayPart {
	case domain.Morning:
		return "Irden maslahat"
	case domain.Midday:
		return "Günortan mazmuny"
	case domain.Afternoon:
		return "Ikindi paýlaşymy"
	case domain.Evening:
		return "Agşam jemlemesi"
	default:
		return "Mazmun"
	}
}

func withEmoji(post domain.Post) string {
	return dayPartEmoji(post.DayPart) + " " + post.Text()
}

func dayPartEmoji(dayPart domain.DayPart) string {
	switch dayPart {
	case domain.Morning:
		return "🌅"
	case domain.Midday:
		return "☀️"
	case domain.Afternoon:
		return "🌤️"
	case domain.Evening:
		return "🌙"
	default:
		return "💻"
	}
}
