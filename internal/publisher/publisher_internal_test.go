package publisher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"kodbot/internal/domain"
	"kodbot/internal/metrics"
)

//nolint:gochecknoglobals // Test fixture.
var ashgabat = time.FixedZone("Asia/Ashgabat", 5*60*60)

type stubGenerator struct {
	text     string
	fallback bool
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ time.Time) (string, bool) {
	s.prompts = append(s.prompts, prompt)

	return s.text, s.fallback
}

type stubDeliverer struct {
	mu    sync.Mutex
	ok    bool
	texts []string
}

func (s *stubDeliverer) Deliver(_ context.Context, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)

	return s.ok
}

func defaultSchedule(t *testing.T) []domain.ScheduleEntry {
	t.Helper()

	var entries []domain.ScheduleEntry
	for _, clock := range []string{"09:00", "12:00", "16:00", "21:00"} {
		entry, err := domain.ParseScheduleEntry(clock)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries = append(entries, entry)
	}

	return entries
}

func newTestPublisher(t *testing.T, gen PostGenerator, del Deliverer, now time.Time) *Publisher {
	t.Helper()

	return New(gen, del, metrics.New("test"), Config{
		Location: ashgabat,
		Schedule: defaultSchedule(t),
		Pick:     func(int) int { return 0 },
		Now:      func() time.Time { return now },
	}, slog.Default())
}

func TestComposeGenerated(t *testing.T) {
	gen := &stubGenerator{text: "Python bilen ilkinji API-ňi ýaz."}
	now := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC) // 09:00 in Ashgabat.
	p := newTestPublisher(t, gen, &stubDeliverer{ok: true}, now)

	post := p.Compose(context.Background(), now)

	if post.DayPart != domain.Morning {
		t.Fatalf("expected morning, got %s", post.DayPart)
	}

	if post.Topic != "motivation" {
		t.Fatalf("unexpected topic: %q", post.Topic)
	}

	if post.Hashtags != "#ProgrammaYazmak #Kod #Öwrenmek #Python #API #IrdenkiHöwes" {
		t.Fatalf("unexpected hashtags: %q", post.Hashtags)
	}

	if !strings.Contains(gen.prompts[0], "09:00 (Asia/Ashgabat)") {
		t.Fatalf("expected prompt in deployment timezone")
	}
}

func TestComposeFallbackGetsHashtags(t *testing.T) {
	gen := &stubGenerator{text: "canned", fallback: true}
	now := time.Date(2025, 3, 10, 16, 0, 0, 0, ashgabat)
	p := newTestPublisher(t, gen, &stubDeliverer{ok: true}, now)

	post := p.Compose(context.Background(), now)

	if !post.Fallback {
		t.Fatalf("expected fallback post")
	}

	if post.Text() != "canned\n\n#ProgrammaYazmak #Kod #Öwrenmek #IkindiWagt" {
		t.Fatalf("unexpected text: %q", post.Text())
	}
}

func TestPublishScheduled(t *testing.T) {
	now := time.Date(2025, 3, 10, 21, 0, 0, 0, ashgabat)
	del := &stubDeliverer{ok: true}
	p := newTestPublisher(t, &stubGenerator{text: "post"}, del, now)

	if err := p.PublishScheduled(context.Background(), domain.ScheduleEntry{Hour: 21}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(del.texts) != 1 {
		t.Fatalf("expected one delivery, got %d", len(del.texts))
	}

	if want := "🌙 post\n\n#ProgrammaYazmak #Kod #Öwrenmek #AgşamDüşünje"; del.texts[0] != want {
		t.Fatalf("expected %q, got %q", want, del.texts[0])
	}
}

func TestPublishScheduledDeliveryFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, ashgabat)
	p := newTestPublisher(t, &stubGenerator{text: "post"}, &stubDeliverer{ok: false}, now)

	err := p.PublishScheduled(context.Background(), domain.ScheduleEntry{Hour: 12})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}

func TestPublishTest(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 30, 0, 0, ashgabat)
	del := &stubDeliverer{ok: true}
	p := newTestPublisher(t, &stubGenerator{text: "post"}, del, now)

	if !p.PublishTest(context.Background()) {
		t.Fatalf("expected test post to be delivered")
	}

	text := del.texts[0]
	for _, want := range []string{
		"🧪 *TEST HABARY*",
		"post\n\n#ProgrammaYazmak #Kod #Öwrenmek #GünortaÖwrenmek",
		"• 09:00 - Irden maslahat",
		"• 12:00 - Günortan mazmuny",
		"• 16:00 - Ikindi paýlaşymy",
		"• 21:00 - Agşam jemlemesi",
		"#TestBot #ProgrammaBot #Kod",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in test message:\n%s", want, text)
		}
	}
}

func TestPublishRandom(t *testing.T) {
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, ashgabat)
	del := &stubDeliverer{ok: true}
	p := newTestPublisher(t, &stubGenerator{text: "post"}, del, now)

	if !p.PublishRandom(context.Background()) {
		t.Fatalf("expected random post to be delivered")
	}

	if want := "🌅 post\n\n#ProgrammaYazmak #Kod #Öwrenmek #IrdenkiHöwes"; del.texts[0] != want {
		t.Fatalf("expected %q, got %q", want, del.texts[0])
	}
}

func TestPublishMessageBypassesGeneration(t *testing.T) {
	gen := &stubGenerator{text: "post"}
	del := &stubDeliverer{ok: true}
	p := newTestPublisher(t, gen, del, time.Now())

	if !p.PublishMessage(context.Background(), "Salam, kanal!") {
		t.Fatalf("expected message to be delivered")
	}

	if len(gen.prompts) != 0 {
		t.Fatalf("expected no generation")
	}

	if del.texts[0] != "Salam, kanal!" {
		t.Fatalf("unexpected text: %q", del.texts[0])
	}

	if p.PublishMessage(context.Background(), "   ") {
		t.Fatalf("expected empty message to be refused")
	}

	if len(del.texts) != 1 {
		t.Fatalf("expected empty message not to be delivered")
	}
}
