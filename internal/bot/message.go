package bot

import (
	"context"
	"strings"
	"unicode/utf8"
)

const telegramMessageMaxLength = 4096

func (b *Bot) prepareText(ctx context.Context, text string) string {
	normalized := strings.TrimSpace(strings.ToValidUTF8(text, "?"))
	if normalized != strings.TrimSpace(text) {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"target", b.target.String(),
			"originalLen", len(text),
			"normalizedLen", len(normalized))
	}

	if utf8.RuneCountInString(normalized) > telegramMessageMaxLength {
		truncated := truncateRunes(normalized, telegramMessageMaxLength)

		b.log.WarnContext(ctx, "Message text is too long and was truncated",
			"target", b.target.String(),
			"originalLen", len(normalized),
			"truncatedLen", len(truncated))

		normalized = truncated
	}

	return normalized
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
