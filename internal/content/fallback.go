package content

import (
	"kodbot/internal/markdown"
	"time"
)

//nolint:gochecknoglobals // Static configuration data.
var fallbackMessages = []func(now time.Time) string{
	func(now time.Time) string {
		return "💡 Şu gün, " + now.Format("02 January") + " senesinde programma ýazmakda näme öwrendiň?\n\n" +
			"Her gün kiçi ädim, uly üstünlikleriň açary! " +
			"Kod ýazmagyň iň owadan tarapy elmydama täze zatlary öwrenmekdir 🚀"
	},
	func(now time.Time) string {
		return "🤔 Häzir haýsy tehnologiýa bilen işleýärsiň?\n\n" +
			"Şu gün, " + now.Format("02 January") + ", kod gözden geçirýän wagtym şeýle pikir etdim: " +
			"iň gowy kod diňe işleýän kod däl, beýlekileriň hem aňsat düşünip bilýän kody! 📝"
	},
	func(now time.Time) string {
		return "⚡ Sagat " + now.Format("15:04") + ", günüň kod ýazmagyna güýjüň nähili?\n\n" +
			"Käte iň gowy çözgütler kompýuteri ýapanyňdan soň aklyňa gelýär. " +
			"Kelle bulaşyk bolsa, gysga gezelenç jadyly bolup biler! 🚶"
	},
}

// Fallback returns one of the canned posts for now, stripped of legacy
// Markdown delimiters. The result is never empty.
func Fallback(now time.Time, pick Picker) string {
	message := fallbackMessages[orDefault(pick)(len(fallbackMessages))](now)

	return markdown.StripLegacy(message)
}
