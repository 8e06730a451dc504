package notify

import (
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	keySubject = "registration.confirmation.subject"
	keyBody    = "registration.confirmation.body"

	dateLayout = "2006-01-02 15:04 MST"
)

var (
	supported = []language.Tag{language.English, language.BrazilianPortuguese, language.French}
	matcher   = language.NewMatcher(supported)
)

func init() {
	en := language.English
	message.SetString(en, keySubject, "Event Registration Confirmation")
	message.SetString(en, keyBody, "Hello %s,\n\nThank you for registering for the event %s on %s.\n")

	pt := language.BrazilianPortuguese
	message.SetString(pt, keySubject, "Confirmação de inscrição no evento")
	message.SetString(pt, keyBody, "Olá %s,\n\nObrigado por se inscrever no evento %s em %s.\n")

	fr := language.French
	message.SetString(fr, keySubject, "Confirmation d'inscription à l'événement")
	message.SetString(fr, keyBody, "Bonjour %s,\n\nMerci de vous être inscrit à l'événement %s le %s.\n")
}

// Localizer is the message-printer contract used for rendering.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

func localize(loc Localizer, key string, args ...any) string {
	return loc.Sprintf(key, args...)
}

// resolveTag returns the first supported language matching one of locales,
// falling back to English.
func resolveTag(locales ...string) language.Tag {
	for _, l := range locales {
		if l == "" {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		if _, idx, conf := matcher.Match(tag); conf != language.No {
			return supported[idx]
		}
	}
	return language.English
}

// Render builds the confirmation message for reg. The registrant's locale
// wins over defaultLocale.
func Render(reg model.Registration, event model.Event, from, defaultLocale string) Message {
	tag := resolveTag(reg.Locale, defaultLocale)
	var loc Localizer = message.NewPrinter(tag)
	return Message{
		From:    from,
		To:      reg.Email,
		Subject: localize(loc, keySubject),
		Body:    localize(loc, keyBody, reg.FullName, event.Title, event.EventDate.Format(dateLayout)),
		Locale:  tag.String(),
	}
}
