package page

import (
	"fmt"
	"strings"

	"github.com/folio-dev/blogrender/models"
)

var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"es": {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	"pt": {"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
}

// FormatDate renders the post date as a long localized date
// ("March 1, 2025", "1 de marzo de 2025"). Unparsed dates are shown as written.
func FormatDate(post *models.Post, locale string) string {
	if post.PublishedAt.IsZero() {
		return post.Date
	}
	t := post.PublishedAt
	lang := primary(locale)
	months, ok := monthNames[lang]
	if !ok {
		lang, months = "en", monthNames["en"]
	}
	month := months[t.Month()-1]
	if lang == "en" {
		return fmt.Sprintf("%s %d, %d", month, t.Day(), t.Year())
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), month, t.Year())
}

func primary(locale string) string {
	p, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(p)
}
