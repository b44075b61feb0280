package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/validate"
)

// Form field names.
const (
	fieldCity        = "city"
	fieldRegion      = "qarku"
	fieldKeywords    = "keywords"
	fieldDelay       = "delay"
	fieldContacts    = "contacts"
	fieldMaxContacts = "max_contacts"
	fieldDedup       = "dedup"
)

// parseScrapeForm reads the submitted form. Empty fields fall back to def;
// an empty keyword box means the default keyword list.
func parseScrapeForm(r *http.Request, def app.RunRequest) (app.RunRequest, error) {
	if err := r.ParseForm(); err != nil {
		return app.RunRequest{}, &validate.Error{Message: "form could not be read"}
	}
	get := func(k string) string { return strings.TrimSpace(r.PostForm.Get(k)) }

	form := validate.ScrapeForm{
		City:        get(fieldCity),
		Region:      get(fieldRegion),
		Keywords:    app.ParseKeywords(r.PostForm.Get(fieldKeywords)),
		Delay:       def.Delay.Seconds(),
		Contacts:    yesNo(get(fieldContacts), def.Contacts),
		MaxContacts: def.MaxContacts,
		Dedup:       yesNo(get(fieldDedup), def.Dedup),
	}
	if form.City == "" {
		form.City = def.City
	}
	if len(form.Keywords) == 0 {
		form.Keywords = app.KeywordsOrDefault(def.Keywords)
	}
	if s := get(fieldDelay); s != "" {
		d, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return app.RunRequest{}, &validate.Error{Field: "delay", Message: "delay must be a number"}
		}
		form.Delay = d
	}
	if s := get(fieldMaxContacts); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return app.RunRequest{}, &validate.Error{Field: "max_contacts", Message: "max_contacts must be a whole number"}
		}
		form.MaxContacts = n
	}
	if err := validate.Validate(form); err != nil {
		return app.RunRequest{}, err
	}
	return app.RunRequest{
		Keywords:    form.Keywords,
		City:        form.City,
		Region:      form.Region,
		Delay:       time.Duration(form.Delay * float64(time.Second)),
		Contacts:    form.Contacts,
		MaxContacts: form.MaxContacts,
		Dedup:       form.Dedup,
	}, nil
}

func yesNo(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "yes", "po", "true", "1", "on":
		return true
	case "no", "jo", "false", "0", "off":
		return false
	}
	return def
}
