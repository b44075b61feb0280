package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hyperifyio/qkbleads/internal/fetch"
	"github.com/hyperifyio/qkbleads/internal/parse"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// placeholderFields are sent empty on every search; the endpoint rejects
// requests that omit them.
var placeholderFields = []string{
	"nipt", "emriISubjektit", "emriTregtar", "formeLigjore", "pronesia",
	"dataNga", "dataNe", "numriId", "administrator", "aksionerOrtak", "adresa",
}

// QKB searches the national business registry through its public search form.
type QKB struct {
	URL    string
	Client *fetch.Client
}

func (s *QKB) Name() string { return "qkb" }

// Payload builds the form body for q.
func Payload(q Query) url.Values {
	v := url.Values{}
	v.Set("orderColumn", "0")
	v.Set("orderDir", "asc")
	for _, f := range placeholderFields {
		v.Set(f, "")
	}
	v.Set("sektoriIVeprimtarise", q.Keyword)
	v.Set("qarku", q.Region)
	v.Set("qyteti", q.City)
	return v
}

func (s *QKB) Search(ctx context.Context, q Query) ([]registry.RawRecord, error) {
	if strings.TrimSpace(s.URL) == "" {
		return nil, errors.New("missing qkb search url")
	}
	if s.Client == nil {
		return nil, errors.New("qkb provider has no client")
	}
	body, ct, err := s.Client.PostForm(ctx, s.URL, Payload(q))
	if err != nil {
		return nil, err
	}
	recs, err := parse.Parse(body, ct)
	if err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return recs, nil
}
