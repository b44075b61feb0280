package contact

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/qkbleads/internal/cache"
	"github.com/hyperifyio/qkbleads/internal/fetch"
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// DocType selects the short subject extract.
const DocType = "simple"

var errNoPayload = errors.New("document response has no payload")

// Fetcher downloads the subject document for an identifier and extracts
// contact details from it.
type Fetcher struct {
	Client    *fetch.Client
	URL       string
	Extractor Extractor

	// Cache, when set, keeps raw document responses between runs.
	Cache       *cache.DocCache
	CacheMaxAge time.Duration
}

// Lookup fetches and mines the document for nipt. Any failure along the way
// is logged at debug level and yields an empty Contact.
func (f *Fetcher) Lookup(ctx context.Context, nipt string) registry.Contact {
	nipt = strings.TrimSpace(nipt)
	if nipt == "" {
		return registry.Contact{}
	}
	doc, err := f.Document(ctx, nipt)
	if err != nil {
		log.Debug().Err(err).Str("nipt", nipt).Msg("contact document unavailable")
		return registry.Contact{}
	}
	c := f.Extractor.Extract(doc)
	if !c.Found() {
		log.Debug().Str("nipt", nipt).Int("bytes", len(doc)).Msg("no contact details in document")
	}
	return c
}

// Document returns the decoded document bytes for nipt.
func (f *Fetcher) Document(ctx context.Context, nipt string) ([]byte, error) {
	key := "doc:" + nipt
	if f.Cache != nil {
		if body, _, ok := f.Cache.Get(ctx, key, f.CacheMaxAge); ok {
			if doc, err := DecodeDocument(body); err == nil {
				return doc, nil
			}
		}
	}
	if f.Client == nil {
		return nil, errors.New("contact fetcher has no client")
	}
	form := url.Values{}
	form.Set("nipt", nipt)
	form.Set("docType", DocType)
	body, ct, err := f.Client.PostForm(ctx, f.URL, form)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	doc, err := DecodeDocument(body)
	if err != nil {
		return nil, fmt.Errorf("decode document (content-type %q): %w", ct, err)
	}
	if f.Cache != nil {
		if err := f.Cache.Save(ctx, key, ct, body); err != nil {
			log.Debug().Err(err).Str("nipt", nipt).Msg("document cache save failed")
		}
	}
	return doc, nil
}

// DecodeDocument reads a document response: a JSON object whose "data"
// field holds the base64 encoded file. Servers label the body
// inconsistently, so it is decoded as JSON whatever the content type.
func DecodeDocument(body []byte) ([]byte, error) {
	body = bytes.TrimPrefix(bytes.TrimSpace(body), []byte("\xef\xbb\xbf"))
	var resp struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	data := strings.Join(strings.Fields(resp.Data), "")
	if data == "" {
		return nil, errNoPayload
	}
	doc, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		doc, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
	}
	if len(doc) == 0 {
		return nil, errNoPayload
	}
	return doc, nil
}
