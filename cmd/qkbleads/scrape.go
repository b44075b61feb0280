package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/validate"
)

type scrapeFlags struct {
	city         string
	region       string
	keywords     []string
	keywordsFile string
	delay        string
	contacts     bool
	maxContacts  int
	dedup        bool
	jsonOut      bool
}

func newScrapeCmd(c *cli) *cobra.Command {
	f := &scrapeFlags{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape and write the exports",
		Long: `Searches the registry for every keyword in the chosen city, normalizes
the results and writes a CSV export. Without --keywords the default keyword
list is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScrape(ctx, cmd, c.cfg, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.city, "city", app.DefaultCity, "City to search in")
	fl.StringVar(&f.region, "region", "", "Optional region (qarku)")
	fl.StringSliceVarP(&f.keywords, "keywords", "k", nil, "Sector keywords, comma separated or repeated")
	fl.StringVar(&f.keywordsFile, "keywords.file", "", "File with one keyword per line")
	fl.StringVar(&f.delay, "delay", "0.4", "Pause between keywords, in seconds or as a duration")
	fl.BoolVar(&f.contacts, "contacts", false, "Fetch registry documents and extract contacts")
	fl.IntVar(&f.maxContacts, "max-contacts", app.DefaultMaxContacts, "Maximum document fetches per run")
	fl.BoolVar(&f.dedup, "dedup", true, "Also write the export deduplicated by identifier")
	fl.BoolVar(&f.jsonOut, "json", false, "Print the run summary as JSON")
	return cmd
}

// buildRequest starts from the configured run defaults and applies the
// flags that were set explicitly.
func buildRequest(cmd *cobra.Command, def app.RunRequest, f *scrapeFlags) (app.RunRequest, error) {
	req := def
	set := cmd.Flags().Changed
	if set("city") {
		req.City = f.city
	}
	if set("region") {
		req.Region = f.region
	}
	if set("keywords") {
		req.Keywords = f.keywords
	}
	if set("keywords.file") {
		b, err := os.ReadFile(f.keywordsFile)
		if err != nil {
			return req, fmt.Errorf("read keywords: %w", err)
		}
		req.Keywords = append(req.Keywords, app.ParseKeywords(string(b))...)
	}
	req.Keywords = app.KeywordsOrDefault(req.Keywords)
	if set("delay") {
		d, err := app.ParseDelay(f.delay)
		if err != nil {
			return req, fmt.Errorf("--delay: %w", err)
		}
		req.Delay = d
	}
	if set("contacts") {
		req.Contacts = f.contacts
	}
	if set("max-contacts") {
		req.MaxContacts = f.maxContacts
	}
	if set("dedup") {
		req.Dedup = f.dedup
	}

	form := validate.ScrapeForm{
		City:        req.City,
		Region:      req.Region,
		Keywords:    req.Keywords,
		Delay:       req.Delay.Seconds(),
		Contacts:    req.Contacts,
		MaxContacts: req.MaxContacts,
		Dedup:       req.Dedup,
	}
	if err := validate.Validate(form); err != nil {
		return req, err
	}
	return req, nil
}

func runScrape(ctx context.Context, cmd *cobra.Command, cfg app.Config, f *scrapeFlags) error {
	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, a.DefaultRequest(), f)
	if err != nil {
		return err
	}
	rep, err := a.Scrape(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		summary := struct {
			app.RunStats
			Path      string   `json:"path"`
			DedupPath string   `json:"dedup_path,omitempty"`
			Extra     []string `json:"extra,omitempty"`
		}{rep.Stats, rep.Path, rep.DedupPath, rep.Extra}
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintf(out, "rows: %d (failed keywords: %d)\n", rep.Result.Len(), rep.Stats.FailedKeywords)
	fmt.Fprintf(out, "export: %s\n", rep.Path)
	if rep.Deduped != nil {
		fmt.Fprintf(out, "dedup: %s (%d rows)\n", rep.DedupPath, rep.Deduped.Len())
	}
	for _, p := range rep.Extra {
		fmt.Fprintf(out, "extra: %s\n", p)
	}
	return nil
}
