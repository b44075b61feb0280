package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperifyio/qkbleads/internal/app"
	"github.com/hyperifyio/qkbleads/internal/normalize"
	"github.com/hyperifyio/qkbleads/internal/registry"
	"github.com/hyperifyio/qkbleads/internal/search"
)

func main() {
	cfg := app.DefaultConfig()
	app.ApplyEnvOverrides(&cfg)
	kw := "gaming"
	if len(os.Args) > 1 {
		kw = os.Args[1]
	}
	prov := app.NewProvider(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SearchTimeout+5*time.Second)
	defer cancel()
	recs, err := prov.Search(ctx, search.Query{Keyword: kw, City: cfg.City, Region: cfg.Region})
	fmt.Println("provider:", prov.Name(), "err:", err)
	for i, r := range normalize.Normalize(recs, kw) {
		if r.NIPT == nil {
			continue
		}
		fmt.Printf("%d. %s - %s [%s] %s\n", i+1, registry.Str(r.NIPT), registry.Str(r.Name), registry.Str(r.Sector), strings.Join(r.Owners, "; "))
	}
}
