package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/qkbleads/internal/app"
)

// cli holds flag values shared by every command and the resolved config.
type cli struct {
	configPath string
	envFiles   []string
	verbose    bool
	logFile    string

	searchURL   string
	docURL      string
	searchFile  string
	exportDir   string
	exportXLSX  bool
	exportPDF   bool
	cacheDir    string
	cacheMaxAge string
	cacheClear  bool
	cacheStrict bool
	cacheBytes  int64
	cacheCount  int

	cfg       app.Config
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "qkbleads",
		Short:         "Collect business leads from the Albanian business registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logCloser != nil {
				_ = c.logCloser.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	pf.StringSliceVar(&c.envFiles, "env", []string{".env"}, "Dotenv files to load; later files override earlier ones")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&c.logFile, "log.file", "", "Also write JSON logs to this rotating file")

	pf.StringVar(&c.searchURL, "search.url", app.DefaultSearchURL, "Registry search endpoint")
	pf.StringVar(&c.docURL, "doc.url", app.DefaultDocURL, "Registry document endpoint")
	pf.StringVar(&c.searchFile, "search.file", "", "Saved search response used instead of the live registry")
	pf.StringVar(&c.exportDir, "export.dir", app.DefaultExportDir, "Directory for exports")
	pf.BoolVar(&c.exportXLSX, "export.xlsx", false, "Also write an XLSX copy of the export")
	pf.BoolVar(&c.exportPDF, "export.pdf", false, "Also write a PDF summary of the run")
	pf.StringVar(&c.cacheDir, "cache.dir", "", "Directory for cached registry documents; empty disables the cache")
	pf.StringVar(&c.cacheMaxAge, "cache.maxAge", "0", "Max age of cached documents (e.g. 24h); 0 keeps them forever")
	pf.BoolVar(&c.cacheClear, "cache.clear", false, "Clear the document cache before running")
	pf.BoolVar(&c.cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	pf.Int64Var(&c.cacheBytes, "cache.maxBytes", 0, "Evict least recently used documents above this total size; 0 disables")
	pf.IntVar(&c.cacheCount, "cache.maxCount", 0, "Evict least recently used documents above this count; 0 disables")

	root.AddCommand(newScrapeCmd(c), newServeCmd(c), newVersionCmd())
	return root
}

// setup resolves configuration as defaults, config file, environment, then
// explicitly set flags, and configures logging.
func (c *cli) setup(cmd *cobra.Command) error {
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return err
	}
	cfg := app.DefaultConfig()
	if strings.TrimSpace(c.configPath) != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", c.configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	if err := c.applyFlags(cmd, &cfg); err != nil {
		return err
	}
	closer, err := app.SetupLogging(cfg.Verbose, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	c.logCloser = closer
	c.cfg = cfg
	return nil
}

func (c *cli) applyFlags(cmd *cobra.Command, cfg *app.Config) error {
	set := cmd.Flags().Changed
	if set("verbose") {
		cfg.Verbose = c.verbose
	}
	if set("log.file") {
		cfg.LogFile = c.logFile
	}
	if set("search.url") {
		cfg.SearchURL = c.searchURL
	}
	if set("doc.url") {
		cfg.DocURL = c.docURL
	}
	if set("search.file") {
		cfg.FileSearchPath = c.searchFile
	}
	if set("export.dir") {
		cfg.ExportDir = c.exportDir
	}
	if set("export.xlsx") {
		cfg.ExportXLSX = c.exportXLSX
	}
	if set("export.pdf") {
		cfg.ExportPDF = c.exportPDF
	}
	if set("cache.dir") {
		cfg.CacheDir = c.cacheDir
	}
	if set("cache.maxAge") {
		d, err := app.ParseDelay(c.cacheMaxAge)
		if err != nil {
			return fmt.Errorf("--cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	if set("cache.clear") {
		cfg.CacheClear = c.cacheClear
	}
	if set("cache.strictPerms") {
		cfg.CacheStrictPerms = c.cacheStrict
	}
	if set("cache.maxBytes") {
		cfg.CacheMaxBytes = c.cacheBytes
	}
	if set("cache.maxCount") {
		cfg.CacheMaxCount = c.cacheCount
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.VersionString())
		},
	}
}
