package app

import "time"

// Defaults used when neither flags, env nor a config file set a value.
const (
	DefaultSearchURL         = "https://format.qkb.gov.al/kerko-per-subjekt/"
	DefaultDocURL            = "https://format.qkb.gov.al/wp-content/themes/twentytwentyfive-child/modules/search/national-registry/subject/search-for-subject-get-documents.php"
	DefaultOrigin            = "https://format.qkb.gov.al"
	DefaultUserAgent         = "Mozilla/5.0 (compatible; QKB-Scraper/1.0; +https://github.com/hyperifyio/qkbleads)"
	DefaultExportDir         = "exports"
	DefaultCity              = "Tiranë"
	DefaultDelay             = 400 * time.Millisecond
	DefaultMaxContacts       = 50
	DefaultConnectTimeout    = 10 * time.Second
	DefaultSearchTimeout     = 40 * time.Second
	DefaultDocTimeout        = 60 * time.Second
	DefaultRetryAttempts     = 6
	DefaultBackoff           = 600 * time.Millisecond
	DefaultKeepAliveInterval = 10 * time.Minute
	DefaultListenAddr        = ":8000"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Upstream
	SearchURL string
	DocURL    string
	UserAgent string

	// Run defaults, used when a request leaves them unset
	City        string
	Region      string
	Keywords    []string
	Delay       time.Duration
	Contacts    bool
	MaxContacts int
	Dedup       bool

	// Transport
	ConnectTimeout time.Duration
	SearchTimeout  time.Duration
	DocTimeout     time.Duration
	RetryAttempts  int
	Backoff        time.Duration

	// Output
	ExportDir  string
	ExportXLSX bool
	ExportPDF  bool

	// Document cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	// CacheMaxBytes and CacheMaxCount bound the document cache; least
	// recently used entries are evicted at startup. Zero disables a bound.
	CacheMaxBytes int64
	CacheMaxCount int

	// Serving
	ListenAddr        string
	KeepAliveURL      string
	KeepAliveInterval time.Duration

	// Offline search fixture used instead of the live registry
	FileSearchPath string

	// Logging
	LogFile string
	Verbose bool
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		SearchURL:         DefaultSearchURL,
		DocURL:            DefaultDocURL,
		UserAgent:         DefaultUserAgent,
		City:              DefaultCity,
		Delay:             DefaultDelay,
		MaxContacts:       DefaultMaxContacts,
		Dedup:             true,
		ConnectTimeout:    DefaultConnectTimeout,
		SearchTimeout:     DefaultSearchTimeout,
		DocTimeout:        DefaultDocTimeout,
		RetryAttempts:     DefaultRetryAttempts,
		Backoff:           DefaultBackoff,
		ExportDir:         DefaultExportDir,
		ListenAddr:        DefaultListenAddr,
		KeepAliveInterval: DefaultKeepAliveInterval,
	}
}
