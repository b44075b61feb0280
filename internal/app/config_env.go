package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. It runs after the config file so env takes precedence over the file,
// while flags applied afterwards remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setDur := func(dst *time.Duration, key string) {
		if s := os.Getenv(key); s != "" {
			if d, err := ParseDelay(s); err == nil {
				*dst = d
			}
		}
	}
	setInt := func(dst *int, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				*dst = n
			}
		}
	}
	setInt64 := func(dst *int64, key string) {
		if s := strings.TrimSpace(os.Getenv(key)); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if b, ok := parseBool(os.Getenv(key)); ok {
			*dst = b
		}
	}

	setStr(&cfg.SearchURL, "QKB_SEARCH_URL")
	setStr(&cfg.DocURL, "QKB_DOC_URL")
	setStr(&cfg.UserAgent, "QKB_USER_AGENT")
	setStr(&cfg.FileSearchPath, "SEARCH_FILE")

	setStr(&cfg.City, "DEFAULT_CITY")
	setStr(&cfg.Region, "DEFAULT_REGION")
	if v := strings.TrimSpace(os.Getenv("KEYWORDS")); v != "" {
		cfg.Keywords = splitList(v)
	}
	setDur(&cfg.Delay, "SCRAPE_DELAY")
	setBool(&cfg.Contacts, "FETCH_CONTACTS")
	setInt(&cfg.MaxContacts, "MAX_CONTACTS")
	setBool(&cfg.Dedup, "DEDUP")

	setDur(&cfg.ConnectTimeout, "CONNECT_TIMEOUT")
	setDur(&cfg.SearchTimeout, "SEARCH_TIMEOUT")
	setDur(&cfg.DocTimeout, "DOC_TIMEOUT")
	setInt(&cfg.RetryAttempts, "RETRY_ATTEMPTS")

	setStr(&cfg.ExportDir, "EXPORT_DIR")
	setBool(&cfg.ExportXLSX, "EXPORT_XLSX")
	setBool(&cfg.ExportPDF, "EXPORT_PDF")

	setStr(&cfg.CacheDir, "CACHE_DIR")
	setDur(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setInt64(&cfg.CacheMaxBytes, "CACHE_MAX_BYTES")
	setInt(&cfg.CacheMaxCount, "CACHE_MAX_COUNT")

	setStr(&cfg.KeepAliveURL, "KEEPALIVE_URL", "RENDER_EXTERNAL_URL")
	setDur(&cfg.KeepAliveInterval, "KEEPALIVE_INTERVAL")
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.ListenAddr = ":" + p
	}
	setStr(&cfg.ListenAddr, "LISTEN_ADDR")

	setStr(&cfg.LogFile, "LOG_FILE")
	setBool(&cfg.Verbose, "VERBOSE")
}

// ParseDelay reads a duration given either as Go duration text ("400ms",
// "2m") or as plain seconds ("0.4"). Negative values are rejected.
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0, strconv.ErrRange
		}
		return secondsToDuration(f), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, strconv.ErrRange
	}
	return d, nil
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "po":
		return true, true
	case "0", "false", "no", "off", "jo":
		return false, true
	}
	return false, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
