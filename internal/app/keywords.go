package app

import "strings"

// DefaultKeywords is the curated sector keyword list searched when a run
// names no keywords of its own.
var DefaultKeywords = []string{
	// Gaming, consoles and LAN venues
	"gaming", "sallë gaming", "sallë lojrash", "lan center", "cybercafe", "internet cafe",
	"internet café", "playstation", "sallë playstation", "ps4 lounge", "ps5 lounge",
	"gaming lounge", "gaming hall", "gaming room", "videogames shop", "console gaming",
	"arcade", "arcade hall", "esports", "e-sport center", "turne lojrash",

	// PC halls and internet cafes
	"sallë pc", "pc hall", "pc room", "qendër interneti", "akses internet",
	"kompjuter center", "pc rental", "pc gaming", "kompjuter publik",

	// Barbers and beauty
	"berber", "barber shop", "barbershop", "salon berber", "sallon flokësh", "hair salon",
	"sallon bukurie", "estetike", "sallon kozmetike",

	// Call centers and support outsourcing
	"call center", "qendër thirrjesh", "customer service center", "customer care",
	"customer support", "suport klienti", "contact center", "helpdesk", "bpo",
	"outsourcing", "back office", "telemarketing", "technical support center",

	// Coworking and shared offices
	"coworking", "co-working", "cowork space", "shared office", "hapësirë bashkëpunimi",
	"business hub", "startup hub", "incubator", "accelerator", "studio office",
	"office rental", "flex office", "hotdesk", "business center", "innovation hub",

	// Taxi companies with dispatch centers
	"kompani taksish", "kompani taksi", "operim taksi", "taxi dispatch", "dispatch center",
	"qendër operative", "fleet management", "fleet operations", "call center taksi",

	// IT companies
	"kompani it", "it services", "software house", "zhvillim software", "dev shop",
	"web development", "mobile development", "system integrator", "network integrator",
	"ict services", "teknologji informacioni", "cloud services", "cloud provider",
	"hosting provider", "managed services", "msp", "data center", "datacenter",
	"colocation",

	// Hosting and server maintenance
	"host", "hosting", "web hosting", "vps", "vps hosting", "server hosting", "server farm",
	"server maintenance", "mirëmbajtje serverash", "cloud hosting", "dedicated servers",
	"rack space", "server room",

	// Fiber and dedicated internet
	"dark fiber", "fibra optike", "fiber optic provider", "infra fiber",
	"internet i dedikuar", "dedicated internet", "bandwidth provider", "leased line",
	"lambda services", "metro ethernet", "fibra për biznes",

	// Security
	"ddos protection", "mbrojtje ddos", "security services", "cybersecurity",
	"managed security", "firewall services", "mitigation services", "anti-ddos",
	"security operations center", "soc", "incident response",

	// Telephony
	"voip", "voip provider", "voip services", "telefonia fikse", "telefoni fiks",
	"pbx provider", "hosted pbx", "virtual numbers", "sip trunk", "ip telephony",
	"telephony services", "call routing",

	// High bandwidth verticals
	"studio radio", "studio tv", "qendër media", "media center", "streaming studio",
	"post-produksion", "post produksion", "rendering farm", "video hosting",
	"event operator", "data analytics", "financial trading", "crypto mining",
	"research lab", "e-learning center", "edukim online",

	// Long tail
	"sallë gaming për events", "e-sport arena", "lan party venue", "ps5 playroom",
	"pc gaming rental", "internet cafe with pcs", "barber studio", "modern barber",
	"inbound call center", "outbound call center", "customer care center",
	"shared workspace for startups", "meeting room rental", "virtual office tiranë",
	"taxi dispatch center", "fleet operations tiranë", "web agency tiranë",
	"cloud hosting provider tiranë", "dedicated fiber business", "dark fiber lease",
	"server maintenance contract", "managed voip services",
}

// DefaultKeywordPreview is how many default keywords the form shows as a hint.
const DefaultKeywordPreview = 20

// ParseKeywords splits text into one keyword per line, trimming whitespace
// and dropping blank lines. Order and repeats are kept.
func ParseKeywords(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if kw := strings.TrimSpace(line); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// KeywordsOrDefault returns kws, or a copy of DefaultKeywords when kws is
// empty.
func KeywordsOrDefault(kws []string) []string {
	if len(kws) > 0 {
		return kws
	}
	return append([]string(nil), DefaultKeywords...)
}

// KeywordPreview joins the first n default keywords for display.
func KeywordPreview(n int) string {
	if n <= 0 || n > len(DefaultKeywords) {
		n = len(DefaultKeywords)
	}
	s := strings.Join(DefaultKeywords[:n], ", ")
	if n < len(DefaultKeywords) {
		s += ", …"
	}
	return s
}
