package probe

// Fixed endpoint tables. They are variables only so tests can point
// probes elsewhere; the battery itself always uses these defaults.

var CommonDomains = []string{
	"google.com",
	"cloudflare.com",
	"github.com",
}

// RestrictedDomains are sites commonly blocked on restricted networks.
var RestrictedDomains = []string{
	"google.com",
	"facebook.com",
	"youtube.com",
	"twitter.com",
	"instagram.com",
	"tiktok.com",
	"whatsapp.com",
	"telegram.org",
	"netflix.com",
	"reddit.com",
}

type Endpoint struct {
	Host     string
	Port     string
	Protocol string
}

var PortEndpoints = []Endpoint{
	{Host: "google.com", Port: "443", Protocol: "HTTPS"},
	{Host: "google.com", Port: "80", Protocol: "HTTP"},
	{Host: "cloudflare.com", Port: "443", Protocol: "HTTPS"},
	{Host: "github.com", Port: "443", Protocol: "HTTPS"},
	{Host: "api.github.com", Port: "443", Protocol: "HTTPS"},
}

var LatencyURLs = []string{
	"https://httpbin.org/get",
	"https://api.github.com",
}

type DNSServer struct {
	IP   string
	Name string
}

var DNSServerTable = []DNSServer{
	{IP: "8.8.8.8", Name: "Google DNS"},
	{IP: "1.1.1.1", Name: "Cloudflare DNS"},
	{IP: "8.8.4.4", Name: "Google DNS Secondary"},
}

const (
	IntegrityDomain = "example.com"
	PingTarget      = "8.8.8.8"
	DPIPlainURL     = "http://httpbin.org/get"
	DPISecureURL    = "https://httpbin.org/get"
)
