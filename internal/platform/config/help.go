// internal/platform/config/help.go
package config

import (
	"fmt"
	"os"
	"runtime"
)

const helpText = `
EmailScope - Email discovery and verification for company domains

USAGE:
  emailscope -d <domain> [options]
  emailscope --serve :8080 [options]

CORE OPTIONS:
  -d, --domain string          Target domain (required in CLI mode, e.g., example.com)
  -T, --timeout int            Global timeout in seconds, 0=no timeout (default: 300)
  -c, --config string          YAML config file (flags override it)
  -q, --quiet                  No progress UI; print records as JSON to stdout
      --log-level string       debug, info, warn, error (default: info)

CRAWL OPTIONS:
      --max-depth int          Maximum link depth from the home page (default: 2)
      --max-pages int          Maximum pages fetched per run (default: 50)
      --crawl-delay duration   Minimum delay between requests to the domain (default: 1s)
                               robots.txt Crawl-delay is honored when larger
      --user-agent string      User agent for pages and robots.txt
      --subdomains             Follow links to subdomains of the target (default: true)

EXTRACT OPTIONS:
      --role-addresses         Also guess role addresses (info@, contact@, sales@...)

VERIFY OPTIONS:
  -w, --verify-concurrency int Parallel SMTP verifications (default: 3)
      --smtp-port int          SMTP port on mail exchangers (default: 25)
      --smtp-timeout duration  Per-command SMTP timeout (default: 10s)
      --mail-from string       Envelope sender for MAIL FROM
      --catch-all-probe        Detect catch-all domains (default: true)

OUTPUT OPTIONS:
  -o, --out string             Output directory (default: "emailscope_out")
      --no-table               Disable table output (JSON is always written)
      --xlsx                   Also write an XLSX workbook
      --stream                 Write progress events as JSONL
      --min-confidence int     Only export results with at least this confidence

SERVER OPTIONS:
      --serve string           Start the trigger API (POST /api/runs, /ws/runs/:id)
      --redis string           Redis address for shared policy and mail profile caches

NETWORK OPTIONS:
  -p, --proxy string           HTTP(S) proxy for crawling
      --socks string           SOCKS5 proxy for SMTP (host:port)
  -r, --retries int            HTTP retries on 429/5xx (default: 2)
      --max-rps float          Global HTTP requests per second across runs (default: no ceiling)

INFO:
  -v, --version                Print version information and exit
  -h, --help                   Show this help message

EXAMPLES:
  Basic run:
    emailscope -d example.com

  Deeper crawl, slower pace, spreadsheet output:
    emailscope -d example.com --max-depth 3 --max-pages 120 --crawl-delay 2s --xlsx

  Trigger API with shared caches:
    emailscope --serve :8080 --redis localhost:6379

ENVIRONMENT VARIABLES:
  A .env file in the working directory is loaded first. Flags override ENV.
  EMAILSCOPE_DOMAIN                  Target domain
  EMAILSCOPE_MAX_DEPTH / _MAX_PAGES  Crawl limits
  EMAILSCOPE_CRAWL_DELAY=2s          Crawl-delay floor
  EMAILSCOPE_VERIFY_CONCURRENCY=3    Parallel verifications
  EMAILSCOPE_SMTP_PORT=25            SMTP port
  EMAILSCOPE_OUTPUT_DIR=/path        Output directory
  EMAILSCOPE_REDIS_ADDR=host:6379    Redis caches
  EMAILSCOPE_LOG_LEVEL=debug         Log level
  EMAILSCOPE_CONFIG=emailscope.yaml  YAML config file
  SENTRY_DSN=...                     Report errors to Sentry

STATUS:
  valid          confidence >= 80, mailbox accepted on a non catch-all domain
  risky          confidence 40-79 (accepted on catch-all, weak signals)
  unverifiable   server did not answer conclusively (timeout, greylisting)
  invalid        no MX records or mailbox rejected
`

// PrintHelp prints the custom help message and exits.
func PrintHelp() {
	fmt.Fprint(os.Stdout, helpText)
	os.Exit(0)
}

// PrintVersion prints version information and exits.
func PrintVersion(version, commit, date string) {
	fmt.Printf("EmailScope %s\n", version)
	fmt.Printf("  Commit:  %s\n", commit)
	fmt.Printf("  Built:   %s\n", date)
	fmt.Printf("  Go:      %s\n", getGoVersion())
	os.Exit(0)
}

func getGoVersion() string {
	return runtime.Version()
}
