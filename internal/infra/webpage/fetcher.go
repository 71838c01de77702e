// Package webpage downloads a page and reduces it to readable text.
package webpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bryanwahyu/ai-playground/internal/domain/analysis"
)

const (
	maxBodyBytes     = 5 << 20
	defaultUserAgent = "ai-playground/1.0 (+page summarizer)"
)

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
}

// ErrBlockedAddress is returned when a URL, a redirect hop or a resolved
// address points at a loopback, private or link-local destination.
var ErrBlockedAddress = errors.New("destination address not allowed")

type Fetcher struct {
	httpClient    *resty.Client
	allowLoopback bool
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return newFetcher(timeout, false)
}

// newFetcher with allowLoopback lets tests reach httptest servers; every
// other internal range stays blocked.
func newFetcher(timeout time.Duration, allowLoopback bool) *Fetcher {
	f := &Fetcher{allowLoopback: allowLoopback}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   f.dialControl,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	c := resty.New().
		SetDebug(false).
		SetTransport(transport).
		SetRedirectPolicy(
			resty.FlexibleRedirectPolicy(5),
			resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
				return f.checkURL(req.URL)
			}),
		).
		SetHeaders(map[string]string{
			"Accept":     "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5",
			"User-Agent": defaultUserAgent,
		})
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	f.httpClient = c
	return f
}

// Fetch downloads rawURL (at most 5 MB are read) and extracts its title and text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (analysis.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return analysis.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if err := f.checkURL(u); err != nil {
		return analysis.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	res, err := f.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return analysis.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.IsError() {
		return analysis.Page{}, fmt.Errorf("fetch %s: status %d", rawURL, res.StatusCode())
	}

	title, text := Extract(io.LimitReader(body, maxBodyBytes))
	return analysis.Page{URL: rawURL, Title: title, Text: text}, nil
}

// checkURL runs on the first request and on every redirect hop. Host names
// are checked again after resolution by dialControl.
func (f *Fetcher) checkURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrBlockedAddress, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrBlockedAddress)
	}
	if ip := net.ParseIP(host); ip != nil {
		return f.checkIP(ip)
	}
	if !f.allowLoopback && (host == "localhost" || strings.HasSuffix(host, ".localhost")) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	if strings.HasSuffix(host, ".internal") {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// dialControl sees the resolved address of every connection.
func (f *Fetcher) dialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	return f.checkIP(ip)
}

func (f *Fetcher) checkIP(ip net.IP) error {
	if ip.IsLoopback() && f.allowLoopback {
		return nil
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

// Extract walks the token stream, dropping script-like elements, and returns
// the document title and its whitespace-collapsed text.
func Extract(r io.Reader) (title, text string) {
	z := html.NewTokenizer(r)
	var (
		b       strings.Builder
		depth   int
		inTitle bool
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(title), collapse(b.String())
		case html.StartTagToken:
			tok := z.Token()
			if skipped[tok.DataAtom] {
				depth++
			}
			if tok.DataAtom == atom.Title {
				inTitle = true
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			tok := z.Token()
			if skipped[tok.DataAtom] && depth > 0 {
				depth--
			}
			if tok.DataAtom == atom.Title {
				inTitle = false
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if depth > 0 {
				continue
			}
			t := string(z.Text())
			if inTitle {
				title += t
				continue
			}
			b.WriteString(t)
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
