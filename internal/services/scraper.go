// Concert listings scraper.
//
// The listings page is server-rendered hCard markup: each show is a
// .row.vevent block carrying its artists, venue, datetime, and detail link.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// ScraperService implements [Scraper] against the listings site.
type ScraperService struct {
	client     *resty.Client
	listingURL string
	now        func() time.Time
}

// NewScraperService creates a scraper for the configured listings page.
func NewScraperService(cfg shared.ScraperConfig) *ScraperService {
	agent := cfg.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}

	client := resty.New().
		SetHeader("User-Agent", agent).
		SetTimeout(30 * time.Second)

	return &ScraperService{
		client:     client,
		listingURL: cfg.ListingURL,
		now:        time.Now,
	}
}

// Scrape fetches the listings page and extracts upcoming shows. Rows with
// no performers, an unparsable date, or a date before today are dropped.
func (s *ScraperService) Scrape(ctx context.Context) ([]models.RawShow, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.listingURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrScrapeFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: listings returned status %d", shared.ErrScrapeFailed, resp.StatusCode())
	}

	base, err := url.Parse(s.listingURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing url: %v", shared.ErrScrapeFailed, err)
	}

	shows, err := s.parseListing(strings.NewReader(string(resp.Body())), base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrScrapeFailed, err)
	}

	return shows, nil
}

func (s *ScraperService) parseListing(r *strings.Reader, base *url.URL) ([]models.RawShow, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	today := shared.DateOnly(s.now())

	var shows []models.RawShow
	for _, row := range findAll(doc, func(n *html.Node) bool {
		return hasClass(n, "row") && hasClass(n, "vevent")
	}) {
		show, ok := s.parseRow(row, base, today)
		if !ok {
			continue
		}
		shows = append(shows, show)
	}

	return shows, nil
}

func (s *ScraperService) parseRow(row *html.Node, base *url.URL, today string) (models.RawShow, bool) {
	artists := rowArtists(row)
	if len(artists) == 0 {
		return models.RawShow{}, false
	}

	datetime := ""
	if el := findFirst(row, func(n *html.Node) bool { return hasClass(n, "value-title") }); el != nil {
		datetime = attrVal(el, "title")
	}

	date, clock, ok := splitDatetime(datetime)
	if !ok || date < today {
		return models.RawShow{}, false
	}

	venue := "Unknown Venue"
	if el := findFirst(row, func(n *html.Node) bool { return hasClass(n, "fn") && hasClass(n, "org") }); el != nil {
		if text := strings.TrimSpace(textContent(el)); text != "" {
			venue = text
		}
	}

	return models.RawShow{
		Artists: artists,
		Date:    date,
		Time:    clock,
		Venue:   venue,
		ShowURL: rowShowURL(row, base),
	}, true
}

// rowArtists keeps performer anchors: those with no class at all or with
// the non-profiled marker. Venue and metadata links carry other classes.
func rowArtists(row *html.Node) []string {
	bands := findFirst(row, func(n *html.Node) bool {
		return hasClass(n, "bands") && hasClass(n, "summary")
	})
	if bands == nil {
		return nil
	}

	var artists []string
	for _, a := range findAll(bands, func(n *html.Node) bool { return n.Data == "a" }) {
		cls := strings.TrimSpace(attrVal(a, "class"))
		if cls != "" && cls != "non-profiled" && !containsField(cls, "non-profiled") {
			continue
		}
		if name := strings.TrimSpace(textContent(a)); name != "" {
			artists = append(artists, name)
		}
	}

	return artists
}

// rowShowURL prefers the hCard .url anchor, falling back to the row's first
// link. Relative paths resolve against the listings origin.
func rowShowURL(row *html.Node, base *url.URL) string {
	href := ""
	if el := findFirst(row, func(n *html.Node) bool { return n.Data == "a" && hasClass(n, "url") }); el != nil {
		href = attrVal(el, "href")
	}
	if href == "" {
		if el := findFirst(row, func(n *html.Node) bool { return n.Data == "a" }); el != nil {
			href = attrVal(el, "href")
		}
	}
	if href == "" {
		return ""
	}

	if strings.HasPrefix(href, "http") {
		return href
	}

	return base.Scheme + "://" + base.Host + href
}

// splitDatetime takes the hCard ISO datetime and returns its calendar date
// (already venue-local upstream) and a 12-hour clock string.
func splitDatetime(datetime string) (string, string, bool) {
	if datetime == "" {
		return "", "", false
	}

	date, _, _ := strings.Cut(datetime, "T")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", "", false
	}

	clock := ""
	if dt, err := time.Parse(time.RFC3339, datetime); err == nil {
		clock = dt.Format("03:04 PM")
	}

	return date, clock, true
}

func containsField(cls, want string) bool {
	for _, f := range strings.Fields(cls) {
		if f == want {
			return true
		}
	}
	return false
}

// hasClass reports whether an element node carries the given class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return containsField(attrVal(n, "class"), class)
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			return c
		}
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && pred(c) {
				out = append(out, c)
				// matched subtrees are leaves for our selectors
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
