// Package community searches forum and community sites for per-tyre
// discussion threads and classifies their sentiment.
package community

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"tyreadvisor/internal/model"
)

const userAgent = "TyreAdvisorBot/1.0"

const maxBodyBytes = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// siteSelectors names the structural selectors used to pull thread fields
// out of a search results page.
type siteSelectors struct {
	threads string
	title   string
	author  string
	date    string
	replies string
	views   string
	content string
}

// site is one configured community site.
type site struct {
	name      string
	baseURL   string
	searchURL string
	selectors siteSelectors
}

var forumSelectors = siteSelectors{
	threads: ".forum-thread",
	title:   ".thread-title a",
	author:  ".thread-author",
	date:    ".thread-date",
	replies: ".thread-replies",
	views:   ".thread-views",
	content: ".thread-preview",
}

var defaultSites = []site{
	{
		name:      "Pinkbike Forums",
		baseURL:   "https://www.pinkbike.com",
		searchURL: "https://www.pinkbike.com/search/?q=",
		selectors: forumSelectors,
	},
	{
		name:      "MTBR Forums",
		baseURL:   "https://www.mtbr.com",
		searchURL: "https://www.mtbr.com/search/?q=",
		selectors: forumSelectors,
	},
	{
		name:      "Reddit r/MTB",
		baseURL:   "https://www.reddit.com",
		searchURL: "https://www.reddit.com/r/MTB/search/?q=",
		selectors: siteSelectors{
			threads: `[data-testid="post-container"]`,
			title:   "h3 a",
			author:  `[data-testid="post_author_link"]`,
			date:    "time",
			replies: `[data-testid="comment-count"]`,
			views:   ".score",
			content: ".selftext",
		},
	},
}

// Scraper searches community sites for discussions about a tyre. Requests
// are spaced by a shared rate limiter: this is a courtesy contract towards
// the scraped hosts, not a performance knob.
type Scraper struct {
	http    HTTPClient
	log     *slog.Logger
	sites   []site
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates a Scraper with the given HTTP client and request spacing.
func New(client HTTPClient, log *slog.Logger, delay time.Duration) *Scraper {
	if delay <= 0 {
		delay = time.Second
	}
	return &Scraper{
		http:    client,
		log:     log,
		sites:   defaultSites,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Discussions searches every configured site for threads about the given
// tyre and returns them sorted by date, most recent first. A failing site
// contributes zero threads.
func (s *Scraper) Discussions(ctx context.Context, tyreModel, tyreBrand string) []model.Discussion {
	query := strings.TrimSpace(tyreBrand + " " + tyreModel)

	var all []model.Discussion
	for _, st := range s.sites {
		threads, err := s.scrapeSite(ctx, st, query)
		if err != nil {
			s.log.Error("community search failed", "site", st.name, "query", query, "error", err)
			continue
		}
		s.log.Debug("community search", "site", st.name, "query", query, "threads", len(threads))
		all = append(all, threads...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})

	s.log.Info("community discussions collected", "query", query, "total", len(all))
	return all
}

func (s *Scraper) scrapeSite(ctx context.Context, st site, query string) ([]model.Discussion, error) {
	// Same-host spacing: never fire requests in a tight loop.
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.searchURL+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var threads []model.Discussion
	doc.Find(st.selectors.threads).Each(func(_ int, el *goquery.Selection) {
		titleEl := el.Find(st.selectors.title)
		title := strings.TrimSpace(titleEl.Text())
		href, _ := titleEl.Attr("href")
		if title == "" || href == "" {
			return
		}

		author := strings.TrimSpace(el.Find(st.selectors.author).Text())
		if author == "" {
			author = "Anonymous"
		}
		content := strings.TrimSpace(el.Find(st.selectors.content).Text())
		if content == "" {
			content = "No content available"
		}

		threadURL := href
		if !strings.HasPrefix(href, "http") {
			threadURL = st.baseURL + href
		}

		threads = append(threads, model.Discussion{
			ID:        uuid.NewString(),
			Title:     title,
			Content:   content,
			Author:    author,
			Date:      parseRelativeDate(el.Find(st.selectors.date).Text(), s.now()),
			Source:    st.name,
			URL:       threadURL,
			Replies:   parseCount(el.Find(st.selectors.replies).Text()),
			Views:     parseCount(el.Find(st.selectors.views).Text()),
			Sentiment: ClassifySentiment(title + " " + content),
			Tags:      ExtractTags(title + " " + content),
		})
	})

	return threads, nil
}

var relativeDatePattern = regexp.MustCompile(`(\d+)\s+(day|hour|minute)s?\s+ago`)

var digitsPattern = regexp.MustCompile(`\d+`)

// parseRelativeDate turns strings like "2 days ago" into an absolute time.
// Absent or unparseable dates default to now.
func parseRelativeDate(text string, now time.Time) time.Time {
	m := relativeDatePattern.FindStringSubmatch(text)
	if m == nil {
		return now
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	switch m[2] {
	case "day":
		return now.Add(-time.Duration(amount) * 24 * time.Hour)
	case "hour":
		return now.Add(-time.Duration(amount) * time.Hour)
	case "minute":
		return now.Add(-time.Duration(amount) * time.Minute)
	}
	return now
}

// parseCount extracts the first run of digits from counter text such as
// "12 replies" or "1,204 views".
func parseCount(text string) int {
	cleaned := strings.ReplaceAll(text, ",", "")
	m := digitsPattern.FindString(cleaned)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
