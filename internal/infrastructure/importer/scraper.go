// Package importer fetches published placement score tables and parses
// them into catalog score records.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/catalog"
	"github.com/tercihrehberi/tercihbot-go/internal/infrastructure/observability/logging"
)

// Scraper downloads score-table pages concurrently and extracts records
// from their first HTML table. Expected column order: university,
// department, score type, year, minimum score, minimum rank, quota.
type Scraper struct {
	client      *http.Client
	logger      *logging.ChanneledLogger
	concurrency int
}

func NewScraper(client *http.Client, concurrency int, logger *logging.ChanneledLogger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scraper{client: client, logger: logger, concurrency: concurrency}
}

// Run fetches every URL with bounded concurrency and returns the combined
// parsed records. One failing page fails the whole run; partial imports
// would leave the catalog inconsistent across years.
func (s *Scraper) Run(ctx context.Context, urls []string) ([]*catalog.ScoreRecord, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	var mu sync.Mutex
	var records []*catalog.ScoreRecord

	for _, url := range urls {
		url := url
		g.Go(func() error {
			pageRecords, err := s.fetchAndParse(ctx, url)
			if err != nil {
				return fmt.Errorf("import of %s failed: %w", url, err)
			}

			mu.Lock()
			records = append(records, pageRecords...)
			mu.Unlock()

			if s.logger != nil {
				s.logger.Import().Info("Page imported",
					slog.String("url", url),
					slog.Int("records", len(pageRecords)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Scraper) fetchAndParse(ctx context.Context, url string) ([]*catalog.ScoreRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tercihbot-importer/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ParseScoreTable(doc), nil
}

// ParseScoreTable walks the document and converts table rows with at
// least seven cells into score records. Header rows and rows with
// malformed numbers are skipped.
func ParseScoreTable(doc *html.Node) []*catalog.ScoreRecord {
	var records []*catalog.ScoreRecord
	for _, row := range findAll(doc, "tr") {
		cells := cellTexts(row)
		if len(cells) < 7 {
			continue
		}

		year, err := strconv.Atoi(cells[3])
		if err != nil {
			continue
		}
		minScore, err := strconv.ParseFloat(strings.ReplaceAll(cells[4], ",", "."), 64)
		if err != nil {
			continue
		}
		minRank, _ := strconv.Atoi(strings.ReplaceAll(cells[5], ".", ""))
		quota, _ := strconv.Atoi(cells[6])

		records = append(records, &catalog.ScoreRecord{
			University: cells[0],
			Department: cells[1],
			ScoreType:  strings.ToUpper(cells[2]),
			Year:       year,
			MinScore:   minScore,
			MinRank:    minRank,
			Quota:      quota,
		})
	}
	return records
}

func findAll(node *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return found
}

func cellTexts(row *html.Node) []string {
	var cells []string
	for _, cell := range findAll(row, "td") {
		cells = append(cells, strings.TrimSpace(innerText(cell)))
	}
	return cells
}

func innerText(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return sb.String()
}
