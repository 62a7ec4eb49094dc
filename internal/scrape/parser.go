// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/models"
)

var (
	entryIDPattern     = regexp.MustCompile(`m(\d+)`)
	releaseDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	yearPattern        = regexp.MustCompile(`(\d{4})年`)
	starOnPattern      = regexp.MustCompile(`star_on\.png`)
	directorPrefixRe   = regexp.MustCompile(`監督[：:\s]\s*([^/\n\r|]+)`)
	directorSuffixRe   = regexp.MustCompile(`([^/\n\r|]+?)\s*監督`)
	whitespaceRe       = regexp.MustCompile(`\s+`)
)

// pageResult is the outcome of parsing one history listing page.
type pageResult struct {
	entries []models.ScrapedEntry
	skipped int
	found   int // entry divs encountered, parsed or not
	hasNext bool
	// listing reports whether the watched-listing page itself was
	// recognized. An empty history still renders the listing chrome;
	// a login wall or redesigned page does not.
	listing bool
}

// parseHistoryPage extracts viewing entries from a history listing page.
// Entries that fail to parse are counted and skipped; the caller applies
// the failure-rate policy.
func parseHistoryPage(html, baseURL string, now time.Time) (*pageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	res := &pageResult{}

	doc.Find("div.list-my-data").Each(func(i int, div *goquery.Selection) {
		res.found++
		entry, ok := parseEntryDiv(div, baseURL, now)
		if !ok {
			res.skipped++
			return
		}
		res.entries = append(res.entries, *entry)
	})

	// Next page via an explicit next link.
	if doc.Find("a.next").Length() > 0 || doc.Find(`a[rel="next"]`).Length() > 0 {
		res.hasNext = true
	}

	// The listing's sort/filter controls link back to the watched view
	// even when the history is empty.
	res.listing = res.found > 0 || doc.Find(`a[href*="filter=watched"]`).Length() > 0

	return res, nil
}

// parseEntryDiv parses a single list-my-data block. The div id carries
// the movie id as m{ID}; the title link, star rating, release date and
// director live in fixed child elements.
func parseEntryDiv(div *goquery.Selection, baseURL string, now time.Time) (*models.ScrapedEntry, bool) {
	divID := div.AttrOr("id", "")
	m := entryIDPattern.FindStringSubmatch(divID)
	if m == nil {
		logging.Debug().Str("div_id", divID).Msg("History entry without movie id, skipping")
		return nil, false
	}
	externalID := m[1]

	titleLink := div.Find("h3.title a").First()
	if titleLink.Length() == 0 {
		logging.Debug().Str("external_id", externalID).Msg("History entry without title link, skipping")
		return nil, false
	}
	title := strings.TrimSpace(titleLink.Text())
	if len([]rune(title)) < 2 {
		logging.Debug().Str("external_id", externalID).Msg("History entry title too short, skipping")
		return nil, false
	}

	movieURL := titleLink.AttrOr("href", "")
	if movieURL != "" && !strings.HasPrefix(movieURL, "http") {
		movieURL = baseURL + movieURL
	}

	entry := &models.ScrapedEntry{
		ExternalID: externalID,
		Title:      title,
		WatchedAt:  now,
		RawMethod:  "other",
		MovieURL:   movieURL,
	}

	if src := div.Find("img").First().AttrOr("src", ""); src != "" {
		entry.ImageURL = &src
	}

	// Release date, e.g. 劇場公開日：2023年5月26日
	if timeText := strings.TrimSpace(div.Find("small.time").First().Text()); timeText != "" {
		if dm := releaseDatePattern.FindStringSubmatch(timeText); dm != nil {
			if year := atoiSafe(dm[1]); year > 0 {
				entry.ReleasedYear = &year
			}
		}
	}

	// Director and a year fallback come from the sub line.
	if subText := strings.TrimSpace(div.Find("p.sub").First().Text()); subText != "" {
		if director := extractDirector(subText); director != "" {
			entry.Director = &director
		}
		if entry.ReleasedYear == nil {
			if ym := yearPattern.FindStringSubmatch(subText); ym != nil {
				if year := atoiSafe(ym[1]); year > 0 {
					entry.ReleasedYear = &year
				}
			}
		}
	}

	// The star widget renders one star_on image per rating point.
	stars := 0
	div.Find("span.score-star img").Each(func(i int, img *goquery.Selection) {
		if starOnPattern.MatchString(img.AttrOr("src", "")) {
			stars++
		}
	})
	if stars > 0 {
		rating := float64(stars)
		entry.Rating = &rating
	}

	return entry, true
}

// extractDirector pulls a director name out of free text. Both
// 「監督：名前」 and 「名前 監督」 orderings appear on the site.
func extractDirector(text string) string {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if normalized == "" {
		return ""
	}

	if m := directorPrefixRe.FindStringSubmatch(normalized); m != nil {
		if name := strings.Trim(m[1], " ・:："); name != "" {
			return name
		}
	}
	if m := directorSuffixRe.FindStringSubmatch(normalized); m != nil {
		if name := strings.Trim(m[1], " ・:："); name != "" && name != "監督" {
			return name
		}
	}
	return ""
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
