// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package scrape

import (
	"testing"
	"time"
)

const sampleEntry = `
<div class="list-my-data" id="m12345">
  <img src="https://img.example.com/poster/12345.jpg">
  <h3 class="title"><a href="/movie/12345/">素晴らしき映画</a></h3>
  <small class="time">劇場公開日：2023年5月26日</small>
  <p class="sub">監督：渡辺一貴 / 2023年製作</p>
  <span class="score-star">
    <img src="/img/star_on.png"><img src="/img/star_on.png">
    <img src="/img/star_on.png"><img src="/img/star_on.png">
    <img src="/img/star_off.png">
  </span>
</div>`

func TestParseHistoryPage(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	html := `<html><body>` + sampleEntry + `<a class="next" href="?page=2">次</a></body></html>`

	res, err := parseHistoryPage(html, "https://eiga.com", now)
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}

	if res.found != 1 || res.skipped != 0 || len(res.entries) != 1 {
		t.Fatalf("found=%d skipped=%d entries=%d, want 1/0/1", res.found, res.skipped, len(res.entries))
	}
	if !res.hasNext {
		t.Error("hasNext = false with a.next present")
	}

	e := res.entries[0]
	if e.ExternalID != "12345" {
		t.Errorf("ExternalID = %q, want 12345", e.ExternalID)
	}
	if e.Title != "素晴らしき映画" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.MovieURL != "https://eiga.com/movie/12345/" {
		t.Errorf("MovieURL = %q", e.MovieURL)
	}
	if e.ReleasedYear == nil || *e.ReleasedYear != 2023 {
		t.Errorf("ReleasedYear = %v, want 2023", e.ReleasedYear)
	}
	if e.Rating == nil || *e.Rating != 4.0 {
		t.Errorf("Rating = %v, want 4.0 (four star_on images)", e.Rating)
	}
	if e.Director == nil || *e.Director != "渡辺一貴" {
		t.Errorf("Director = %v, want 渡辺一貴", e.Director)
	}
	if e.ImageURL == nil || *e.ImageURL != "https://img.example.com/poster/12345.jpg" {
		t.Errorf("ImageURL = %v", e.ImageURL)
	}
	if !e.WatchedAt.Equal(now) {
		t.Errorf("WatchedAt = %v, want %v", e.WatchedAt, now)
	}
	if e.RawMethod != "other" {
		t.Errorf("RawMethod = %q, want other", e.RawMethod)
	}
}

func TestParseHistoryPageRelNextLink(t *testing.T) {
	html := `<html><body>` + sampleEntry + `<a rel="next" href="?page=2">次</a></body></html>`
	res, err := parseHistoryPage(html, "https://eiga.com", time.Now())
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}
	if !res.hasNext {
		t.Error("hasNext = false with a[rel=next] present")
	}
}

func TestParseHistoryPageLastPage(t *testing.T) {
	html := `<html><body>` + sampleEntry + `</body></html>`
	res, err := parseHistoryPage(html, "https://eiga.com", time.Now())
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}
	if res.hasNext {
		t.Error("hasNext = true without a next link")
	}
}

func TestParseHistoryPageSkipsBrokenEntries(t *testing.T) {
	html := `<html><body>
		<div class="list-my-data" id="m1">
		  <h3 class="title"><a href="/movie/1/">ちゃんとした映画</a></h3>
		</div>
		<div class="list-my-data"><h3 class="title"><a>IDなし</a></h3></div>
		<div class="list-my-data" id="m3"><p>タイトルなし</p></div>
	</body></html>`

	res, err := parseHistoryPage(html, "https://eiga.com", time.Now())
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}
	if res.found != 3 {
		t.Errorf("found = %d, want 3", res.found)
	}
	if res.skipped != 2 {
		t.Errorf("skipped = %d, want 2", res.skipped)
	}
	if len(res.entries) != 1 || res.entries[0].ExternalID != "1" {
		t.Errorf("entries = %+v, want single entry m1", res.entries)
	}
}

func TestParseHistoryPageEmpty(t *testing.T) {
	res, err := parseHistoryPage("<html><body><p>視聴履歴はありません</p></body></html>", "https://eiga.com", time.Now())
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}
	if res.found != 0 || len(res.entries) != 0 {
		t.Errorf("found=%d entries=%d, want 0/0", res.found, len(res.entries))
	}
}

func TestParseEntryYearFallbackFromSub(t *testing.T) {
	html := `<html><body>
		<div class="list-my-data" id="m7">
		  <h3 class="title"><a href="/movie/7/">年なし公開日</a></h3>
		  <p class="sub">2019年製作／アメリカ</p>
		</div>
	</body></html>`

	res, err := parseHistoryPage(html, "https://eiga.com", time.Now())
	if err != nil {
		t.Fatalf("parseHistoryPage: %v", err)
	}
	if len(res.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.entries))
	}
	e := res.entries[0]
	if e.ReleasedYear == nil || *e.ReleasedYear != 2019 {
		t.Errorf("ReleasedYear = %v, want 2019 from sub text", e.ReleasedYear)
	}
	if e.Rating != nil {
		t.Errorf("Rating = %v, want nil without star widget", e.Rating)
	}
}

func TestExtractDirector(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"監督：渡辺一貴", "渡辺一貴"},
		{"監督: 山田太郎 / 2020年", "山田太郎"},
		{"渡辺一貴 監督", "渡辺一貴"},
		{"2023年製作／日本", ""},
		{"", ""},
		{"監督", ""},
	}
	for _, tt := range tests {
		if got := extractDirector(tt.in); got != tt.want {
			t.Errorf("extractDirector(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
