package yearfilter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/esgscan/internal/model"
)

const (
	minYear = 1000
	maxYear = 9999
)

// NewYearSet builds the year set for a run. With both bounds it is the
// inclusive range, with only start it is that year, and with neither it
// is the year of now.
func NewYearSet(start, stop *int, now time.Time) (model.YearSet, error) {
	switch {
	case start == nil && stop != nil:
		return nil, ErrStopWithoutStart
	case start == nil:
		return model.YearSet{strconv.Itoa(now.Year())}, nil
	}

	if err := checkYear(*start); err != nil {
		return nil, err
	}
	if stop == nil {
		return model.YearSet{strconv.Itoa(*start)}, nil
	}
	if err := checkYear(*stop); err != nil {
		return nil, err
	}
	if *stop < *start {
		return nil, fmt.Errorf("%w: %d < %d", ErrStopBeforeStart, *stop, *start)
	}

	years := make(model.YearSet, 0, *stop-*start+1)
	for y := *start; y <= *stop; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years, nil
}

func checkYear(y int) error {
	if y < minYear || y > maxYear {
		return fmt.Errorf("%w: %d", ErrYearOutOfRange, y)
	}
	return nil
}

// Matches reports whether a link mentions any of the years.
func Matches(link model.LinkCandidate, years model.YearSet) bool {
	urlLower := strings.ToLower(link.URL)
	textLower := strings.ToLower(link.Text)
	for _, year := range years {
		if strings.Contains(urlLower, year) || strings.Contains(textLower, year) {
			return true
		}
	}
	return false
}

// Filter returns the links that mention any of the years, in their
// original order. The input slice is not modified.
func Filter(links []model.LinkCandidate, years model.YearSet) []model.LinkCandidate {
	kept := make([]model.LinkCandidate, 0, len(links))
	for _, link := range links {
		if Matches(link, years) {
			kept = append(kept, link)
		}
	}
	return kept
}

// Apply replaces the PDF links of every result with the filtered links
// and returns the number of links before and after filtering.
func Apply(results []model.ScrapeResult, years model.YearSet) (before, after int) {
	for i := range results {
		before += len(results[i].PDFLinks)
		results[i].PDFLinks = Filter(results[i].PDFLinks, years)
		after += len(results[i].PDFLinks)
	}
	return before, after
}
