package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Period identifies a fiscal quarter of a calendar year.
type Period struct {
	Year    int
	Quarter int // 1..4
}

// Coverage bounds for extraction; periods outside this window are rejected.
const (
	MinYear = 2023
	MaxYear = 2025
)

// Quarters lists the valid quarter labels in order.
var Quarters = []string{"Q1", "Q2", "Q3", "Q4"}

// Years lists the covered years in order.
func Years() []int {
	years := make([]int, 0, MaxYear-MinYear+1)
	for y := MinYear; y <= MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// NewPeriod builds a validated Period from a year and a quarter label ("Q1".."Q4").
func NewPeriod(year int, quarter string) (Period, error) {
	q, err := parseQuarterLabel(quarter)
	if err != nil {
		return Period{}, err
	}
	p := Period{Year: year, Quarter: q}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the period is within the coverage window.
func (p Period) Validate() error {
	if p.Quarter < 1 || p.Quarter > 4 {
		return fmt.Errorf("quarter must be 1..4, got %d", p.Quarter)
	}
	if p.Year < MinYear || p.Year > MaxYear {
		return fmt.Errorf("year must be %d..%d, got %d", MinYear, MaxYear, p.Year)
	}
	return nil
}

// QuarterLabel returns "Q1".."Q4".
func (p Period) QuarterLabel() string {
	return fmt.Sprintf("Q%d", p.Quarter)
}

// String renders the period as "2024 Q3".
func (p Period) String() string {
	return fmt.Sprintf("%d %s", p.Year, p.QuarterLabel())
}

// Previous returns the preceding quarter, crossing year boundaries.
func (p Period) Previous() Period {
	if p.Quarter == 1 {
		return Period{Year: p.Year - 1, Quarter: 4}
	}
	return Period{Year: p.Year, Quarter: p.Quarter - 1}
}

// DateRange returns the first and last calendar day of the quarter.
func (p Period) DateRange() (time.Time, time.Time) {
	startMonth := time.Month((p.Quarter-1)*3 + 1)
	start := time.Date(p.Year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).AddDate(0, 0, -1)
	return start, end
}

// ReportMonth returns the representative filing month for the quarter ("03",
// "06", "09", "12"), matching how extracted documents are dated.
func (p Period) ReportMonth() string {
	return fmt.Sprintf("%02d", p.Quarter*3)
}

// CurrentPeriod returns the quarter containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{
		Year:    now.Year(),
		Quarter: (int(now.Month())-1)/3 + 1,
	}
}

var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(Q[1-4])[\s-]+(\d{4})\b`),
	regexp.MustCompile(`(?i)\b(\d{4})[\s-]+(Q[1-4])\b`),
}

// ParsePeriod parses free-form period strings such as "Q1 2024", "2024 Q1",
// "Q1-2024" or "2024-Q1".
func ParsePeriod(s string) (Period, error) {
	for _, re := range periodPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var yearStr, quarterStr string
		for _, g := range m[1:] {
			if strings.HasPrefix(strings.ToUpper(g), "Q") {
				quarterStr = g
			} else {
				yearStr = g
			}
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		q, err := parseQuarterLabel(quarterStr)
		if err != nil {
			continue
		}
		return Period{Year: year, Quarter: q}, nil
	}
	return Period{}, fmt.Errorf("unrecognized period: %q", s)
}

func parseQuarterLabel(label string) (int, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	switch label {
	case "Q1":
		return 1, nil
	case "Q2":
		return 2, nil
	case "Q3":
		return 3, nil
	case "Q4":
		return 4, nil
	}
	return 0, fmt.Errorf("invalid quarter label: %q", label)
}
