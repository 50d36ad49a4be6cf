package views

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/montanaflynn/stats"
)

// PriorityAll selects every opportunity.
const PriorityAll = "all"

// Opportunities is the read-only opportunities screen.
type Opportunities struct {
	*resource.Controller[model.Opportunity, struct{}]
}

// NewOpportunities creates the opportunities view.
func NewOpportunities(d Deps) *Opportunities {
	return &Opportunities{Controller: resource.New(resource.Spec[model.Opportunity, struct{}]{
		Name:     "opportunities",
		List:     d.Backend.ListOpportunities,
		ID:       func(o model.Opportunity) string { return o.ID },
		Messages: resource.Messages{LoadFailed: "Failed to load opportunities"},
		Notifier: d.Notifier,
		Session:  d.Session,
	})}
}

// CountByPriority tallies the listed opportunities by priority.
func (o *Opportunities) CountByPriority() map[model.Level]int {
	counts := make(map[model.Level]int, len(model.Levels))
	for _, l := range model.Levels {
		counts[l] = 0
	}
	for _, opp := range o.Items() {
		counts[opp.Priority]++
	}
	return counts
}

// FilterByPriority returns the opportunities with priority p, or all of them
// for PriorityAll or an empty filter.
func (o *Opportunities) FilterByPriority(p string) []model.Opportunity {
	return FilterByPriority(o.Items(), p)
}

// FilterByPriority keeps the opportunities whose priority matches p.
func FilterByPriority(opps []model.Opportunity, p string) []model.Opportunity {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" || p == PriorityAll {
		return opps
	}
	out := []model.Opportunity{}
	for _, opp := range opps {
		if string(opp.Priority) == p {
			out = append(out, opp)
		}
	}
	return out
}

// RevenueSummary aggregates the potential revenue ranges.
type RevenueSummary struct {
	Currency     string
	Parsed       int
	Unparsed     int
	TotalLow     float64
	TotalHigh    float64
	MedianMiddle float64
}

// RevenueSummary aggregates the listed opportunities.
func (o *Opportunities) RevenueSummary() RevenueSummary {
	return SummarizeRevenue(o.Items())
}

// SummarizeRevenue totals the revenue ranges it can parse and takes the
// median of their midpoints.
func SummarizeRevenue(opps []model.Opportunity) RevenueSummary {
	var sum RevenueSummary
	var lows, highs, mids stats.Float64Data

	for _, opp := range opps {
		low, high, currency, ok := ParseRevenue(opp.PotentialRevenue)
		if !ok {
			sum.Unparsed++
			continue
		}
		sum.Parsed++
		if sum.Currency == "" {
			sum.Currency = currency
		}
		lows = append(lows, low)
		highs = append(highs, high)
		mids = append(mids, (low+high)/2)
	}

	if sum.Parsed == 0 {
		return sum
	}
	sum.TotalLow, _ = stats.Sum(lows)
	sum.TotalHigh, _ = stats.Sum(highs)
	sum.MedianMiddle, _ = stats.Median(mids)
	return sum
}

var (
	// An amount is a grouped ("50,000") or plain ("2,5", "1.5") number with an
	// optional magnitude that must end at a word boundary.
	amountPattern = regexp.MustCompile(
		`\b(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)\s*((?i:million|billion|thousand|mn|bn|k|m|b))?\b`)
	groupedPattern  = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	currencyPattern = regexp.MustCompile(`[€$£¥]|\b(?:EUR|USD|GBP)\b`)
)

var rangeSeparators = map[string]bool{"-": true, "–": true, "—": true, "~": true, "to": true, "à": true}

// ParseRevenue reads ranges such as "50K - 200K €", "€50,000 - €200,000" or
// "$1.5M". A single amount is returned as both bounds. A second amount only
// counts when a range separator joins it to the first, so "500K in 12
// months" is 500K.
func ParseRevenue(s string) (low, high float64, currency string, ok bool) {
	matches := amountPattern.FindAllStringSubmatchIndex(s, 2)
	if len(matches) == 0 {
		return 0, 0, "", false
	}

	low, ok = amount(s, matches[0])
	if !ok {
		return 0, 0, "", false
	}
	high = low
	if len(matches) == 2 && joinsRange(s[matches[0][1]:matches[1][0]]) {
		if high, ok = amount(s, matches[1]); !ok {
			return 0, 0, "", false
		}
	}

	if low > high {
		low, high = high, low
	}
	return low, high, currencyPattern.FindString(s), true
}

// amount converts one amountPattern match.
func amount(s string, m []int) (float64, bool) {
	digits := s[m[2]:m[3]]
	if groupedPattern.MatchString(digits) {
		digits = strings.ReplaceAll(digits, ",", "")
	} else {
		digits = strings.ReplaceAll(digits, ",", ".")
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	var suffix string
	if m[4] >= 0 {
		suffix = strings.ToLower(s[m[4]:m[5]])
	}
	switch suffix {
	case "k", "thousand":
		v *= 1e3
	case "m", "mn", "million":
		v *= 1e6
	case "b", "bn", "billion":
		v *= 1e9
	}
	return v, true
}

// joinsRange reports whether the text between two amounts is a range
// separator, ignoring currency marks and spaces.
func joinsRange(between string) bool {
	between = currencyPattern.ReplaceAllString(between, "")
	return rangeSeparators[strings.ToLower(strings.TrimSpace(between))]
}
