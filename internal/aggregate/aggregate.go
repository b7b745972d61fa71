// Package aggregate turns the response collection into the results of one
// question. Compute is pure: the same snapshot always yields the same
// Result whatever order the documents were scanned in.
package aggregate

import (
	"math"
	"sort"

	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
)

type Result struct {
	QuestionID string        `json:"question_id,omitempty"`
	Domain     string        `json:"domain,omitempty"`
	Kind       question.Kind `json:"kind,omitempty"`
	Total      int           `json:"total"`

	Statements []StatementCount `json:"statements,omitempty"`
	Employees  []EmployeeTally  `json:"employees,omitempty"`
	Options    []OptionStats    `json:"options,omitempty"`
}

type StatementCount struct {
	Index      int    `json:"index"`
	Statement  string `json:"statement"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type EmployeeTally struct {
	Rank       int    `json:"rank"`
	Employee   string `json:"employee"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

type OptionStats struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	// Histogram[i] counts ratings of value i+1.
	Histogram  [question.MaxRating]int `json:"histogram"`
	Average    float64                 `json:"average"`
	Percentage int                     `json:"percentage"`
	Band       string                  `json:"band"`
}

// Compute aggregates every response in all that belongs to q. A nil q
// yields the empty result.
func Compute(q *question.Question, all []response.Response) Result {
	if q == nil {
		return Result{}
	}

	matching := make([]response.Response, 0, len(all))
	for _, r := range all {
		if r.QuestionID == q.ID {
			matching = append(matching, r)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.Before(matching[j].CreatedAt)
		}
		return matching[i].ID < matching[j].ID
	})

	res := Result{
		QuestionID: q.ID,
		Domain:     q.Domain,
		Kind:       q.Kind(),
		Total:      len(matching),
	}

	switch p := q.Payload.(type) {
	case question.Truth:
		res.Statements = truthCounts(p, matching)
	case question.Meme:
		res.Employees = memeTally(matching)
	case question.Rating:
		res.Options = ratingStats(p, matching)
	}
	return res
}

func truthCounts(p question.Truth, rs []response.Response) []StatementCount {
	counts := make([]int, len(p.Statements))
	for _, r := range rs {
		if len(r.Ratings) == 0 {
			continue
		}
		idx := r.Ratings[0] - 1
		if idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}

	out := make([]StatementCount, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = StatementCount{
			Index:      i,
			Statement:  s,
			Count:      counts[i],
			Percentage: percentOf(counts[i], len(rs)),
		}
	}
	return out
}

func memeTally(rs []response.Response) []EmployeeTally {
	type pair struct{ client, employee string }
	seen := make(map[pair]struct{}, len(rs))
	votes := make(map[string]int)
	var order []string

	for _, r := range rs {
		if r.SelectedEmployee == "" {
			continue
		}
		k := pair{r.ClientID, r.SelectedEmployee}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := votes[r.SelectedEmployee]; !ok {
			order = append(order, r.SelectedEmployee)
		}
		votes[r.SelectedEmployee]++
	}

	// order is first-appearance order; the stable sort keeps it for ties.
	sort.SliceStable(order, func(i, j int) bool {
		return votes[order[i]] > votes[order[j]]
	})

	out := make([]EmployeeTally, len(order))
	for i, e := range order {
		out[i] = EmployeeTally{
			Rank:       i + 1,
			Employee:   e,
			Votes:      votes[e],
			Percentage: percentOf(votes[e], len(rs)),
		}
	}
	return out
}

func ratingStats(p question.Rating, rs []response.Response) []OptionStats {
	out := make([]OptionStats, len(p.Options))
	for i, label := range p.Options {
		out[i] = OptionStats{Index: i, Label: label}
	}

	for _, r := range rs {
		for i, v := range r.Ratings {
			if i >= len(out) || v < question.MinRating || v > question.MaxRating {
				continue
			}
			out[i].Histogram[v-1]++
		}
	}

	for i := range out {
		sum, n := 0, 0
		for b, c := range out[i].Histogram {
			sum += c * (b + 1)
			n += c
		}
		if n > 0 {
			out[i].Average = float64(sum) / float64(n)
		}
		out[i].Percentage = roundHalfUp(out[i].Average / question.MaxRating * 100)
		out[i].Band = BandFor(out[i].Percentage)
	}
	return out
}

// BandFor maps an average percentage onto its rating label.
func BandFor(pct int) string {
	switch {
	case pct <= 20:
		return question.RatingLabels[0]
	case pct <= 40:
		return question.RatingLabels[1]
	case pct <= 60:
		return question.RatingLabels[2]
	case pct <= 80:
		return question.RatingLabels[3]
	default:
		return question.RatingLabels[4]
	}
}

func percentOf(n, total int) int {
	if total == 0 {
		return 0
	}
	return roundHalfUp(float64(n) / float64(total) * 100)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
