package aggregate

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func resp(qid, cid string, offset int, ratings []int, employee string) response.Response {
	return response.New(qid, cid, ratings, employee, t0.Add(time.Duration(offset)*time.Second))
}

func TestComputeRatingExample(t *testing.T) {
	q := &question.Question{ID: "q1", Domain: "HR", Payload: question.Rating{Text: "?", Options: []string{"A", "B"}}}
	all := []response.Response{
		resp("q1", "c1", 0, []int{3, 5}, ""),
		resp("q1", "c2", 1, []int{1, 5}, ""),
	}

	got := Compute(q, all)
	if got.Total != 2 {
		t.Fatalf("expected total 2, got %d", got.Total)
	}
	opt0, opt1 := got.Options[0], got.Options[1]
	if opt0.Histogram != [5]int{1, 0, 1, 0, 0} {
		t.Fatalf("option 0 histogram = %v", opt0.Histogram)
	}
	if opt0.Average != 2.0 || opt0.Percentage != 40 {
		t.Fatalf("option 0 avg/pct = %v/%d, want 2/40", opt0.Average, opt0.Percentage)
	}
	if opt0.Band != "Slightly useful" {
		t.Fatalf("option 0 band = %s", opt0.Band)
	}
	if opt1.Histogram != [5]int{0, 0, 0, 0, 2} {
		t.Fatalf("option 1 histogram = %v", opt1.Histogram)
	}
	if opt1.Average != 5.0 || opt1.Percentage != 100 || opt1.Band != "Most useful" {
		t.Fatalf("option 1 = %+v", opt1)
	}
}

func TestComputeZeroResponses(t *testing.T) {
	q := &question.Question{ID: "q1", Payload: question.Rating{Text: "?", Options: []string{"A", "B", "C"}}}
	got := Compute(q, []response.Response{resp("other", "c1", 0, []int{5, 5, 5}, "")})
	if got.Total != 0 {
		t.Fatalf("expected no matching responses, got %d", got.Total)
	}
	for _, o := range got.Options {
		if o.Average != 0 || o.Percentage != 0 {
			t.Fatalf("expected zero stats for option %d, got %+v", o.Index, o)
		}
	}

	truth := &question.Question{ID: "t", Payload: question.Truth{Statements: []string{"a", "b"}}}
	for _, s := range Compute(truth, nil).Statements {
		if s.Percentage != 0 {
			t.Fatalf("expected 0%%, got %d", s.Percentage)
		}
	}
}

func TestComputeNilQuestion(t *testing.T) {
	got := Compute(nil, []response.Response{resp("q1", "c1", 0, []int{1}, "")})
	if !reflect.DeepEqual(got, Result{}) {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestComputeHistogramSumsMatchTotal(t *testing.T) {
	q := &question.Question{ID: "q1", Payload: question.Rating{Text: "?", Options: []string{"A", "B"}}}
	var all []response.Response
	for i := 0; i < 17; i++ {
		all = append(all, resp("q1", string(rune('a'+i)), i, []int{i%5 + 1, (i+2)%5 + 1}, ""))
	}
	got := Compute(q, all)
	for _, o := range got.Options {
		sum := 0
		for _, c := range o.Histogram {
			sum += c
		}
		if sum != got.Total {
			t.Fatalf("option %d histogram sum %d != total %d", o.Index, sum, got.Total)
		}
	}
}

func TestComputeTruth(t *testing.T) {
	q := &question.Question{ID: "q1", Domain: "Truth", Payload: question.Truth{Statements: []string{"a", "b", "c"}}}
	all := []response.Response{
		resp("q1", "c1", 0, []int{2}, ""),
		resp("q1", "c2", 1, []int{2}, ""),
		resp("q1", "c3", 2, []int{1}, ""),
		resp("q1", "c4", 3, []int{9}, ""),
	}
	got := Compute(q, all)
	want := []int{1, 2, 0}
	for i, s := range got.Statements {
		if s.Count != want[i] {
			t.Fatalf("statement %d count = %d, want %d", i, s.Count, want[i])
		}
	}
	if got.Statements[1].Percentage != 50 || got.Statements[0].Percentage != 25 {
		t.Fatalf("unexpected percentages %+v", got.Statements)
	}
}

func TestComputeMemeRanksByVotesThenFirstAppearance(t *testing.T) {
	q := &question.Question{ID: "q1", Domain: "Meme", Payload: question.Meme{MediaType: question.MediaImage, MediaURL: "u"}}
	all := []response.Response{
		resp("q1", "c1", 0, nil, "Jane Smith"),
		resp("q1", "c2", 1, nil, "John Doe"),
		resp("q1", "c3", 2, nil, "John Doe"),
		resp("q1", "c4", 3, nil, "Mike Johnson"),
		resp("q1", "c5", 4, nil, "Jane Smith"),
		resp("q1", "c6", 5, nil, "David Brown"),
	}
	got := Compute(q, all)
	names := make([]string, len(got.Employees))
	for i, e := range got.Employees {
		names[i] = e.Employee
	}
	want := []string{"Jane Smith", "John Doe", "Mike Johnson", "David Brown"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("ranking = %v, want %v", names, want)
	}
	if got.Employees[0].Percentage != 33 || got.Employees[0].Rank != 1 {
		t.Fatalf("unexpected top tally %+v", got.Employees[0])
	}
}

func TestComputeIsOrderIndependent(t *testing.T) {
	q := &question.Question{ID: "q1", Domain: "Meme", Payload: question.Meme{MediaType: question.MediaVideo, MediaURL: "u"}}
	var all []response.Response
	employees := []string{"A", "B", "C"}
	for i := 0; i < 12; i++ {
		all = append(all, resp("q1", string(rune('a'+i)), i, nil, employees[i%3]))
	}
	want := Compute(q, all)

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		shuffled := append([]response.Response(nil), all...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		if got := Compute(q, shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: result depends on scan order", round)
		}
	}
}

func TestBandFor(t *testing.T) {
	cases := map[int]string{
		0: "Not useful", 20: "Not useful", 21: "Slightly useful", 40: "Slightly useful",
		60: "Useful", 61: "Very useful", 80: "Very useful", 81: "Most useful", 100: "Most useful",
	}
	for pct, want := range cases {
		if got := BandFor(pct); got != want {
			t.Errorf("BandFor(%d) = %s, want %s", pct, got, want)
		}
	}
}
