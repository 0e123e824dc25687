package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// --- stub provider ---

type stubProvider struct {
	name    string
	records []types.BibliographicRecord
	err     error
	calls   int
	order   *[]string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, _ types.SearchQuery) ([]types.BibliographicRecord, error) {
	s.calls++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	return s.records, s.err
}

func rec(title, source string) types.BibliographicRecord {
	return types.BibliographicRecord{Title: title, Source: source, Author: "Doe et al.", Year: 2024, Identifier: "-"}
}

func healthQuery() types.SearchQuery {
	return types.SearchQuery{Field: "Kesehatan/Keperawatan", Keyword: "stunting", Limit: 10, MaxAgeYears: 5}
}

// --- dispatch ---

func TestIsHealthField(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"Kesehatan/Keperawatan", true},
		{"Kedokteran", true},
		{"kedokteran gigi", true},
		{"Public Health", true},
		{"Teknik", false},
		{"Ekonomi", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := IsHealthField(tt.field); got != tt.want {
				t.Errorf("IsHealthField(%q) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestRunDispatchHealthQueriesBothInOrder(t *testing.T) {
	var order []string
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", order: &order},
		General:    &stubProvider{name: "crossref", order: &order},
	}
	if _, err := a.Run(context.Background(), healthQuery()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fmt.Sprint(order) != "[pubmed crossref]" {
		t.Errorf("provider order = %v, want [pubmed crossref]", order)
	}
}

func TestRunDispatchOtherFieldSkipsSpecialist(t *testing.T) {
	specialist := &stubProvider{name: "pubmed"}
	general := &stubProvider{name: "crossref"}
	a := &Aggregator{Specialist: specialist, General: general}

	q := healthQuery()
	q.Field = "Teknik"
	if _, err := a.Run(context.Background(), q); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if specialist.calls != 0 {
		t.Errorf("specialist called %d times, want 0", specialist.calls)
	}
	if general.calls != 1 {
		t.Errorf("general called %d times, want 1", general.calls)
	}
}

func TestRunQueriesGeneralEvenWhenSpecialistFillsLimit(t *testing.T) {
	general := &stubProvider{name: "crossref"}
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", records: []types.BibliographicRecord{rec("A", "pubmed"), rec("B", "pubmed")}},
		General:    general,
	}
	q := healthQuery()
	q.Limit = 2
	out, err := a.Run(context.Background(), q)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if general.calls != 1 {
		t.Errorf("general called %d times, want 1", general.calls)
	}
	if len(out.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2", len(out.Records))
	}
}

// --- merge ---

func TestRunDedupFirstSeenWins(t *testing.T) {
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", records: []types.BibliographicRecord{rec("Effects of X", "pubmed")}},
		General:    &stubProvider{name: "crossref", records: []types.BibliographicRecord{rec("Effects of X", "crossref"), rec("Other", "crossref")}},
	}
	out, err := a.Run(context.Background(), healthQuery())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	count := 0
	for _, r := range out.Records {
		if r.Title == "Effects of X" {
			count++
			if r.Source != "pubmed" {
				t.Errorf("duplicate kept from %q, want pubmed", r.Source)
			}
		}
	}
	if count != 1 {
		t.Errorf("found %d records titled %q, want 1", count, "Effects of X")
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
}

func TestRunExactDedupKeepsVariants(t *testing.T) {
	a := &Aggregator{
		General: &stubProvider{name: "crossref", records: []types.BibliographicRecord{
			rec("Effects of X", "crossref"),
			rec("effects of  x.", "crossref"),
		}},
	}
	q := healthQuery()
	q.Field = "Teknik"
	out, _ := a.Run(context.Background(), q)
	if len(out.Records) != 2 {
		t.Errorf("exact dedup: len(Records) = %d, want 2", len(out.Records))
	}

	a.NormalizeTitles = true
	out, _ = a.Run(context.Background(), q)
	if len(out.Records) != 1 {
		t.Errorf("normalized dedup: len(Records) = %d, want 1", len(out.Records))
	}
}

func TestRunTruncatesToLimit(t *testing.T) {
	var pub, cr []types.BibliographicRecord
	for i := 0; i < 5; i++ {
		pub = append(pub, rec(fmt.Sprintf("P%d", i), "pubmed"))
		cr = append(cr, rec(fmt.Sprintf("C%d", i), "crossref"))
	}
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", records: pub},
		General:    &stubProvider{name: "crossref", records: cr},
	}
	q := healthQuery()
	q.Limit = 5
	out, err := a.Run(context.Background(), q)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Records) != 5 {
		t.Fatalf("len(Records) = %d, want 5", len(out.Records))
	}
	for i, r := range out.Records {
		if r.Source != "pubmed" {
			t.Errorf("Records[%d].Source = %q, want pubmed first", i, r.Source)
		}
	}
}

// --- failures ---

func TestRunFullOutageReturnsEmpty(t *testing.T) {
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", err: errors.New("connection refused")},
		General:    &stubProvider{name: "crossref", err: context.DeadlineExceeded},
	}
	records, err := a.Search(context.Background(), healthQuery())
	if err != nil {
		t.Fatalf("Search returned error on outage: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", records)
	}

	out, _ := a.Run(context.Background(), healthQuery())
	if len(out.ProviderErrors) != 2 {
		t.Errorf("ProviderErrors = %v, want 2 entries", out.ProviderErrors)
	}
}

func TestRunPartialOutageKeepsOtherProvider(t *testing.T) {
	a := &Aggregator{
		Specialist: &stubProvider{name: "pubmed", err: errors.New("bad xml")},
		General:    &stubProvider{name: "crossref", records: []types.BibliographicRecord{rec("Only", "crossref")}},
	}
	records, err := a.Search(context.Background(), healthQuery())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Only" {
		t.Errorf("records = %v, want the crossref record", records)
	}
}

func TestRunInvalidQueryMakesNoCalls(t *testing.T) {
	specialist := &stubProvider{name: "pubmed"}
	general := &stubProvider{name: "crossref"}
	a := &Aggregator{Specialist: specialist, General: general}

	for _, q := range []types.SearchQuery{
		{Field: "Kedokteran", Keyword: "", Limit: 5},
		{Field: "Kedokteran", Keyword: "   ", Limit: 5},
		{Field: "Kedokteran", Keyword: "x", Limit: -1},
		{Field: "Kedokteran", Keyword: "x", MaxAgeYears: -2},
	} {
		_, err := a.Search(context.Background(), q)
		if !errors.Is(err, types.ErrInvalidQuery) {
			t.Errorf("Search(%+v) err = %v, want ErrInvalidQuery", q, err)
		}
	}
	if specialist.calls+general.calls != 0 {
		t.Errorf("providers called %d times, want 0", specialist.calls+general.calls)
	}
}

func TestRunDefaultsZeroLimit(t *testing.T) {
	var many []types.BibliographicRecord
	for i := 0; i < 30; i++ {
		many = append(many, rec(fmt.Sprintf("T%d", i), "crossref"))
	}
	a := &Aggregator{General: &stubProvider{name: "crossref", records: many}}
	out, err := a.Run(context.Background(), types.SearchQuery{Field: "Hukum", Keyword: "contract"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Records) != types.DefaultSearchLimit {
		t.Errorf("len(Records) = %d, want %d", len(out.Records), types.DefaultSearchLimit)
	}
}

// --- NormalizeTitle ---

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Effects of X", "effects of x"},
		{"  Effects   of\tX. ", "effects of x"},
		{"Effects of X?!", "effects of x"},
		{"COVID-19: a review", "covid-19: a review"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
