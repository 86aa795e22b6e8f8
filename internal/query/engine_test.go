package query

import (
	"sync"
	"testing"

	"github.com/AlirezaFarnia/PsyNeuLink/internal/index"
)

func build(t *testing.T, docs []index.Document, objects []index.Object) *index.Snapshot {
	t.Helper()
	snap, err := index.Build(docs, objects, index.BuildConfig{Stamp: "test"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return snap
}

func TestTitleOutranksBody(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "a/body", Title: "Other Page", Body: "The scheduler appears once here."},
		{ID: "b/title", Title: "Scheduler", Body: "Nothing relevant."},
	}, nil)

	results := Search("scheduler", snap)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != "b/title" {
		t.Errorf("top result = %q, want title match first", results[0].Document.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("title score %v not strictly above body score %v", results[0].Score, results[1].Score)
	}
}

func TestObjectOutranksBody(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "a/body", Title: "Page A", Body: "Uses gating throughout. gating gating"},
		{ID: "b/object", Title: "Page B", Body: ""},
	}, []index.Object{
		{Name: "GatingSignal.gating", DocID: "b/object", Kind: "attribute"},
	})

	results := Search("gating", snap)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != "b/object" {
		t.Errorf("top result = %q, want object match first", results[0].Document.ID)
	}
}

func TestExactOutranksPrefix(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "a/exact", Title: "Mechanism"},
		{ID: "b/prefix", Title: "MechanismRegistry"},
	}, nil)

	results := Search("mechanism", snap)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != "a/exact" {
		t.Errorf("top result = %q, want exact title match first", results[0].Document.ID)
	}
}

func TestPrefixMatchesTitle(t *testing.T) {
	snap := build(t, []index.Document{{ID: "core/scheduler", Title: "Scheduler"}}, nil)

	results := Search("Sched", snap)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	m := results[0].Matches
	if len(m) != 1 || m[0].Category != TitlePrefix || m[0].IndexTerm != "scheduler" {
		t.Errorf("matches = %+v, want one title_prefix on scheduler", m)
	}
}

func TestBodyFrequencyOrdersWithinCategory(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "a/once", Title: "A", Body: "composition"},
		{ID: "b/thrice", Title: "B", Body: "composition composition composition"},
	}, nil)

	results := Search("composition", snap)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != "b/thrice" {
		t.Errorf("top result = %q, want frequent body match first", results[0].Document.ID)
	}
}

func TestAndSemantics(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "a/both", Title: "Control", Body: "The control mechanism modulates parameters."},
		{ID: "b/control", Title: "Control Only", Body: "control signals"},
		{ID: "c/mechanism", Title: "Mechanism Only", Body: "a mechanism"},
	}, nil)

	results := Search("control mechanism", snap)
	if len(results) != 1 {
		t.Fatalf("got %d results, want only the document matching both terms", len(results))
	}
	if results[0].Document.ID != "a/both" {
		t.Errorf("result = %q, want a/both", results[0].Document.ID)
	}
}

func TestTieBreakByIdentifier(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "z/page", Title: "Transfer"},
		{ID: "a/page", Title: "Transfer"},
	}, nil)

	results := Search("transfer", snap)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("scores differ: %v vs %v", results[0].Score, results[1].Score)
	}
	if results[0].Document.ID != "a/page" {
		t.Errorf("tie broken as %q first, want a/page", results[0].Document.ID)
	}
}

func TestEmptyAndUnmatchedQueries(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "core/scheduler", Title: "Scheduler", Body: "the scheduler"},
	}, nil)

	for _, q := range []string{"", "   ", "...", "zzzzz"} {
		if results := Search(q, snap); len(results) != 0 {
			t.Errorf("Search(%q) = %d results, want 0", q, len(results))
		}
	}
	// A query that is itself a stopword finds no body postings (they were
	// never indexed) and no error.
	if results := Search("the", snap); len(results) != 0 {
		t.Errorf("stopword query returned %d results", len(results))
	}
}

func TestObjectMatchCarriesObjectOrdinal(t *testing.T) {
	snap := build(t, []index.Document{{ID: "core/scheduler", Title: "Scheduling"}}, []index.Object{
		{Name: "Scheduler", DocID: "core/scheduler", Anchor: "scheduler", Kind: "class"},
	})

	results := Search("scheduler", snap)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	var objectMatch *Match
	for i := range results[0].Matches {
		if results[0].Matches[i].Category == ObjectExact {
			objectMatch = &results[0].Matches[i]
		}
	}
	if objectMatch == nil {
		t.Fatalf("no object_exact match in %+v", results[0].Matches)
	}
	if snap.Object(objectMatch.Object).Anchor != "scheduler" {
		t.Errorf("match ordinal resolves to %+v", snap.Object(objectMatch.Object))
	}
}

func TestDuplicateQueryTermsCountOnce(t *testing.T) {
	snap := build(t, []index.Document{{ID: "d", Title: "Scheduler"}}, nil)
	once := Search("scheduler", snap)
	twice := Search("scheduler scheduler", snap)
	if len(once) != 1 || len(twice) != 1 {
		t.Fatalf("result counts: %d and %d, want 1 and 1", len(once), len(twice))
	}
	if once[0].Score != twice[0].Score {
		t.Errorf("duplicate query term changed score: %v vs %v", once[0].Score, twice[0].Score)
	}
}

func TestConcurrentSearch(t *testing.T) {
	snap := build(t, []index.Document{
		{ID: "core/scheduler", Title: "Scheduler", Body: "scheduler runs passes"},
		{ID: "core/mechanism", Title: "Mechanism", Body: "mechanism transforms input"},
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if results := Search("scheduler", snap); len(results) != 1 {
					t.Errorf("concurrent search returned %d results", len(results))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkSearch(b *testing.B) {
	docs := make([]index.Document, 0, 200)
	for i := 0; i < 200; i++ {
		docs = append(docs, index.Document{
			ID:    "page/" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Title: "Processing Mechanism Reference",
			Body:  "The processing mechanism transforms its input and reports the result to the composition scheduler.",
		})
	}
	snap, err := index.Build(docs, nil, index.BuildConfig{})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Search("mechanism scheduler", snap)
	}
}
