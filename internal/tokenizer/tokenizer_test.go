package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		cfg  Config
		want []string
	}{
		{
			name: "lowercases and splits on spaces",
			text: "Transfer Mechanism",
			want: []string{"transfer", "mechanism"},
		},
		{
			name: "splits on punctuation",
			text: "core.components.functions",
			want: []string{"core", "components", "functions"},
		},
		{
			name: "underscore and hyphen are separators by default",
			text: "log_softmax soft-max",
			want: []string{"log", "softmax", "soft", "max"},
		},
		{
			name: "preserve compound keeps underscores and hyphens",
			text: "log_softmax soft-max",
			cfg:  Config{PreserveCompound: true},
			want: []string{"log_softmax", "soft-max"},
		},
		{
			name: "preserve compound drops bare separator runs",
			text: "a ___ b",
			cfg:  Config{PreserveCompound: true},
			want: []string{"a", "b"},
		},
		{
			name: "separator runs collapse",
			text: "alpha...beta---gamma",
			want: []string{"alpha", "beta", "gamma"},
		},
		{
			name: "digits survive",
			text: "DDM v2",
			want: []string{"ddm", "v2"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "only separators",
			text: " .,;:!?",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Terms(tt.text, tt.cfg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Terms(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := Tokenize("the quick, brown fox", Config{})
	for i, tok := range tokens {
		if tok.Position != i {
			t.Errorf("token %d has position %d", i, tok.Position)
		}
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	const text = "Composition adds a ProcessingMechanism to the pathway_spec"
	for _, cfg := range []Config{{}, {PreserveCompound: true}} {
		first := Tokenize(text, cfg)
		second := Tokenize(text, cfg)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("cfg %+v: repeated tokenization differs: %v vs %v", cfg, first, second)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	const text = "The ControlMechanism monitors the OutputPort of each ProcessingMechanism " +
		"in the Composition and modulates the parameters of its function_object."
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Tokenize(text, Config{})
	}
}
