package agent

import (
	"context"
	"errors"
	"testing"
)

func TestSuggestersModelTierWins(t *testing.T) {
	llm := &stubProvider{responses: []string{`["Follow up one?", "Follow up two?", "Follow up three?"]`}}

	got := RunSuggesters(context.Background(), DefaultSuggesters(llm), SuggestionContext{
		Query:    "What changed?",
		Response: "The deadline moved.",
	})
	if len(got) != 3 || got[0] != "Follow up one?" {
		t.Errorf("expected model suggestions, got %v", got)
	}
}

func TestSuggestersFallBackToTopicTier(t *testing.T) {
	llm := &stubProvider{err: errors.New("gateway down")}

	got := RunSuggesters(context.Background(), DefaultSuggesters(llm), SuggestionContext{
		Query: "How does KYC verification work?",
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 topic suggestions, got %v", got)
	}
	if got[0] != "What documents do I need for KYC verification?" {
		t.Errorf("expected kyc topic suggestions, got %v", got)
	}
}

func TestSuggestersStaticTierAlwaysSucceeds(t *testing.T) {
	llm := &stubProvider{err: errors.New("gateway down")}

	got := RunSuggesters(context.Background(), DefaultSuggesters(llm), SuggestionContext{
		Query: "completely unrelated question",
	})
	if len(got) < 2 || len(got) > 3 {
		t.Fatalf("expected 2-3 suggestions from the static tier, got %v", got)
	}
}

func TestSuggestersDedupeAndCap(t *testing.T) {
	llm := &stubProvider{responses: []string{`["Same?", "same?", "Other?", "Third?", "Fourth?"]`}}

	got := RunSuggesters(context.Background(), DefaultSuggesters(llm), SuggestionContext{Query: "q"})
	if len(got) != 3 {
		t.Fatalf("expected cap at 3, got %v", got)
	}
	if got[0] != "Same?" || got[1] != "Other?" || got[2] != "Third?" {
		t.Errorf("expected deduped order preserved, got %v", got)
	}
}

func TestSuggestersShortModelResultFallsThrough(t *testing.T) {
	llm := &stubProvider{responses: []string{`["Only one?"]`}}

	got := RunSuggesters(context.Background(), DefaultSuggesters(llm), SuggestionContext{
		Query: "When is the compliance deadline?",
	})
	if len(got) != 3 || got[0] != "What are the main compliance requirements for my account?" {
		t.Errorf("expected fall-through to the topic tier, got %v", got)
	}
}
