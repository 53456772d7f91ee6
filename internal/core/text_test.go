// ABOUTME: Tests for text cleaning and legal-domain detection
package core

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses spaces", "The  court   held", "The court held"},
		{"strips page markers", "intro --- Page 3 --- body", "intro body"},
		{"normalizes rupee sign", "a fine of ₹5000", "a fine of Rs.5000"},
		{"trims ends", "  text  ", "text"},
		{"preserves newlines", "clause one\nclause two", "clause one\nclause two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectLegalDomain(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"criminal", "The accused faces punishment for the offence; bail was refused during investigation.", "criminal"},
		{"constitutional", "Article 21 of the Constitution guarantees fundamental rights.", "constitutional"},
		{"civil", "The plaintiff seeks damages for breach of contract and an injunction.", "civil"},
		{"family", "Proceedings for divorce, custody and maintenance of the minor child.", "family"},
		{"corporate", "The company's director approved the transfer of shares.", "corporate"},
		{"no match", "The weather in September was unusually mild.", "general"},
		{"empty", "", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLegalDomain(tt.text); got != tt.want {
				t.Errorf("DetectLegalDomain() = %q, want %q", got, tt.want)
			}
		})
	}
}
