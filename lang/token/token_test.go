package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestGoStringQuotesPunctuation(t *testing.T) {
	if got, want := PLUS.GoString(), "'+'"; got != want {
		t.Errorf("PLUS.GoString() = %q, want %q", got, want)
	}
	if got, want := IF.GoString(), "if"; got != want {
		t.Errorf("IF.GoString() = %q, want %q", got, want)
	}
}

func TestKeywordsRoundtrip(t *testing.T) {
	for tok := AND; tok < maxToken; tok++ {
		if tok == FOR_INTERFACE {
			continue
		}
		if !tok.IsKeyword() {
			t.Errorf("%v should be a keyword", tok)
		}
		if got := Keywords[tok.String()]; got != tok {
			t.Errorf("Keywords[%q] = %v, want %v", tok.String(), got, tok)
		}
	}
	if PLUS.IsKeyword() {
		t.Errorf("PLUS should not be a keyword")
	}
}
