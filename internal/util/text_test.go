package util

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	got := NormalizeWhitespace("  btc \t to\n the   moon ")
	if got != "btc to the moon" {
		t.Fatalf("got %q", got)
	}
}

func TestContainsAnyFold(t *testing.T) {
	needles := []string{"bitcoin", "defi"}
	if !ContainsAnyFold("Big BITCOIN move today", needles) {
		t.Fatal("case-insensitive match failed")
	}
	if ContainsAnyFold("nothing to see here", needles) {
		t.Fatal("false positive")
	}
}

func TestCountMatchesFold(t *testing.T) {
	needles := []string{"bitcoin", "defi", "nft"}
	if got := CountMatchesFold("Bitcoin and DeFi are moving", needles); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if got := CountMatchesFold("", needles); got != 0 {
		t.Fatalf("count on empty = %d", got)
	}
}

func TestRunePrefix(t *testing.T) {
	if got := RunePrefix("héllo wörld", 5); got != "héllo" {
		t.Fatalf("got %q", got)
	}
	if got := RunePrefix("gm", 100); got != "gm" {
		t.Fatalf("short string changed: %q", got)
	}
}

func TestCleanUsername(t *testing.T) {
	if got := CleanUsername("  @alphacaller "); got != "alphacaller" {
		t.Fatalf("got %q", got)
	}
	if got := CleanUsername("alphacaller"); got != "alphacaller" {
		t.Fatalf("got %q", got)
	}
}
