package models

import (
	"testing"
	"time"
)

func TestAppendAnswer(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	got := AppendAnswer("Shipped the parser", "Also reviewed three PRs", at)
	want := "Shipped the parser\n\n[appended 2026-03-02T09:05:00Z]: Also reviewed three PRs"
	if got != want {
		t.Errorf("unexpected appended answer:\ngot  %q\nwant %q", got, want)
	}
}

func TestAppendAnswerNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2026, 3, 2, 10, 5, 0, 0, loc)
	got := AppendAnswer("a", "b", at)
	want := "a\n\n[appended 2026-03-02T09:05:00Z]: b"
	if got != want {
		t.Errorf("expected UTC marker, got %q", got)
	}
}

func TestAudienceString(t *testing.T) {
	if EveryoneAudience().String() != "all" {
		t.Errorf("unexpected all audience string %q", EveryoneAudience().String())
	}
	if AudienceOfRole(RoleLead).String() != "role:lead" {
		t.Errorf("unexpected role audience string %q", AudienceOfRole(RoleLead).String())
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleWorker, RoleLead, RoleManager, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	for _, role := range []string{"", "intern", "Worker"} {
		if ValidRole(role) {
			t.Errorf("expected %q to be invalid", role)
		}
	}
}
