package notify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{65, "1h05"},
		{120, "2h"},
		{30, "30min"},
		{0, "0min"},
		{90, "1h30"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.minutes); got != tc.want {
			t.Fatalf("formatDuration(%d) = %q; want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestPreliminaryQuoteBody_VehicleFallback(t *testing.T) {
	quote := decimal.RequireFromString("85.50")

	body := PreliminaryQuoteBody("Jean", domain.VehicleScooter, nil, nil, quote, 65, 3)

	if !strings.Contains(body, "Bonjour Jean,") {
		t.Fatalf("missing greeting:\n%s", body)
	}
	if !strings.Contains(body, "Trottinette") {
		t.Fatalf("expected vehicle-type fallback in body:\n%s", body)
	}
	if !strings.Contains(body, "Nombre de points à corriger : 3") {
		t.Fatalf("missing defect count:\n%s", body)
	}
	if !strings.Contains(body, "1h05") {
		t.Fatalf("missing formatted duration:\n%s", body)
	}
	if !strings.Contains(body, "€") {
		t.Fatalf("missing amount:\n%s", body)
	}
}

func TestPreliminaryQuoteBody_UsesBrandAndModel(t *testing.T) {
	brand, model := "Decathlon", "Riverside 500"
	body := PreliminaryQuoteBody("Jean", domain.VehicleBike, &brand, &model,
		decimal.RequireFromString("40"), 30, 1)

	if !strings.Contains(body, "Decathlon Riverside 500") {
		t.Fatalf("expected brand+model in body:\n%s", body)
	}
}

func TestCompletionClientBody(t *testing.T) {
	body := CompletionClientBody("Marie", domain.VehicleBike)

	if !strings.Contains(body, "Bonjour Marie,") {
		t.Fatalf("missing greeting:\n%s", body)
	}
	if !strings.Contains(body, "vélo est prêt") {
		t.Fatalf("missing ready notice:\n%s", body)
	}
}

func TestCompletionBillingBody_NilFinalQuote(t *testing.T) {
	body := CompletionBillingBody("r-1", "Marie", domain.VehicleScooter, nil)

	if !strings.Contains(body, "Montant final : Non spécifié") {
		t.Fatalf("nil final quote must render as Non spécifié:\n%s", body)
	}
	if !strings.Contains(body, "ID Réparation : r-1") {
		t.Fatalf("missing repair id:\n%s", body)
	}
	if !strings.Contains(body, "trottinette") {
		t.Fatalf("missing vehicle noun:\n%s", body)
	}
}

func TestCompletionBillingBody_WithFinalQuote(t *testing.T) {
	q := decimal.RequireFromString("120.00")
	body := CompletionBillingBody("r-2", "Jean", domain.VehicleBike, &q)

	if strings.Contains(body, "Non spécifié") {
		t.Fatalf("final quote present, must not render Non spécifié:\n%s", body)
	}
	if !strings.Contains(body, "120,00") {
		t.Fatalf("expected French-formatted amount:\n%s", body)
	}
}
