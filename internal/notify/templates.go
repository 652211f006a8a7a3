package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// Email subjects. The shop corresponds in French.
const (
	SubjectPreliminaryQuote = "Devis préliminaire - Les Cycles Larivière"
	SubjectVehicleReady     = "Votre véhicule est prêt - Les Cycles Larivière"
	SubjectReadyForBilling  = "Réparation terminée - Prêt pour facturation"
)

// euros renders amounts with French number formatting ("1 234,50 €").
var euros = message.NewPrinter(language.French)

func formatEuro(d decimal.Decimal) string {
	return euros.Sprintf("%.2f €", d.InexactFloat64())
}

// vehicleNoun maps a vehicle type to its French noun.
func vehicleNoun(vt domain.VehicleType) string {
	if vt == domain.VehicleScooter {
		return "trottinette"
	}
	return "vélo"
}

// formatDuration renders estimated labor the way the shop writes it:
// "1h05", "2h", "30min".
func formatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		if m > 0 {
			return fmt.Sprintf("%dh%02d", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dmin", m)
}

// PreliminaryQuoteBody is the email sent to the client at the end of intake,
// summarizing the diagnostic and the estimated amount. Brand and model are
// used when both are known, otherwise the vehicle noun stands in.
func PreliminaryQuoteBody(clientName string, vt domain.VehicleType, brand, model *string, quote decimal.Decimal, laborMinutes, defectCount int) string {
	vehicleInfo := "Vélo"
	if vt == domain.VehicleScooter {
		vehicleInfo = "Trottinette"
	}
	if brand != nil && model != nil {
		vehicleInfo = *brand + " " + *model
	}
	return strings.TrimSpace(fmt.Sprintf(`
Bonjour %s,

Nous avons effectué le diagnostic de votre %s.

RÉSUMÉ DU DIAGNOSTIC :
- Nombre de points à corriger : %d
- Temps de réparation estimé : %s
- Montant estimé : %s

Ce devis est préliminaire et basé sur notre diagnostic initial. Le montant final pourra légèrement varier en fonction des pièces réellement nécessaires.

Nous vous contacterons prochainement pour confirmer votre accord et planifier la réparation.

Cordialement,
L'équipe Les Cycles Larivière
`, clientName, vehicleInfo, defectCount, formatDuration(laborMinutes), formatEuro(quote)))
}

// CompletionClientBody is the "ready for pickup" notice sent to the client
// when a repair enters the completed state.
func CompletionClientBody(clientName string, vt domain.VehicleType) string {
	v := vehicleNoun(vt)
	return strings.TrimSpace(fmt.Sprintf(`
Bonjour %s,

Bonne nouvelle ! Votre %s est prêt à être récupéré.

La réparation a été effectuée avec succès. Vous pouvez venir chercher votre %s à notre magasin pendant nos heures d'ouverture.

Merci de votre confiance.

Cordialement,
L'équipe Les Cycles Larivière
`, clientName, v, v))
}

// CompletionBillingBody is the internal notice sent to the shop mailbox when
// a repair enters the completed state. A missing final quote renders as
// "Non spécifié" rather than zero.
func CompletionBillingBody(repairID, clientName string, vt domain.VehicleType, finalQuote *decimal.Decimal) string {
	quoteInfo := "Non spécifié"
	if finalQuote != nil {
		quoteInfo = formatEuro(*finalQuote)
	}
	return strings.TrimSpace(fmt.Sprintf(`
Une réparation a été marquée comme terminée.

DÉTAILS :
- ID Réparation : %s
- Client : %s
- Véhicule : %s
- Montant final : %s

Le travail est achevé et prêt pour facturation.

Le client a été notifié que son véhicule est prêt à être récupéré.
`, repairID, clientName, vehicleNoun(vt), quoteInfo))
}
