package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/intrafeed/intrafeed/models"
)

// serviceKeywords maps accent-free, lower-case directory vocabulary to a department.
// Entries are checked in order; the first match wins.
var serviceKeywords = []struct {
	service  models.Service
	keywords []string
}{
	{models.ServiceRH, []string{"rh", "hr", "ressources humaines", "human resources", "people", "recrutement", "talent"}},
	{models.ServiceComptabilite, []string{"comptabilite", "comptable", "accounting", "finance", "tresorerie", "controle de gestion"}},
	{models.ServiceInformatique, []string{"informatique", "it", "dsi", "si", "systemes d information", "digital", "numerique", "tech", "developpement"}},
	{models.ServiceLogistique, []string{"logistique", "logistics", "supply chain", "entrepot", "transport", "expedition"}},
	{models.ServiceAchat, []string{"achat", "achats", "purchasing", "procurement", "approvisionnement"}},
	{models.ServiceMarketing, []string{"marketing", "communication", "brand", "marque"}},
	{models.ServiceCommerce, []string{"commerce", "commercial", "commerciale", "vente", "ventes", "sales", "business development"}},
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lower-cases, strips accents and collapses punctuation into single spaces.
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

// InferService maps a free-text directory department to a service.
// The mapping is best effort; anything unrecognised lands in general.
func InferService(department string) models.Service {
	text := foldText(department)
	if text == "" {
		return models.ServiceGeneral
	}
	padded := " " + text + " "
	for _, entry := range serviceKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return entry.service
			}
		}
	}
	return models.ServiceGeneral
}

// InferRole returns the directory job title, or the default role when empty.
func InferRole(jobTitle string) string {
	if role := strings.TrimSpace(jobTitle); role != "" {
		return role
	}
	return models.DefaultRole
}
