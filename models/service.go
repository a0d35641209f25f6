package models

import "strings"

// Service identifies a company department. General is the company-wide feed.
type Service string

const (
	ServiceMarketing    Service = "marketing"
	ServiceCommerce     Service = "commerce"
	ServiceAchat        Service = "achat"
	ServiceInformatique Service = "informatique"
	ServiceLogistique   Service = "logistique"
	ServiceRH           Service = "rh"
	ServiceComptabilite Service = "comptabilité"
	ServiceGeneral      Service = "general"
)

// Services lists every accepted department in display order.
var Services = []Service{
	ServiceMarketing,
	ServiceCommerce,
	ServiceAchat,
	ServiceInformatique,
	ServiceLogistique,
	ServiceRH,
	ServiceComptabilite,
	ServiceGeneral,
}

// Valid reports whether s is one of the known departments.
func (s Service) Valid() bool {
	for _, known := range Services {
		if s == known {
			return true
		}
	}
	return false
}

// ParseService normalises raw input and validates it.
func ParseService(raw string) (Service, bool) {
	s := Service(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}
