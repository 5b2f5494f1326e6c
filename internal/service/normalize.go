package service

import (
	"strings"

	"github.com/unclebandit/aisdr-backend/internal/model"
)

// Sentinels used for fields an ingestion path did not provide.
const (
	NotAvailable   = "Not Available"
	UnknownCompany = "Unknown Company"
	Unknown        = "Unknown"
)

func orDefault(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return fallback
	}
	return s
}

// NormalizePerson turns an ingested record into a complete Person. Every
// ingestion path (workflow response, file import) goes through here.
func NormalizePerson(raw model.RawPerson) model.Person {
	return model.Person{
		Name:             orDefault(raw.Name, NotAvailable),
		Title:            orDefault(raw.Title, NotAvailable),
		Email:            orDefault(raw.Email, NotAvailable),
		OrganizationName: orDefault(raw.OrganizationName, UnknownCompany),
		LinkedinURL:      orDefault(raw.LinkedinURL, NotAvailable),
	}
}

func NormalizeContact(raw model.RawContact) model.Contact {
	return model.Contact{
		Company: orDefault(raw.Company, Unknown),
		Domain:  orDefault(raw.Domain, NotAvailable),
	}
}

// NormalizePeople never returns nil, so the result is always a valid
// campaignPeople value.
func NormalizePeople(raws []model.RawPerson) []model.Person {
	out := make([]model.Person, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizePerson(r))
	}
	return out
}

func NormalizeContacts(raws []model.RawContact) []model.Contact {
	out := make([]model.Contact, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeContact(r))
	}
	return out
}

// Addressable reports whether a person has a usable email, the key drafts and
// selections are tracked by.
func Addressable(p model.Person) bool {
	return p.Email != "" && p.Email != NotAvailable
}
