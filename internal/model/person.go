// internal/model/person.go
package model

// Person is a prospect as stored inside a campaign.
type Person struct {
	Name             string `json:"name" bson:"name"`
	Title            string `json:"title" bson:"title"`
	Email            string `json:"email" bson:"email"`
	OrganizationName string `json:"organization_name" bson:"organization_name"`
	LinkedinURL      string `json:"linkedin_url" bson:"linkedin_url"`
}

// Contact is a company entry of a campaign.
type Contact struct {
	Company string `json:"company" bson:"company"`
	Domain  string `json:"domain" bson:"domain"`
}

// RawPerson is a person record as received from an ingestion path (workflow
// response, file import). Every field may be missing.
type RawPerson struct {
	Name             *string `json:"name"`
	Title            *string `json:"title"`
	Email            *string `json:"email"`
	OrganizationName *string `json:"organization_name"`
	LinkedinURL      *string `json:"linkedin_url"`
}

type RawContact struct {
	Company *string `json:"company"`
	Domain  *string `json:"domain"`
}

// CompanyGroup is one company bucket of the grouped prospect view.
type CompanyGroup struct {
	Company string   `json:"company"`
	People  []Person `json:"people"`
}
