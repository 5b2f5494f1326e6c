// internal/service/template_service.go
package service

import (
	"strings"

	"github.com/unclebandit/aisdr-backend/internal/model"
)

// RenderTemplate replaces every [KEY] occurrence with its value.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "["+k+"]", v)
	}
	return result
}

// RenderForPerson fills [NAME] and [COMPANY] from the prospect.
func RenderForPerson(template string, p model.Person) string {
	name := p.Name
	if name == "" {
		name = "there"
	}
	company := p.OrganizationName
	if company == "" {
		company = "your company"
	}
	return RenderTemplate(template, map[string]string{
		"NAME":    name,
		"COMPANY": company,
	})
}
