// internal/service/import_service.go
package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/logger"
	"github.com/unclebandit/aisdr-backend/internal/model"
	"github.com/unclebandit/aisdr-backend/internal/repository"
)

// headerAliases maps normalized column headers to person fields.
var headerAliases = map[string]string{
	"name":              "name",
	"full_name":         "name",
	"fullname":          "name",
	"title":             "title",
	"job_title":         "title",
	"position":          "title",
	"email":             "email",
	"email_address":     "email",
	"organization_name": "organization_name",
	"organization":      "organization_name",
	"company":           "organization_name",
	"company_name":      "organization_name",
	"linkedin_url":      "linkedin_url",
	"linkedin":          "linkedin_url",
	"linkedin_profile":  "linkedin_url",
}

// ParseProspects reads a .csv or .xlsx file whose first row is a header.
// Unknown columns are ignored and blank rows skipped.
func ParseProspects(filename string, r io.Reader) ([]model.RawPerson, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	default:
		return nil, appErrors.NewValidation("file", fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename)))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appErrors.NewValidation("file", "file is empty")
	}

	columns := make(map[int]string)
	for i, h := range rows[0] {
		key := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(h)))
		if field, ok := headerAliases[key]; ok {
			columns[i] = field
		}
	}
	if len(columns) == 0 {
		return nil, appErrors.NewValidation("file", "no recognizable columns in header row")
	}

	people := []model.RawPerson{}
	for _, row := range rows[1:] {
		var p model.RawPerson
		blank := true
		for i, cell := range row {
			field, ok := columns[i]
			if !ok || strings.TrimSpace(cell) == "" {
				continue
			}
			blank = false
			v := cell
			switch field {
			case "name":
				p.Name = &v
			case "title":
				p.Title = &v
			case "email":
				p.Email = &v
			case "organization_name":
				p.OrganizationName = &v
			case "linkedin_url":
				p.LinkedinURL = &v
			}
		}
		if !blank {
			people = append(people, p)
		}
	}
	return people, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, appErrors.NewValidation("file", fmt.Sprintf("invalid csv: %v", err))
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.NewValidation("file", fmt.Sprintf("invalid spreadsheet: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.NewValidation("file", "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// ContactsFromPeople derives one contact per distinct organization, taking
// the domain from the first addressable email seen for it.
func ContactsFromPeople(people []model.Person) []model.Contact {
	contacts := []model.Contact{}
	index := make(map[string]int)
	for _, p := range people {
		if p.OrganizationName == "" || p.OrganizationName == UnknownCompany {
			continue
		}
		domain := emailDomain(p)
		if i, ok := index[p.OrganizationName]; ok {
			if contacts[i].Domain == NotAvailable && domain != "" {
				contacts[i].Domain = domain
			}
			continue
		}
		company := p.OrganizationName
		raw := model.RawContact{Company: &company}
		if domain != "" {
			raw.Domain = &domain
		}
		index[company] = len(contacts)
		contacts = append(contacts, NormalizeContact(raw))
	}
	return contacts
}

func emailDomain(p model.Person) string {
	if !Addressable(p) {
		return ""
	}
	at := strings.LastIndex(p.Email, "@")
	if at < 0 || at == len(p.Email)-1 {
		return ""
	}
	return strings.ToLower(p.Email[at+1:])
}

type ImportOptions struct {
	Save bool
	Name string
}

type ImportResult struct {
	CampaignPeople   []model.Person  `json:"campaignPeople"`
	CampaignContacts []model.Contact `json:"campaignContacts"`
	Campaign         *model.Campaign `json:"campaign,omitempty"`
}

type ImportService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Logger       *zap.Logger
}

// Import parses and normalizes a prospect file. With Save set the result is
// stored as a new campaign.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	log := logger.OrNop(s.Logger)

	raw, err := ParseProspects(filename, r)
	if err != nil {
		var verr *appErrors.ValidationError
		if !errors.As(err, &verr) {
			log.Error("import failed", zap.String("file", filename), zap.Error(err))
		}
		return nil, err
	}
	if len(raw) == 0 {
		return nil, appErrors.NewValidation("file", "file contains no prospects")
	}

	people := NormalizePeople(raw)
	result := &ImportResult{
		CampaignPeople:   people,
		CampaignContacts: ContactsFromPeople(people),
	}

	if opts.Save {
		name := strings.TrimSpace(opts.Name)
		if name == "" {
			name = "Import: " + filepath.Base(filename)
		}
		c := &model.Campaign{
			Name:             name,
			CampaignPeople:   result.CampaignPeople,
			CampaignContacts: result.CampaignContacts,
		}
		if err := s.CampaignRepo.Insert(ctx, c); err != nil {
			return nil, err
		}
		result.Campaign = c
	}

	log.Info("prospects imported",
		zap.String("file", filename),
		zap.Int("people", len(result.CampaignPeople)),
		zap.Bool("saved", opts.Save))
	return result, nil
}
