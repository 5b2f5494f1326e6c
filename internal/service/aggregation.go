// internal/service/aggregation.go
package service

import (
	"sort"
	"strings"

	"github.com/unclebandit/aisdr-backend/internal/model"
)

// Every view here is derived from the campaigns passed in; nothing is cached
// or stored.

// LatestFirst returns a copy of campaigns ordered by createdAt descending.
// Campaigns with equal timestamps keep their relative order.
func LatestFirst(campaigns []*model.Campaign) []*model.Campaign {
	sorted := make([]*model.Campaign, len(campaigns))
	copy(sorted, campaigns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// AllProspects flattens the people of every campaign, newest campaign first,
// keeping stored order inside each campaign. Duplicates across campaigns are
// kept.
func AllProspects(campaigns []*model.Campaign) []model.Person {
	out := []model.Person{}
	for _, c := range LatestFirst(campaigns) {
		out = append(out, c.CampaignPeople...)
	}
	return out
}

// UniqueCompanies keeps the first person seen for each non-empty
// organization_name of the given campaign. limit <= 0 means no truncation.
func UniqueCompanies(campaign *model.Campaign, limit int) []model.Person {
	out := []model.Person{}
	if campaign == nil {
		return out
	}

	seen := make(map[string]bool)
	for _, p := range campaign.CampaignPeople {
		org := p.OrganizationName
		if org == "" || seen[org] {
			continue
		}
		seen[org] = true
		out = append(out, p)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CountUniqueCompanies counts distinct non-empty organization names across all
// campaigns. Unlike UniqueCompanies it is not limited to the latest campaign.
func CountUniqueCompanies(campaigns []*model.Campaign) int {
	seen := make(map[string]struct{})
	for _, c := range campaigns {
		for _, p := range c.CampaignPeople {
			if p.OrganizationName != "" {
				seen[p.OrganizationName] = struct{}{}
			}
		}
	}
	return len(seen)
}

func ComputeAnalytics(campaigns []*model.Campaign, placeholders model.Placeholders) model.Analytics {
	return model.Analytics{
		TotalProspects:    len(AllProspects(campaigns)),
		UniqueCompanies:   CountUniqueCompanies(campaigns),
		EmailsSentToday:   placeholders.EmailsSentToday,
		ResponseRate:      placeholders.ResponseRate,
		MeetingsScheduled: placeholders.MeetingsScheduled,
	}
}

// TopPeople returns the first n people of the campaign.
func TopPeople(campaign *model.Campaign, n int) []model.Person {
	out := []model.Person{}
	if campaign == nil || n <= 0 {
		return out
	}
	if n > len(campaign.CampaignPeople) {
		n = len(campaign.CampaignPeople)
	}
	return append(out, campaign.CampaignPeople[:n]...)
}

// FilterProspects keeps people whose organization_name equals company (when
// set) and whose name or organization_name contains search, ignoring case
// (when set).
func FilterProspects(people []model.Person, company, search string) []model.Person {
	needle := strings.ToLower(search)
	out := []model.Person{}
	for _, p := range people {
		if company != "" && p.OrganizationName != company {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.OrganizationName), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// titleLess orders titles case-insensitively, as they are displayed, with the
// raw title as tiebreak.
func titleLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// GroupProspects filters people, then groups them by exact organization_name.
// Groups are sorted by company name and people inside a group by title.
func GroupProspects(people []model.Person, company, search string) []model.CompanyGroup {
	buckets := make(map[string][]model.Person)
	for _, p := range FilterProspects(people, company, search) {
		buckets[p.OrganizationName] = append(buckets[p.OrganizationName], p)
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]model.CompanyGroup, 0, len(names))
	for _, name := range names {
		members := buckets[name]
		sort.SliceStable(members, func(i, j int) bool {
			return titleLess(members[i].Title, members[j].Title)
		})
		groups = append(groups, model.CompanyGroup{Company: name, People: members})
	}
	return groups
}
