package model

type Analytics struct {
	TotalProspects    int     `json:"totalProspects"`
	UniqueCompanies   int     `json:"uniqueCompanies"`
	EmailsSentToday   int     `json:"emailsSentToday"`
	ResponseRate      float64 `json:"responseRate"`
	MeetingsScheduled int     `json:"meetingsScheduled"`
}

// Placeholders are the analytics figures that have no backing data. They come
// from configuration, not from any send history.
type Placeholders struct {
	EmailsSentToday   int     `yaml:"emails_sent_today"`
	ResponseRate      float64 `yaml:"response_rate"`
	MeetingsScheduled int     `yaml:"meetings_scheduled"`
}
