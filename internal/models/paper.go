package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Generation statuses of a research paper.
const (
	StatusNotStarted        = "not_started"
	StatusInProgress        = "in_progress"
	StatusAbstractConfirmed = "abstract_confirmed"
	StatusCompleted         = "completed"
)

// SectionContent maps a section name to its generated text. Keys are a
// subset of required_sections + custom_sections + {"references"}.
type SectionContent map[string]string

// EditEvent is one entry of a paper's append-only edit log.
type EditEvent struct {
	Timestamp       time.Time `json:"timestamp"`
	Section         string    `json:"section"`
	Instructions    string    `json:"instructions"`
	PreviousContent string    `json:"previous_content"`
	NewContent      string    `json:"new_content"`
}

// ResearchPaper is the persistent aggregate tracking one paper's
// progression through its ordered section list.
type ResearchPaper struct {
	ID                   pgtype.UUID
	OwnerID              pgtype.UUID
	Topic                string
	Keywords             []string
	Length               string
	AcademicField        string
	PaperType            string
	ReferenceStyle       string
	TargetAudience       string
	RequiredSections     []string
	CustomSections       []string
	AdditionalGuidelines pgtype.Text
	SelectedTitle        string
	CurrentSection       pgtype.Text
	SectionContent       SectionContent
	ConfirmedSections    []string
	EditHistory          []EditEvent
	CitedMarkers         []string
	GenerationStatus     string
	CreatedAt            pgtype.Timestamptz
	UpdatedAt            pgtype.Timestamptz
}

// AllSections returns the ordered concatenation of required then custom
// sections, the order generate-next walks.
func (p *ResearchPaper) AllSections() []string {
	sections := make([]string, 0, len(p.RequiredSections)+len(p.CustomSections))
	sections = append(sections, p.RequiredSections...)
	sections = append(sections, p.CustomSections...)
	return sections
}

// HasConfirmed reports whether the section is in the confirmed set.
func (p *ResearchPaper) HasConfirmed(section string) bool {
	for _, s := range p.ConfirmedSections {
		if s == section {
			return true
		}
	}
	return false
}
