package models

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToUserResponse(user User) UserResponse {
	return UserResponse{
		ID:         user.ID.Bytes,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsVerified: user.IsVerified.Bool,
		CreatedAt:  user.CreatedAt.Time,
	}
}

type LoginUserResponse struct {
	SessionID             uuid.UUID    `json:"session_id"`
	AccessToken           string       `json:"access_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshToken          string       `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	User                  UserResponse `json:"user"`
}

type PaperResponse struct {
	ID                string         `json:"paper_id"`
	Topic             string         `json:"topic"`
	Keywords          []string       `json:"keywords"`
	SelectedTitle     string         `json:"selected_title"`
	RequiredSections  []string       `json:"required_sections"`
	CustomSections    []string       `json:"custom_sections"`
	CurrentSection    string         `json:"current_section,omitempty"`
	SectionContent    SectionContent `json:"section_content,omitempty"`
	ConfirmedSections []string       `json:"confirmed_sections,omitempty"`
	GenerationStatus  string         `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func ToPaperResponse(paper ResearchPaper) PaperResponse {
	return PaperResponse{
		ID:                uuid.UUID(paper.ID.Bytes).String(),
		Topic:             paper.Topic,
		Keywords:          paper.Keywords,
		SelectedTitle:     paper.SelectedTitle,
		RequiredSections:  paper.RequiredSections,
		CustomSections:    paper.CustomSections,
		CurrentSection:    paper.CurrentSection.String,
		SectionContent:    paper.SectionContent,
		ConfirmedSections: paper.ConfirmedSections,
		GenerationStatus:  paper.GenerationStatus,
		CreatedAt:         paper.CreatedAt.Time,
		UpdatedAt:         paper.UpdatedAt.Time,
	}
}

type StartPaperResponse struct {
	PaperID        string `json:"paper_id"`
	CurrentSection string `json:"current_section"`
	Status         string `json:"status"`
}

type GenerateNextResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	CurrentSection string `json:"current_section,omitempty"`
	Content        string `json:"content,omitempty"`
	NextSection    string `json:"next_section,omitempty"`
}

type GenerateSectionResponse struct {
	Content     string         `json:"content"`
	AllSections SectionContent `json:"all_sections"`
	References  string         `json:"references"`
}

type ConfirmSectionResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	NextSection string `json:"next_section,omitempty"`
}

type EditSectionResponse struct {
	Section     string      `json:"section"`
	Content     string      `json:"content"`
	EditHistory []EditEvent `json:"edit_history"`
}

type TitlesResponse struct {
	Titles []string `json:"titles"`
}

// ReferenceEntry is one candidate work formatted for the paper's
// reference style, with every known full-text link.
type ReferenceEntry struct {
	Title     string          `json:"title"`
	Authors   []string        `json:"authors"`
	Year      int             `json:"year,omitempty"`
	DOI       string          `json:"doi,omitempty"`
	Citation  string          `json:"citation"`
	Partial   bool            `json:"partial"`
	Links     []ReferenceLink `json:"links,omitempty"`
	Citations int             `json:"cited_by_count"`
}

type ReferenceLink struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	IsPDF bool   `json:"is_pdf"`
}

type FetchReferenceResponse struct {
	Path       string `json:"path"`
	Characters int    `json:"characters"`
	Excerpt    string `json:"excerpt"`
}
