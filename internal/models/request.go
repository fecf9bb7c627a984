package models

type RegisterUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type GenerateTitlesRequest struct {
	Topic          string   `json:"topic" binding:"required"`
	Keywords       []string `json:"keywords" binding:"required,min=1"`
	AcademicField  string   `json:"academic_field,omitempty"`
	PaperType      string   `json:"paper_type,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
}

type StartPaperRequest struct {
	Topic                string   `json:"topic" binding:"required"`
	Keywords             []string `json:"keywords" binding:"required,min=1"`
	Length               string   `json:"length,omitempty" binding:"omitempty,oneof=short medium long"`
	AcademicField        string   `json:"academic_field" binding:"required"`
	PaperType            string   `json:"paper_type,omitempty" binding:"omitempty,oneof=review experimental conceptual"`
	ReferenceStyle       string   `json:"reference_style,omitempty" binding:"omitempty,oneof=apa ieee mla"`
	TargetAudience       string   `json:"target_audience,omitempty"`
	RequiredSections     []string `json:"required_sections"`
	CustomSections       []string `json:"custom_sections"`
	AdditionalGuidelines string   `json:"additional_guidelines,omitempty"`
	SelectedTitle        string   `json:"selected_title" binding:"required"`
}

type GenerateSectionRequest struct {
	Section string `json:"section" binding:"required"`
}

type ConfirmSectionRequest struct {
	Section string `json:"section" binding:"required"`
}

type FetchReferenceRequest struct {
	URL   string `json:"url" binding:"required,url"`
	Title string `json:"title" binding:"required"`
}

type EditSectionRequest struct {
	Section        string `json:"section" binding:"required"`
	CurrentContent string `json:"current_content" binding:"required"`
	Instructions   string `json:"instructions,omitempty"`
}
