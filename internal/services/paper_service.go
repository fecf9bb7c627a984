package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/citation"
	"github.com/scribelab/paperforge/internal/db"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/models"
	"github.com/scribelab/paperforge/internal/openalex"
)

// referencesBlockHeader starts the cumulative references section.
const referencesBlockHeader = "\n\n## References\n\n"

// CompletionPolicy decides which sections must be confirmed before a
// paper counts as completed.
type CompletionPolicy string

const (
	// PolicyRequiredOnly completes a paper once every required section
	// is confirmed; custom sections do not participate.
	PolicyRequiredOnly CompletionPolicy = "required-only"
	// PolicyAllSections additionally requires every custom section.
	PolicyAllSections CompletionPolicy = "all-sections"
)

// Generator is the slice of AIService the paper state machine uses.
type Generator interface {
	GenerateTitles(ctx context.Context, req models.GenerateTitlesRequest) ([]string, error)
	GenerateAbstract(ctx context.Context, paper *models.ResearchPaper) (string, error)
	GenerateSection(ctx context.Context, paper *models.ResearchPaper, section, referenceText string) (string, []string, error)
	EditSection(ctx context.Context, paper *models.ResearchPaper, section, currentContent, instructions string) (string, error)
	AnalyzeReferences(ctx context.Context, candidates []openalex.ReferenceCandidate, title, section string) (string, error)
}

// ReferenceCollector gathers citation candidates for a paper.
type ReferenceCollector interface {
	Collect(ctx context.Context, title string, keywords []string) []openalex.ReferenceCandidate
}

// PDFFetcher downloads a work's full-text PDF to local storage.
type PDFFetcher interface {
	DownloadPDF(ctx context.Context, pdfURL, dir, title string) (string, error)
}

// PaperService drives a paper's progression through its section list.
type PaperService struct {
	store       db.Store
	ai          Generator
	refs        ReferenceCollector
	fetcher     PDFFetcher
	policy      CompletionPolicy
	downloadDir string
	logger      *applogger.AppLogger
}

func NewPaperService(store db.Store, ai Generator, refs ReferenceCollector, fetcher PDFFetcher, policy CompletionPolicy, downloadDir string, logger *applogger.AppLogger) *PaperService {
	if policy != PolicyAllSections {
		policy = PolicyRequiredOnly
	}
	return &PaperService{
		store:       store,
		ai:          ai,
		refs:        refs,
		fetcher:     fetcher,
		policy:      policy,
		downloadDir: downloadDir,
		logger:      logger,
	}
}

// GenerateTitles validates the request and asks the generator for five
// candidate titles.
func (s *PaperService) GenerateTitles(ctx context.Context, req models.GenerateTitlesRequest) ([]string, error) {
	titles, err := s.ai.GenerateTitles(ctx, req)
	if err != nil {
		s.logger.Error("title generation failed", "topic", req.Topic, "error", err)
		return nil, err
	}
	return titles, nil
}

// StartPaper creates the paper record, points current_section at the
// first section, and eagerly generates the abstract when it comes
// first.
func (s *PaperService) StartPaper(ctx context.Context, ownerID uuid.UUID, req models.StartPaperRequest) (models.ResearchPaper, error) {
	if len(req.RequiredSections) == 0 && len(req.CustomSections) == 0 {
		return models.ResearchPaper{}, ErrNoSections
	}

	firstSection := ""
	if len(req.RequiredSections) > 0 {
		firstSection = req.RequiredSections[0]
	} else {
		firstSection = req.CustomSections[0]
	}

	paper := models.ResearchPaper{
		OwnerID:          pgtype.UUID{Bytes: ownerID, Valid: true},
		Topic:            req.Topic,
		Keywords:         req.Keywords,
		Length:           req.Length,
		AcademicField:    req.AcademicField,
		PaperType:        req.PaperType,
		ReferenceStyle:   req.ReferenceStyle,
		TargetAudience:   req.TargetAudience,
		RequiredSections: req.RequiredSections,
		CustomSections:   req.CustomSections,
		AdditionalGuidelines: pgtype.Text{
			String: req.AdditionalGuidelines,
			Valid:  req.AdditionalGuidelines != "",
		},
		SelectedTitle:     req.SelectedTitle,
		CurrentSection:    pgtype.Text{String: firstSection, Valid: true},
		SectionContent:    models.SectionContent{},
		ConfirmedSections: []string{},
		EditHistory:       []models.EditEvent{},
		CitedMarkers:      []string{},
		GenerationStatus:  models.StatusInProgress,
	}

	if firstSection == "abstract" {
		content, err := s.ai.GenerateAbstract(ctx, &paper)
		if err != nil {
			s.logger.Error("abstract generation failed at paper start", "topic", req.Topic, "error", err)
			return models.ResearchPaper{}, err
		}
		paper.SectionContent["abstract"] = content
	}

	created, err := s.store.CreatePaper(ctx, &paper)
	if err != nil {
		s.logger.Error("failed to create paper", "topic", req.Topic, "error", err)
		return models.ResearchPaper{}, fmt.Errorf("could not create paper: %w", err)
	}

	s.logger.Info("paper started", "paperID", created.ID, "currentSection", firstSection)
	return created, nil
}

func (s *PaperService) GetPaper(ctx context.Context, paperID, ownerID uuid.UUID) (models.ResearchPaper, error) {
	paper, err := s.store.GetPaperByID(ctx,
		pgtype.UUID{Bytes: paperID, Valid: true},
		pgtype.UUID{Bytes: ownerID, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return models.ResearchPaper{}, ErrPaperNotFound
		}
		s.logger.Error("failed to fetch paper", "paperID", paperID, "error", err)
		return models.ResearchPaper{}, fmt.Errorf("database error fetching paper: %w", err)
	}
	return paper, nil
}

func (s *PaperService) ListPapers(ctx context.Context, ownerID uuid.UUID) ([]models.ResearchPaper, error) {
	papers, err := s.store.ListPapersByOwner(ctx, pgtype.UUID{Bytes: ownerID, Valid: true})
	if err != nil {
		s.logger.Error("failed to list papers", "ownerID", ownerID, "error", err)
		return nil, fmt.Errorf("database error listing papers: %w", err)
	}
	return papers, nil
}

// GenerateNext advances the ordered required+custom walk by one
// section. Walking past the end completes the paper.
func (s *PaperService) GenerateNext(ctx context.Context, paperID, ownerID uuid.UUID) (models.GenerateNextResponse, error) {
	var result models.GenerateNextResponse

	_, err := s.updatePaper(ctx, paperID, ownerID, func(paper *models.ResearchPaper) error {
		all := paper.AllSections()
		currentIndex := -1
		for i, section := range all {
			if paper.CurrentSection.Valid && section == paper.CurrentSection.String {
				currentIndex = i
				break
			}
		}

		if currentIndex+1 >= len(all) {
			paper.GenerationStatus = models.StatusCompleted
			result = models.GenerateNextResponse{
				Status:  models.StatusCompleted,
				Message: "All sections have been generated",
			}
			return nil
		}

		nextSection := all[currentIndex+1]
		content, markers, err := s.ai.GenerateSection(ctx, paper, nextSection, "")
		if err != nil {
			s.logger.Error("section generation failed", "paperID", paperID, "section", nextSection, "error", err)
			return err
		}

		if paper.SectionContent == nil {
			paper.SectionContent = models.SectionContent{}
		}
		paper.SectionContent[nextSection] = content
		paper.CurrentSection = pgtype.Text{String: nextSection, Valid: true}
		paper.CitedMarkers = mergeMarkers(paper.CitedMarkers, markers)

		result = models.GenerateNextResponse{
			Status:         paper.GenerationStatus,
			CurrentSection: nextSection,
			Content:        content,
		}
		if currentIndex+2 < len(all) {
			result.NextSection = all[currentIndex+2]
		}
		return nil
	})
	if err != nil {
		return models.GenerateNextResponse{}, err
	}
	return result, nil
}

// GenerateSection produces a named section backed by a reference
// search: candidates are gathered, analyzed, fed into the prompt, and
// their citation lines appended to the cumulative references block.
func (s *PaperService) GenerateSection(ctx context.Context, paperID, ownerID uuid.UUID, section string) (models.GenerateSectionResponse, error) {
	var result models.GenerateSectionResponse

	_, err := s.updatePaper(ctx, paperID, ownerID, func(paper *models.ResearchPaper) error {
		candidates := s.refs.Collect(ctx, paper.SelectedTitle, paper.Keywords)
		s.logger.Info("reference candidates gathered", "paperID", paperID, "section", section, "count", len(candidates))

		referenceText := s.buildReferenceText(ctx, candidates, paper.SelectedTitle, section)

		content, markers, err := s.ai.GenerateSection(ctx, paper, section, referenceText)
		if err != nil {
			s.logger.Error("section generation failed", "paperID", paperID, "section", section, "error", err)
			return err
		}

		if paper.SectionContent == nil {
			paper.SectionContent = models.SectionContent{}
		}
		paper.SectionContent[section] = content
		paper.CurrentSection = pgtype.Text{String: section, Valid: true}
		paper.CitedMarkers = mergeMarkers(paper.CitedMarkers, markers)
		appendReferences(paper, candidates)

		result = models.GenerateSectionResponse{
			Content:     content,
			AllSections: paper.SectionContent,
			References:  paper.SectionContent["references"],
		}
		return nil
	})
	if err != nil {
		return models.GenerateSectionResponse{}, err
	}
	return result, nil
}

// EditSection replays the section through the LLM with edit-history
// context, replaces the stored content and appends an EditEvent.
func (s *PaperService) EditSection(ctx context.Context, paperID, ownerID uuid.UUID, req models.EditSectionRequest) (models.EditSectionResponse, error) {
	var result models.EditSectionResponse

	_, err := s.updatePaper(ctx, paperID, ownerID, func(paper *models.ResearchPaper) error {
		edited, err := s.ai.EditSection(ctx, paper, req.Section, req.CurrentContent, req.Instructions)
		if err != nil {
			s.logger.Error("section edit failed", "paperID", paperID, "section", req.Section, "error", err)
			return err
		}

		if paper.SectionContent == nil {
			paper.SectionContent = models.SectionContent{}
		}
		paper.SectionContent[req.Section] = edited
		paper.EditHistory = append(paper.EditHistory, models.EditEvent{
			Timestamp:       time.Now().UTC(),
			Section:         req.Section,
			Instructions:    req.Instructions,
			PreviousContent: req.CurrentContent,
			NewContent:      edited,
		})

		result = models.EditSectionResponse{
			Section:     req.Section,
			Content:     edited,
			EditHistory: paper.EditHistory,
		}
		return nil
	})
	if err != nil {
		return models.EditSectionResponse{}, err
	}
	return result, nil
}

// ConfirmSection adds the section to the confirmed set. The paper is
// completed once the confirmed set covers every section the policy
// requires; confirming the abstract of an otherwise incomplete paper
// moves it to abstract_confirmed.
func (s *PaperService) ConfirmSection(ctx context.Context, paperID, ownerID uuid.UUID, section string) (models.ConfirmSectionResponse, error) {
	var result models.ConfirmSectionResponse

	_, err := s.updatePaper(ctx, paperID, ownerID, func(paper *models.ResearchPaper) error {
		if !paper.HasConfirmed(section) {
			paper.ConfirmedSections = append(paper.ConfirmedSections, section)
		}

		needed := paper.RequiredSections
		if s.policy == PolicyAllSections {
			needed = paper.AllSections()
		}

		switch {
		case containsAll(paper.ConfirmedSections, needed):
			paper.GenerationStatus = models.StatusCompleted
		case section == "abstract":
			paper.GenerationStatus = models.StatusAbstractConfirmed
		case paper.GenerationStatus == models.StatusNotStarted:
			paper.GenerationStatus = models.StatusInProgress
		}

		result = models.ConfirmSectionResponse{
			Status:  paper.GenerationStatus,
			Message: fmt.Sprintf("Section %s confirmed successfully", section),
		}
		for _, name := range needed {
			if !paper.HasConfirmed(name) {
				result.NextSection = name
				break
			}
		}
		return nil
	})
	if err != nil {
		return models.ConfirmSectionResponse{}, err
	}
	return result, nil
}

// EditHistory returns the paper's append-only edit log.
func (s *PaperService) EditHistory(ctx context.Context, paperID, ownerID uuid.UUID) ([]models.EditEvent, error) {
	paper, err := s.GetPaper(ctx, paperID, ownerID)
	if err != nil {
		return nil, err
	}
	if paper.EditHistory == nil {
		return []models.EditEvent{}, nil
	}
	return paper.EditHistory, nil
}

// SearchReferences runs the keyword-combination search for the paper
// and formats each candidate in the paper's reference style.
func (s *PaperService) SearchReferences(ctx context.Context, paperID, ownerID uuid.UUID) ([]models.ReferenceEntry, error) {
	paper, err := s.GetPaper(ctx, paperID, ownerID)
	if err != nil {
		return nil, err
	}

	candidates := s.refs.Collect(ctx, paper.SelectedTitle, paper.Keywords)
	entries := make([]models.ReferenceEntry, 0, len(candidates))
	for i, c := range candidates {
		work := citation.Work{
			Title:     c.Title,
			Authors:   c.Authors,
			Year:      c.Year,
			Journal:   c.Journal,
			Volume:    c.Volume,
			Issue:     c.Issue,
			FirstPage: c.FirstPage,
			LastPage:  c.LastPage,
			DOI:       c.DOI,
		}
		entry := models.ReferenceEntry{
			Title:     c.Title,
			Authors:   c.Authors,
			Year:      c.Year,
			DOI:       c.DOI,
			Citation:  citation.Format(paper.ReferenceStyle, work, i+1),
			Partial:   c.Partial,
			Citations: c.Citations,
		}
		for _, link := range c.Links {
			entry.Links = append(entry.Links, models.ReferenceLink{
				Type:  link.Type,
				URL:   link.URL,
				IsPDF: link.IsPDF,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FetchReference downloads a reference PDF into the paper's download
// directory and returns the extracted text's size and leading excerpt.
func (s *PaperService) FetchReference(ctx context.Context, paperID, ownerID uuid.UUID, req models.FetchReferenceRequest) (models.FetchReferenceResponse, error) {
	if _, err := s.GetPaper(ctx, paperID, ownerID); err != nil {
		return models.FetchReferenceResponse{}, err
	}

	dir := filepath.Join(s.downloadDir, paperID.String())
	path, err := s.fetcher.DownloadPDF(ctx, req.URL, dir, req.Title)
	if err != nil {
		s.logger.Error("reference pdf download failed", "paperID", paperID, "url", req.URL, "error", err)
		return models.FetchReferenceResponse{}, &UpstreamError{Service: "reference download", Err: err}
	}

	text, err := openalex.ExtractPDFText(path)
	if err != nil {
		s.logger.Warn("pdf text extraction failed", "paperID", paperID, "path", path, "error", err)
		return models.FetchReferenceResponse{Path: path}, nil
	}

	excerpt := text
	if len(excerpt) > 1000 {
		excerpt = excerpt[:1000]
	}
	return models.FetchReferenceResponse{
		Path:       path,
		Characters: len(text),
		Excerpt:    excerpt,
	}, nil
}

func (s *PaperService) updatePaper(ctx context.Context, paperID, ownerID uuid.UUID, fn func(*models.ResearchPaper) error) (models.ResearchPaper, error) {
	paper, err := s.store.UpdatePaperTx(ctx,
		pgtype.UUID{Bytes: paperID, Valid: true},
		pgtype.UUID{Bytes: ownerID, Valid: true},
		fn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return models.ResearchPaper{}, ErrPaperNotFound
		}
		return models.ResearchPaper{}, err
	}
	return paper, nil
}

// buildReferenceText formats the candidates and their LLM analysis into
// the prompt fragment handed to the section generator. Analysis failure
// is non-fatal; an empty candidate list yields an empty fragment.
func (s *PaperService) buildReferenceText(ctx context.Context, candidates []openalex.ReferenceCandidate, title, section string) string {
	if len(candidates) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nHere are some relevant reference papers for this section:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "\nTitle: %s\nAuthors: %s\nAbstract: %s\n", c.Title, strings.Join(c.Authors, ", "), c.Abstract)
	}
	b.WriteString("\nPlease use these references in your response and cite them appropriately.")

	analysis, err := s.ai.AnalyzeReferences(ctx, candidates, title, section)
	if err != nil {
		s.logger.Warn("reference analysis failed, continuing without it", "section", section, "error", err)
	} else if analysis != "" {
		b.WriteString("\n\nAnalysis of the relevant literature:\n")
		b.WriteString(analysis)
	}

	return b.String()
}

// appendReferences adds each candidate's citation line to the running
// references block, skipping lines already present.
func appendReferences(paper *models.ResearchPaper, candidates []openalex.ReferenceCandidate) {
	if len(candidates) == 0 {
		return
	}

	block, ok := paper.SectionContent["references"]
	if !ok || block == "" {
		block = referencesBlockHeader
	}

	for _, c := range candidates {
		line := citation.ReferenceLine(c.Authors, c.Year, c.Title, c.DOI)
		if !strings.Contains(block, line) {
			block += line + "\n\n"
		}
	}
	paper.SectionContent["references"] = block
}

func mergeMarkers(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[m] = true
	}
	for _, m := range added {
		if !seen[m] {
			seen[m] = true
			existing = append(existing, m)
		}
	}
	return existing
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, s := range have {
		set[s] = true
	}
	for _, s := range want {
		if !set[s] {
			return false
		}
	}
	return true
}
