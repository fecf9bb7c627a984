package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/models"
)

const paperColumns = `id, owner_id, topic, keywords, length, academic_field, paper_type,
reference_style, target_audience, required_sections, custom_sections,
additional_guidelines, selected_title, current_section, section_content,
confirmed_sections, edit_history, cited_markers, generation_status,
created_at, updated_at`

const createPaper = `
INSERT INTO research_papers (
	owner_id, topic, keywords, length, academic_field, paper_type,
	reference_style, target_audience, required_sections, custom_sections,
	additional_guidelines, selected_title, current_section, section_content,
	confirmed_sections, edit_history, cited_markers, generation_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING ` + paperColumns

func (s *SQLStore) CreatePaper(ctx context.Context, paper *models.ResearchPaper) (models.ResearchPaper, error) {
	row := s.pool.QueryRow(ctx, createPaper,
		paper.OwnerID, paper.Topic, paper.Keywords, paper.Length, paper.AcademicField,
		paper.PaperType, paper.ReferenceStyle, paper.TargetAudience, paper.RequiredSections,
		paper.CustomSections, paper.AdditionalGuidelines, paper.SelectedTitle,
		paper.CurrentSection, paper.SectionContent, paper.ConfirmedSections,
		paper.EditHistory, paper.CitedMarkers, paper.GenerationStatus)
	return scanPaper(row)
}

const getPaperByID = `
SELECT ` + paperColumns + `
FROM research_papers
WHERE id = $1 AND owner_id = $2
`

func (s *SQLStore) GetPaperByID(ctx context.Context, id, ownerID pgtype.UUID) (models.ResearchPaper, error) {
	row := s.pool.QueryRow(ctx, getPaperByID, id, ownerID)
	return scanPaper(row)
}

const listPapersByOwner = `
SELECT ` + paperColumns + `
FROM research_papers
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (s *SQLStore) ListPapersByOwner(ctx context.Context, ownerID pgtype.UUID) ([]models.ResearchPaper, error) {
	rows, err := s.pool.Query(ctx, listPapersByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := []models.ResearchPaper{}
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	return papers, rows.Err()
}

const getPaperForUpdate = `
SELECT ` + paperColumns + `
FROM research_papers
WHERE id = $1 AND owner_id = $2
FOR UPDATE
`

const updatePaper = `
UPDATE research_papers
SET current_section = $3,
    section_content = $4,
    confirmed_sections = $5,
    edit_history = $6,
    cited_markers = $7,
    generation_status = $8,
    selected_title = $9,
    updated_at = NOW()
WHERE id = $1 AND owner_id = $2
RETURNING ` + paperColumns

func (s *SQLStore) UpdatePaperTx(ctx context.Context, id, ownerID pgtype.UUID, fn func(paper *models.ResearchPaper) error) (models.ResearchPaper, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.ResearchPaper{}, fmt.Errorf("begin paper update: %w", err)
	}
	defer tx.Rollback(ctx)

	paper, err := scanPaper(tx.QueryRow(ctx, getPaperForUpdate, id, ownerID))
	if err != nil {
		return models.ResearchPaper{}, err
	}

	if err := fn(&paper); err != nil {
		return models.ResearchPaper{}, err
	}

	updated, err := scanPaper(tx.QueryRow(ctx, updatePaper,
		id, ownerID, paper.CurrentSection, paper.SectionContent, paper.ConfirmedSections,
		paper.EditHistory, paper.CitedMarkers, paper.GenerationStatus, paper.SelectedTitle))
	if err != nil {
		return models.ResearchPaper{}, fmt.Errorf("write paper update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ResearchPaper{}, fmt.Errorf("commit paper update: %w", err)
	}
	return updated, nil
}

func scanPaper(row pgx.Row) (models.ResearchPaper, error) {
	var p models.ResearchPaper
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Topic, &p.Keywords, &p.Length, &p.AcademicField,
		&p.PaperType, &p.ReferenceStyle, &p.TargetAudience, &p.RequiredSections,
		&p.CustomSections, &p.AdditionalGuidelines, &p.SelectedTitle,
		&p.CurrentSection, &p.SectionContent, &p.ConfirmedSections,
		&p.EditHistory, &p.CitedMarkers, &p.GenerationStatus,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}
