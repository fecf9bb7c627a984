package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/scribelab/paperforge/internal/humanizer"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/models"
	"github.com/scribelab/paperforge/internal/openalex"
)

// Rewriter runs generated text through the humanizing rewrite API.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (humanizer.Response, error)
}

// AIService issues chat-completion calls and assembles the
// section-specific prompts around them.
type AIService struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	rewriter Rewriter
	logger   *applogger.AppLogger
}

func NewAIService(apiKey, baseURL, model string, rewriter Rewriter, logger *applogger.AppLogger) *AIService {
	return &AIService{
		apiKey:   apiKey,
		baseURL:  baseURL,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
		rewriter: rewriter,
		logger:   logger,
	}
}

type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      OpenAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *OpenAIError `json:"error,omitempty"`
}

type OpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (s *AIService) callOpenAI(ctx context.Context, request OpenAIRequest) (*OpenAIResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading completion response: %w", err)
	}

	var decoded OpenAIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("parsing completion response (HTTP %d): %w", resp.StatusCode, err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("completion API error: %s", decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion API returned HTTP %d", resp.StatusCode)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}
	return &decoded, nil
}

// Complete issues one chat-completion call and returns the text of the
// first choice.
func (s *AIService) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	resp, err := s.callOpenAI(ctx, OpenAIRequest{
		Model: s.model,
		Messages: []OpenAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", &UpstreamError{Service: "completion", Err: err}
	}
	return resp.Choices[0].Message.Content, nil
}

var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

// ExtractCitationMarkers returns the distinct bracketed numeric
// citation markers in text, in order of first appearance.
func ExtractCitationMarkers(text string) []string {
	var markers []string
	seen := make(map[string]bool)
	for _, match := range citationMarkerPattern.FindAllStringSubmatch(text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			markers = append(markers, match[1])
		}
	}
	return markers
}

// GenerateTitles produces up to five candidate titles.
func (s *AIService) GenerateTitles(ctx context.Context, req models.GenerateTitlesRequest) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 5 potential research paper titles based on the following specifications:

Topic: %s
Keywords: %s
Academic Field: %s
Paper Type: %s
Target Audience: %s

Please provide 5 distinct, professional, and engaging titles that reflect the research focus.
Format the response as a list of titles, one per line.`,
		req.Topic, strings.Join(req.Keywords, ", "),
		orDefault(req.AcademicField, "General"),
		orDefault(req.PaperType, "Research"),
		orDefault(req.TargetAudience, "Academic"))

	text, err := s.Complete(ctx,
		"You are a research paper title generator. Generate professional, academic titles.",
		prompt, 0.7, 500)
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			titles = append(titles, line)
		}
	}
	if len(titles) > 5 {
		titles = titles[:5]
	}
	return titles, nil
}

// GenerateAbstract produces the abstract section from the paper's
// metadata alone.
func (s *AIService) GenerateAbstract(ctx context.Context, paper *models.ResearchPaper) (string, error) {
	prompt := fmt.Sprintf(`Generate an abstract for a research paper with the following specifications:

Title: %s
Topic: %s
Keywords: %s
Academic Field: %s
Paper Type: %s

The abstract should include:
1. A brief introduction about the topic
2. Identification of gaps or problems in existing literature
3. Explanation of how this research addresses those gaps
4. Key findings or results

Keep the abstract concise and within 250 words.
Follow academic writing standards and maintain a professional tone.`,
		paper.SelectedTitle, paper.Topic, strings.Join(paper.Keywords, ", "),
		orDefault(paper.AcademicField, "General"),
		orDefault(paper.PaperType, "Research"))

	return s.Complete(ctx,
		"You are an academic researcher writing an abstract for a research paper.",
		prompt, 0.7, 500)
}

// GenerateSection produces one named section. The returned markers are
// the bracketed citation numbers found in the output. Completion
// failure propagates; a failed humanizing rewrite falls back to the
// raw completion output.
func (s *AIService) GenerateSection(ctx context.Context, paper *models.ResearchPaper, section, referenceText string) (string, []string, error) {
	prompt := buildSectionPrompt(paper, section)
	if referenceText != "" {
		prompt += referenceText
	}

	content, err := s.Complete(ctx,
		"You are an expert academic writer helping to write a research paper. Use the provided references appropriately and maintain academic rigor. When citing references, use the format [number] where number is the reference number.",
		prompt, 0.7, 2000)
	if err != nil {
		return "", nil, err
	}

	markers := ExtractCitationMarkers(content)

	final := s.humanize(ctx, content)
	return final, markers, nil
}

// EditSection rewrites a section per the user's instructions, feeding
// the paper's full edit history into the prompt. Empty instructions
// default to a general improvement pass.
func (s *AIService) EditSection(ctx context.Context, paper *models.ResearchPaper, section, currentContent, instructions string) (string, error) {
	if instructions == "" {
		instructions = "Improve the clarity, coherence and academic quality of this section while preserving its meaning."
	}

	history := "No previous edits"
	if len(paper.EditHistory) > 0 {
		if encoded, err := json.MarshalIndent(paper.EditHistory, "", "  "); err == nil {
			history = string(encoded)
		}
	}

	prompt := fmt.Sprintf(`Please edit the following %s section based on these instructions:

Section to edit:
%s

Edit instructions:
%s

Previous edit history:
%s

Please provide the edited section that:
1. Maintains academic writing standards
2. Follows the specified reference style (%s)
3. Is appropriate for the target audience (%s)
4. Incorporates the requested changes
5. Maintains proper formatting and structure
6. Takes into account previous edits and feedback
7. Maintains consistency with other sections of the paper

Return only the edited section text.`,
		section, currentContent, instructions, history,
		paper.ReferenceStyle, paper.TargetAudience)

	return s.Complete(ctx,
		fmt.Sprintf("You are an academic editor helping to improve research paper %s sections.", section),
		prompt, 0.7, 1000)
}

// AnalyzeReferences produces a narrative synthesis of the candidate
// papers for one section. The output is humanized; rewrite failure
// falls back to the raw analysis.
func (s *AIService) AnalyzeReferences(ctx context.Context, candidates []openalex.ReferenceCandidate, title, section string) (string, error) {
	var papers strings.Builder
	for i, c := range candidates {
		if i > 0 {
			papers.WriteString("\n\n")
		}
		fmt.Fprintf(&papers, "Title: %s\nAuthors: %s\nYear: %d\nAbstract: %s\nKeywords: %s\nCitations: %d\nDOI: %s",
			c.Title, strings.Join(c.Authors, ", "), c.Year, c.Abstract,
			strings.Join(c.Keywords, ", "), c.Citations, c.DOI)
	}

	prompt := fmt.Sprintf(`I am writing a research paper with the title: "%s"

I need help with the %s section. Here are some relevant papers I found:

%s

Please analyze these papers and provide:
1. A summary of the key findings and trends, focusing only on papers that are directly relevant to my research topic
2. How these relevant papers relate to my research topic, being selective and only discussing papers that provide meaningful insights
3. Any gaps in the literature that my research could address, based on the most relevant papers
4. Key citations and references I should include in my %s

Please:
- Only use references that are directly relevant to my research topic
- Focus on recent papers (last 5-10 years) unless older papers are seminal works
- Prioritize papers that match multiple keywords from my research
- Exclude papers that are only tangentially related
- Be selective in choosing references to maintain focus and relevance

Please format your response in a clear, academic style suitable for a research paper.`,
		title, section, papers.String(), section)

	analysis, err := s.Complete(ctx,
		"You are a research paper assistant helping to analyze academic papers and provide insights for writing a research paper. Be selective in choosing references and focus only on papers that are directly relevant to the research topic.",
		prompt, 0.7, 2000)
	if err != nil {
		return "", err
	}

	return s.humanize(ctx, analysis), nil
}

// humanize runs text through the rewriter, falling back to the input
// when the rewrite fails. The fallback is the designed behavior, not an
// error path.
func (s *AIService) humanize(ctx context.Context, text string) string {
	if s.rewriter == nil {
		return text
	}
	resp, err := s.rewriter.Rewrite(ctx, text)
	if err != nil {
		s.logger.Warn("humanizing rewrite failed, using original text", "error", err)
		return text
	}
	return resp.Text
}

func buildSectionPrompt(paper *models.ResearchPaper, section string) string {
	previous := "None"
	if len(paper.SectionContent) > 0 {
		names := make([]string, 0, len(paper.SectionContent))
		for name := range paper.SectionContent {
			names = append(names, name)
		}
		previous = strings.Join(names, ", ")
	}

	base := fmt.Sprintf(`Generate the %s section for a research paper with the following details:
Topic: %s
Keywords: %s
Length: %s
Academic Field: %s
Paper Type: %s
Reference Style: %s
Target Audience: %s
Selected Title: %s

Previous sections: %s

Please ensure the section:
1. Maintains consistency with previous sections
2. Uses proper academic language
3. Follows the specified reference style
4. Is appropriate for the target audience
5. Aligns with the paper's objectives
6. Maintains professional tone
`,
		section, paper.Topic, strings.Join(paper.Keywords, ", "),
		orDefault(paper.Length, "Medium"),
		orDefault(paper.AcademicField, "General"),
		orDefault(paper.PaperType, "Research"),
		orDefault(paper.ReferenceStyle, "APA"),
		orDefault(paper.TargetAudience, "Academic"),
		paper.SelectedTitle, previous)

	return base + "\n" + sectionRubric(section, orDefault(paper.ReferenceStyle, "APA"))
}

func sectionRubric(section, referenceStyle string) string {
	switch strings.ToLower(section) {
	case "abstract":
		return fmt.Sprintf(`Generate an abstract that:
1. Provides a concise overview of the research topic
2. States the research problem and objectives
3. Briefly describes the methodology
4. Summarizes key findings
5. Concludes with the significance of the research
6. Should be between 150-250 words
7. Follow %s style guidelines`, referenceStyle)
	case "introduction":
		return fmt.Sprintf(`Generate an introduction section that:
1. Provides background information on the research topic
2. Clearly states the research problem and its significance
3. Reviews relevant literature and identifies gaps
4. States the research objectives and questions
5. Outlines the structure of the paper
6. Maintains a logical flow from general to specific
7. Includes proper citations in %s style
8. Focus on recent trends and importance of the topic`, referenceStyle)
	case "literature_review":
		return fmt.Sprintf(`Generate a literature review section that:
1. Critically analyzes existing research on the topic
2. Organizes literature thematically or chronologically
3. Identifies gaps in current research
4. Shows how this research builds on previous work
5. Synthesizes findings from multiple sources
6. Includes proper citations in %s style
7. Maintains academic tone and objectivity
8. Focus on existing methods and previous studies`, referenceStyle)
	case "methodology":
		return `Generate a methodology section that:
1. Clearly describes the research design
2. Details data collection methods
3. Explains sampling techniques
4. Describes data analysis procedures
5. Addresses ethical considerations
6. Justifies methodological choices
7. Includes proper citations for methods used
8. Focus on techniques, approaches, and frameworks`
	case "results":
		return `Generate a results section that:
1. Presents findings clearly and objectively
2. Uses appropriate tables and figures
3. Organizes results logically
4. Includes statistical analysis if applicable
5. Highlights key findings
6. Maintains consistency with methodology
7. Avoids interpretation or discussion
8. Focus on evaluation metrics and performance`
	case "discussion":
		return `Generate a discussion section that:
1. Interprets the results
2. Compares findings with previous research
3. Explains unexpected results
4. Addresses limitations
5. Suggests implications for practice
6. Proposes future research directions
7. Maintains academic tone and objectivity
8. Focus on implications and impact`
	case "conclusion":
		return `Generate a conclusion section that:
1. Summarizes key findings
2. Restates research significance
3. Addresses research objectives
4. Highlights contributions to the field
5. Suggests practical applications
6. Maintains consistency with previous sections
7. Provides a strong closing statement
8. Focus on future work and limitations`
	default:
		return fmt.Sprintf(`Generate the %s section that:
1. Follows academic writing standards
2. Maintains consistency with previous sections
3. Includes proper citations if needed
4. Is appropriate for the target audience
5. Aligns with the paper's objectives
6. Uses %s style
7. Maintains professional tone`, section, referenceStyle)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
