package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribelab/paperforge/internal/humanizer"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/models"
)

type stubRewriter struct {
	text string
	err  error
}

func (r *stubRewriter) Rewrite(ctx context.Context, text string) (humanizer.Response, error) {
	if r.err != nil {
		return humanizer.Response{}, r.err
	}
	out := r.text
	if out == "" {
		out = text
	}
	return humanizer.Response{Text: out, WordCount: len(strings.Fields(out))}, nil
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req OpenAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		resp := OpenAIResponse{ID: "cmpl-1", Model: req.Model}
		resp.Choices = append(resp.Choices, struct {
			Index        int           `json:"index"`
			Message      OpenAIMessage `json:"message"`
			FinishReason string        `json:"finish_reason"`
		}{Message: OpenAIMessage{Role: "assistant", Content: content}, FinishReason: "stop"})
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestAIService(baseURL string, rewriter Rewriter) *AIService {
	return NewAIService("test-key", baseURL, "gpt-4o-mini", rewriter, applogger.New())
}

func TestExtractCitationMarkers(t *testing.T) {
	markers := ExtractCitationMarkers("Prior work [3] and later studies [12] agree; see [3] again.")
	assert.Equal(t, []string{"3", "12"}, markers)

	assert.Empty(t, ExtractCitationMarkers("No citations here."))
	assert.Empty(t, ExtractCitationMarkers("[not numeric]"))
}

func TestComplete(t *testing.T) {
	server := completionServer(t, "generated text")
	defer server.Close()

	svc := newTestAIService(server.URL, nil)
	out, err := svc.Complete(context.Background(), "system", "user", 0.7, 100)
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded", "type": "rate_limit_error"},
		})
	}))
	defer server.Close()

	svc := newTestAIService(server.URL, nil)
	_, err := svc.Complete(context.Background(), "system", "user", 0.7, 100)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "completion", upstream.Service)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGenerateTitlesCapsAtFive(t *testing.T) {
	server := completionServer(t, "One\nTwo\nThree\n\nFour\nFive\nSix\nSeven")
	defer server.Close()

	svc := newTestAIService(server.URL, nil)
	titles, err := svc.GenerateTitles(context.Background(), models.GenerateTitlesRequest{
		Topic:    "graph neural networks",
		Keywords: []string{"graphs", "deep learning"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two", "Three", "Four", "Five"}, titles)
}

func TestGenerateSectionHumanizesAndExtractsMarkers(t *testing.T) {
	server := completionServer(t, "Findings from [1] and [4] support this.")
	defer server.Close()

	svc := newTestAIService(server.URL, &stubRewriter{text: "Rewritten body."})
	paper := &models.ResearchPaper{
		Topic:    "test topic",
		Keywords: []string{"a"},
	}

	content, markers, err := svc.GenerateSection(context.Background(), paper, "introduction", "")
	require.NoError(t, err)
	assert.Equal(t, "Rewritten body.", content)
	assert.Equal(t, []string{"1", "4"}, markers)
}

func TestGenerateSectionKeepsOriginalWhenRewriteFails(t *testing.T) {
	server := completionServer(t, "Original completion output.")
	defer server.Close()

	svc := newTestAIService(server.URL, &stubRewriter{err: errors.New("humanizer down")})
	paper := &models.ResearchPaper{Topic: "t", Keywords: []string{"k"}}

	content, _, err := svc.GenerateSection(context.Background(), paper, "results", "")
	require.NoError(t, err)
	assert.Equal(t, "Original completion output.", content)
}

func TestGenerateAbstractSkipsRewrite(t *testing.T) {
	server := completionServer(t, "An abstract.")
	defer server.Close()

	// A failing rewriter must not affect abstract generation at all.
	svc := newTestAIService(server.URL, &stubRewriter{err: errors.New("unreachable")})
	paper := &models.ResearchPaper{
		SelectedTitle: "A Title",
		Topic:         "t",
		Keywords:      []string{"k"},
	}

	content, err := svc.GenerateAbstract(context.Background(), paper)
	require.NoError(t, err)
	assert.Equal(t, "An abstract.", content)
}

func TestSectionRubricSelection(t *testing.T) {
	assert.Contains(t, sectionRubric("introduction", "APA"), "background information")
	assert.Contains(t, sectionRubric("Introduction", "APA"), "background information")
	assert.Contains(t, sectionRubric("methodology", "APA"), "research design")
	assert.Contains(t, sectionRubric("case_studies", "IEEE"), "case_studies section")
	assert.Contains(t, sectionRubric("case_studies", "IEEE"), "IEEE")
}

func TestBuildSectionPromptListsPreviousSections(t *testing.T) {
	paper := &models.ResearchPaper{
		Topic:          "topic",
		Keywords:       []string{"k1", "k2"},
		SelectedTitle:  "Title",
		SectionContent: models.SectionContent{"abstract": "text"},
	}

	prompt := buildSectionPrompt(paper, "introduction")
	assert.Contains(t, prompt, "Previous sections: abstract")
	assert.Contains(t, prompt, "Topic: topic")
	assert.Contains(t, prompt, "Reference Style: APA")

	empty := buildSectionPrompt(&models.ResearchPaper{Topic: "t"}, "introduction")
	assert.Contains(t, empty, "Previous sections: None")
}
