package openalex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// DownloadLink is one place a work's full text may be fetched from.
type DownloadLink struct {
	Type  string
	URL   string
	IsPDF bool
}

// DownloadLinks gathers every landing-page, PDF and open-access URL a
// work exposes, primary location first.
func DownloadLinks(w Work) []DownloadLink {
	var links []DownloadLink

	if w.PrimaryLocation != nil {
		if w.PrimaryLocation.LandingPageURL != "" {
			links = append(links, DownloadLink{Type: "Primary Location", URL: w.PrimaryLocation.LandingPageURL})
		}
		if w.PrimaryLocation.PdfURL != "" {
			links = append(links, DownloadLink{Type: "Primary Location PDF", URL: w.PrimaryLocation.PdfURL, IsPDF: true})
		}
	}

	for _, loc := range w.Locations {
		sourceName := "Unknown Source"
		if loc.Source != nil && loc.Source.DisplayName != "" {
			sourceName = loc.Source.DisplayName
		}
		if loc.LandingPageURL != "" {
			links = append(links, DownloadLink{Type: sourceName + " Landing Page", URL: loc.LandingPageURL})
		}
		if loc.PdfURL != "" {
			links = append(links, DownloadLink{Type: sourceName + " PDF", URL: loc.PdfURL, IsPDF: true})
		}
	}

	if w.OpenAccess.IsOA && w.OpenAccess.OAURL != "" {
		links = append(links, DownloadLink{Type: "Open Access URL", URL: w.OpenAccess.OAURL})
	}

	return links
}

// DownloadPDF fetches a PDF into dir, deriving the file name from the
// work title, and returns the local path.
func (c *Client) DownloadPDF(ctx context.Context, pdfURL, dir, title string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pdf download returned HTTP %d", resp.StatusCode)
	}

	path := filepath.Join(dir, sanitizeFilename(title)+".pdf")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating pdf file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing pdf file: %w", err)
	}

	c.logger.Info("downloaded paper pdf", "title", title, "path", path)
	return path, nil
}

// ExtractPDFText returns the plain text of every page of a PDF.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// sanitizeFilename keeps letters, digits, spaces, dashes and
// underscores, replacing everything else, and truncates long titles.
func sanitizeFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, title)
	if len(cleaned) > 100 {
		cleaned = cleaned[:100]
	}
	if cleaned == "" {
		cleaned = "paper"
	}
	return cleaned
}
