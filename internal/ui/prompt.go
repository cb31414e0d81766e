package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/thesavant42/wayback-scraper/internal/api"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	// Keep printable characters and normal whitespace (space, tab, newline)
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// validateTargetURL accepts anything with a registrable domain
func validateTargetURL(s string) error {
	s = strings.TrimSpace(sanitizeInput(s))
	if s == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if _, err := api.ExtractRootDomain(s); err != nil {
		return fmt.Errorf("not a valid URL or domain: %s", s)
	}
	return nil
}

// PromptForURL prompts the user for the URL to scrape
func PromptForURL() (string, error) {
	var input string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter URL to scrape").
				Description("Any URL or domain, e.g. example.com or https://example.com/about").
				Placeholder("example.com").
				Value(&input).
				Validate(validateTargetURL),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return strings.TrimSpace(sanitizeInput(input)), nil
}
