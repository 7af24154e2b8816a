package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/readmegen/internal/model"
)

// LLM is the generative backend: one prompt in, one completion out. It is
// treated as an opaque, possibly-failing function — no retry, no streaming.
// VertexLLM is the production implementation; tests substitute a fake.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// sectionTitles are the thirteen README sections, in the fixed order both
// the prompt and the fallback emit them. The first section is the document
// title itself rather than a "## " heading.
var sectionTitles = []string{
	"Description",
	"Access",
	"Features",
	"Tech Stack",
	"Prerequisites",
	"Installation",
	"Configuration",
	"Usage",
	"Project Structure",
	"Contributing",
	"License",
	"Contact",
}

// Generator turns a RepositoryDescriptor into a README document.
//
// RESILIENCE CONTRACT:
// The AI backend is invoked exactly once. On ANY failure — transport error,
// quota, empty completion — the generator falls back to the deterministic
// template. Backend degradation is never surfaced as a generation failure;
// a valid descriptor always yields a non-empty document.
type Generator struct {
	llm    LLM // nil when no backend is configured; every run falls back
	logger *slog.Logger
}

// NewGenerator creates a Generator. llm may be nil.
func NewGenerator(llm LLM, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

// Generate produces the README for the descriptor.
func (g *Generator) Generate(ctx context.Context, desc *model.RepositoryDescriptor) *model.GeneratedDocument {
	if g.llm != nil {
		text, err := g.llm.Generate(ctx, composePrompt(desc))
		if err == nil && strings.TrimSpace(text) != "" {
			return &model.GeneratedDocument{
				Body:   text, // model output verbatim
				Source: model.SourceAI,
				Length: len(text),
			}
		}
		if err != nil {
			g.logger.Warn("AI backend failed, using fallback template",
				slog.String("repo", desc.Name),
				slog.String("error", err.Error()),
			)
		} else {
			g.logger.Warn("AI backend returned an empty completion, using fallback template",
				slog.String("repo", desc.Name),
			)
		}
	}

	body := Synthesize(desc)
	return &model.GeneratedDocument{
		Body:   body,
		Source: model.SourceFallback,
		Length: len(body),
	}
}

// composePrompt embeds every descriptor field and pins the section order so
// AI output and fallback output share the same skeleton.
func composePrompt(d *model.RepositoryDescriptor) string {
	var b strings.Builder

	b.WriteString("You are writing a README.md for a software repository. ")
	b.WriteString("Produce polished GitHub-flavoured markdown with exactly these sections, in this order: ")
	b.WriteString("a title with status badges, then \"")
	b.WriteString(strings.Join(sectionTitles, "\", \""))
	b.WriteString("\" as second-level headings. ")
	b.WriteString("The Access section must note that the repository is private and requires credentials when visibility is private; keep it brief otherwise. ")
	b.WriteString("Do not invent facts beyond the metadata below.\n\nRepository metadata:\n")

	visibility := "public"
	if d.Private {
		visibility = "private"
	}
	fmt.Fprintf(&b, "- Name: %s\n", d.Name)
	fmt.Fprintf(&b, "- Description: %s\n", d.Description)
	fmt.Fprintf(&b, "- Visibility: %s\n", visibility)
	fmt.Fprintf(&b, "- Stars: %d, Forks: %d, Watchers: %d, Open issues: %d\n", d.Stars, d.Forks, d.Watchers, d.OpenIssues)
	fmt.Fprintf(&b, "- Primary language: %s\n", d.Language)
	fmt.Fprintf(&b, "- All languages: %s\n", strings.Join(d.Languages, ", "))
	fmt.Fprintf(&b, "- Topics: %s\n", strings.Join(d.Topics, ", "))
	fmt.Fprintf(&b, "- License: %s\n", d.License)
	fmt.Fprintf(&b, "- Default branch: %s\n", d.DefaultBranch)
	fmt.Fprintf(&b, "- Root files: %s\n", strings.Join(d.RootFiles, ", "))
	fmt.Fprintf(&b, "- URL: %s\n", d.URL)
	fmt.Fprintf(&b, "- Created: %s, Last updated: %s\n", d.CreatedAt.Format("2006-01-02"), d.UpdatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Latest commit: %s\n", d.LastCommitMsg)

	return b.String()
}

// Synthesize renders the deterministic fallback README: identical
// descriptor, byte-identical output. All thirteen sections are always
// present; optional fields that are missing render as nothing at all —
// never as placeholder text.
func Synthesize(d *model.RepositoryDescriptor) string {
	var b strings.Builder

	// 1. Title + badges.
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	fmt.Fprintf(&b, "![Stars](https://img.shields.io/badge/stars-%d-blue) ", d.Stars)
	fmt.Fprintf(&b, "![Forks](https://img.shields.io/badge/forks-%d-blue)", d.Forks)
	if d.Language != "" {
		fmt.Fprintf(&b, " ![Language](https://img.shields.io/badge/language-%s-informational)", strings.ReplaceAll(d.Language, " ", "%20"))
	}
	b.WriteString("\n")

	section := func(title string) { fmt.Fprintf(&b, "\n## %s\n\n", title) }

	// 2. Description.
	section("Description")
	if d.Description != "" {
		b.WriteString(d.Description + "\n")
	}

	// 3. Access notice — content only when the repository is private.
	section("Access")
	if d.Private {
		b.WriteString("🔒 This is a private repository. Access requires appropriate credentials.\n")
	}

	// 4. Features — derived from topics; empty when there are none.
	section("Features")
	for _, topic := range d.Topics {
		fmt.Fprintf(&b, "- %s\n", topic)
	}

	// 5. Tech stack.
	section("Tech Stack")
	for _, lang := range d.Languages {
		fmt.Fprintf(&b, "- %s\n", lang)
	}

	// 6. Prerequisites.
	section("Prerequisites")
	if d.Language != "" {
		fmt.Fprintf(&b, "- A working %s toolchain\n", d.Language)
	}
	b.WriteString("- Git\n")

	// 7. Installation.
	section("Installation")
	b.WriteString("```bash\n")
	if d.URL != "" {
		fmt.Fprintf(&b, "git clone %s.git\n", d.URL)
	} else {
		fmt.Fprintf(&b, "git clone <repository-url>\n")
	}
	fmt.Fprintf(&b, "cd %s\n", d.Name)
	b.WriteString("```\n")

	// 8. Configuration — points at config-looking files actually present.
	section("Configuration")
	for _, f := range d.RootFiles {
		if isConfigFile(f) {
			fmt.Fprintf(&b, "- See `%s`\n", f)
		}
	}

	// 9. Usage.
	section("Usage")
	fmt.Fprintf(&b, "Refer to the documentation in the repository")
	if d.DefaultBranch != "" {
		fmt.Fprintf(&b, " (default branch: `%s`)", d.DefaultBranch)
	}
	b.WriteString(".\n")

	// 10. Project structure.
	section("Project Structure")
	if len(d.RootFiles) > 0 {
		b.WriteString("```\n")
		for _, f := range d.RootFiles {
			fmt.Fprintf(&b, "%s\n", f)
		}
		b.WriteString("```\n")
	}

	// 11. Contributing.
	section("Contributing")
	b.WriteString("Contributions are welcome. Fork the repository and open a pull request.\n")

	// 12. License.
	section("License")
	if d.License != "" {
		fmt.Fprintf(&b, "Distributed under the %s license.\n", d.License)
	}

	// 13. Contact.
	section("Contact")
	if d.URL != "" {
		fmt.Fprintf(&b, "Project link: %s\n", d.URL)
	}

	return b.String()
}

// isConfigFile reports whether a root file name looks like configuration —
// used only to enrich the fallback's Configuration section.
func isConfigFile(name string) bool {
	switch strings.ToLower(name) {
	case ".env.example", ".env.sample", "config.yaml", "config.yml", "config.json", "config.toml", "docker-compose.yml", "docker-compose.yaml", "makefile":
		return true
	}
	return false
}
