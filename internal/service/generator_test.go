package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/readmegen/internal/model"
)

// fakeLLM is a scriptable generative backend.
type fakeLLM struct {
	completion string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// allSectionHeadings is what every generated fallback (and every compliant
// AI completion) must contain: the title plus the twelve "## " headings.
func assertAllSections(t *testing.T, body, repoName string) {
	t.Helper()
	if !strings.Contains(body, "# "+repoName) {
		t.Errorf("body missing title heading for %q", repoName)
	}
	for _, title := range sectionTitles {
		if !strings.Contains(body, "## "+title) {
			t.Errorf("body missing section %q", title)
		}
	}
}

func demoDescriptor() *model.RepositoryDescriptor {
	return &model.RepositoryDescriptor{
		Name:          "demo",
		Private:       false,
		Stars:         5,
		Forks:         1,
		Language:      "Go",
		Languages:     []string{"Go"},
		Topics:        []string{},
		License:       "",
		RootFiles:     []string{"main.go", "README.md"},
		URL:           "https://github.com/owner/demo",
		LastCommitMsg: "No commits yet",
	}
}

func TestGenerateUsesAIWhenAvailable(t *testing.T) {
	llm := &fakeLLM{completion: "# demo\n\nAI-written readme body"}
	gen := NewGenerator(llm, quietLogger())

	doc := gen.Generate(context.Background(), demoDescriptor())

	if doc.Source != model.SourceAI {
		t.Fatalf("Source = %q, want ai", doc.Source)
	}
	// Model output is returned verbatim, not post-processed.
	if doc.Body != "# demo\n\nAI-written readme body" {
		t.Errorf("Body = %q, want verbatim completion", doc.Body)
	}
	if doc.Length != len(doc.Body) {
		t.Errorf("Length = %d, want %d", doc.Length, len(doc.Body))
	}
	if llm.calls != 1 {
		t.Errorf("LLM called %d times, want exactly 1 (no retry)", llm.calls)
	}
}

func TestGenerateFallsBackOnAIFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("quota exhausted")}
	gen := NewGenerator(llm, quietLogger())
	desc := demoDescriptor()

	doc := gen.Generate(context.Background(), desc)

	if doc.Source != model.SourceFallback {
		t.Fatalf("Source = %q, want fallback", doc.Source)
	}
	if doc.Body == "" {
		t.Fatal("fallback produced an empty document")
	}
	if llm.calls != 1 {
		t.Errorf("LLM called %d times, want exactly 1 (no retry)", llm.calls)
	}
	assertAllSections(t, doc.Body, "demo")
	if !strings.Contains(doc.Body, "demo") {
		t.Error("fallback body does not mention the repository name")
	}
}

func TestGenerateFallsBackOnEmptyCompletion(t *testing.T) {
	llm := &fakeLLM{completion: "   \n"}
	gen := NewGenerator(llm, quietLogger())

	doc := gen.Generate(context.Background(), demoDescriptor())
	if doc.Source != model.SourceFallback {
		t.Fatalf("Source = %q, want fallback for blank completion", doc.Source)
	}
}

func TestGenerateWithNilBackend(t *testing.T) {
	gen := NewGenerator(nil, quietLogger())

	doc := gen.Generate(context.Background(), demoDescriptor())
	if doc.Source != model.SourceFallback || doc.Body == "" {
		t.Fatalf("doc = %+v, want non-empty fallback", doc)
	}
}

func TestComposePromptEmbedsEveryField(t *testing.T) {
	llm := &fakeLLM{completion: "x"}
	gen := NewGenerator(llm, quietLogger())

	desc := demoDescriptor()
	desc.Description = "a demo repo"
	desc.Topics = []string{"cli", "tooling"}
	desc.License = "MIT"
	desc.DefaultBranch = "main"
	desc.Private = true
	gen.Generate(context.Background(), desc)

	for _, want := range []string{
		"demo", "a demo repo", "private", "Stars: 5", "Forks: 1",
		"Go", "cli, tooling", "MIT", "main", "main.go, README.md",
		"https://github.com/owner/demo", "No commits yet",
	} {
		if !strings.Contains(llm.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// The prompt pins the section order for the model.
	for _, title := range sectionTitles {
		if !strings.Contains(llm.lastPrompt, title) {
			t.Errorf("prompt does not name section %q", title)
		}
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	desc := demoDescriptor()

	first := Synthesize(desc)
	second := Synthesize(desc)
	if first != second {
		t.Fatal("Synthesize is not byte-identical for the same descriptor")
	}
}

func TestSynthesizeAllSectionsWithEmptyOptionals(t *testing.T) {
	// Every optional field empty: sections still present, no placeholder
	// text like "N/A" or "TODO".
	desc := &model.RepositoryDescriptor{Name: "bare"}

	body := Synthesize(desc)
	assertAllSections(t, body, "bare")

	for _, placeholder := range []string{"N/A", "TODO", "unknown", "Unknown"} {
		if strings.Contains(body, placeholder) {
			t.Errorf("fallback rendered placeholder text %q", placeholder)
		}
	}
}

func TestSynthesizePrivateNotice(t *testing.T) {
	pub := demoDescriptor()
	priv := demoDescriptor()
	priv.Private = true

	if strings.Contains(Synthesize(pub), "private repository") {
		t.Error("public repo fallback carries the private notice")
	}
	if !strings.Contains(Synthesize(priv), "private repository") {
		t.Error("private repo fallback missing the private notice")
	}
}

func TestSynthesizeScenarioFromFailingBackend(t *testing.T) {
	// Descriptor {name:"demo", private:false, stars:5, forks:1,
	// language:"Go", languages:["Go"], topics:[], license:null,
	// files:["main.go","README.md"]} with the backend failing.
	llm := &fakeLLM{err: errors.New("network down")}
	gen := NewGenerator(llm, quietLogger())

	doc := gen.Generate(context.Background(), demoDescriptor())

	if doc.Source != model.SourceFallback {
		t.Fatalf("Source = %q, want fallback", doc.Source)
	}
	assertAllSections(t, doc.Body, "demo")
	if !strings.Contains(doc.Body, "git clone https://github.com/owner/demo.git") {
		t.Errorf("installation section not built from the URL:\n%s", doc.Body)
	}
	if !strings.Contains(doc.Body, "main.go") || !strings.Contains(doc.Body, "README.md") {
		t.Error("project structure does not list the root files")
	}
}
