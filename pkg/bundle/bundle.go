// Package bundle loads assessment bundles: a single YAML file describing the
// organization under assessment, its category weights, the questionnaire, and
// the evidence submitted with it.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// Bundle is the parsed assessment bundle.
type Bundle struct {
	Version      string        `yaml:"version"`
	Organization string        `yaml:"organization" validate:"required"`
	Weights      []WeightEntry `yaml:"weights" validate:"required,min=1,dive"`
	Sections     []Section     `yaml:"sections" validate:"required,min=1,dive"`
	Documents    []Document    `yaml:"documents" validate:"dive"`
	Answers      []Answer      `yaml:"answers" validate:"dive"`
}

// WeightEntry assigns a weight to a free-text questionnaire category.
type WeightEntry struct {
	Category string  `yaml:"category" validate:"required"`
	Weight   float64 `yaml:"weight" validate:"gte=0,lte=1"`
}

// Section groups questions under a questionnaire heading.
type Section struct {
	Title     string     `yaml:"title" validate:"required"`
	Category  string     `yaml:"category"`
	Questions []Question `yaml:"questions" validate:"required,min=1,dive"`
}

// Question is one questionnaire item. Category falls back to the section's
// category when not set on the question itself.
type Question struct {
	ID       string   `yaml:"id" validate:"required"`
	Category string   `yaml:"category"`
	Text     string   `yaml:"text" validate:"required"`
	Keywords []string `yaml:"keywords"`
}

// Document is an evidence document: either an uploaded policy (free text,
// inline or referenced by path) or a structured system export carrying
// declared per-question results.
type Document struct {
	Title   string         `yaml:"title" validate:"required"`
	Kind    string         `yaml:"kind" validate:"omitempty,oneof=policy export"`
	Text    string         `yaml:"text"`
	Path    string         `yaml:"path"`
	Results []BundleResult `yaml:"results" validate:"dive"`
}

// BundleResult is a declared per-question result inside an export document.
type BundleResult struct {
	QuestionID string  `yaml:"question_id" validate:"required"`
	Answer     string  `yaml:"answer" validate:"required"`
	Score      float64 `yaml:"score" validate:"gte=0,lte=100"`
	Confidence float64 `yaml:"confidence" validate:"gte=0,lte=1"`
}

// Answer is a manually-declared questionnaire answer.
type Answer struct {
	QuestionID string `yaml:"question_id" validate:"required"`
	Text       string `yaml:"text" validate:"required"`
}

// Load reads and validates an assessment bundle. Document paths are resolved
// relative to the bundle file's directory and inlined.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: reading %s: %w", path, err)
	}

	b := &Bundle{}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("bundle: parsing %s: %w", path, err)
	}

	if err := validator.New().Struct(b); err != nil {
		return nil, fmt.Errorf("bundle: invalid bundle %s: %w", path, err)
	}

	if err := b.resolve(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return b, nil
}

// resolve inlines path-referenced document text and checks per-document and
// per-question consistency that tags alone cannot express.
func (b *Bundle) resolve(baseDir string) error {
	ids := make(map[string]bool)
	for _, s := range b.Sections {
		for _, q := range s.Questions {
			if ids[q.ID] {
				return fmt.Errorf("bundle: duplicate question ID %q", q.ID)
			}
			ids[q.ID] = true
		}
	}

	for _, a := range b.Answers {
		if !ids[a.QuestionID] {
			return fmt.Errorf("bundle: answer references unknown question %q", a.QuestionID)
		}
	}

	for i := range b.Documents {
		doc := &b.Documents[i]
		if doc.Kind == "" {
			doc.Kind = "policy"
		}

		switch doc.Kind {
		case "export":
			if len(doc.Results) == 0 {
				return fmt.Errorf("bundle: export document %q declares no results", doc.Title)
			}
			for _, r := range doc.Results {
				if !ids[r.QuestionID] {
					return fmt.Errorf("bundle: document %q references unknown question %q", doc.Title, r.QuestionID)
				}
			}
		case "policy":
			if doc.Text == "" && doc.Path == "" {
				return fmt.Errorf("bundle: policy document %q has neither text nor path", doc.Title)
			}
			if doc.Path != "" {
				p := doc.Path
				if !filepath.IsAbs(p) {
					p = filepath.Join(baseDir, p)
				}
				data, err := os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("bundle: reading document %q: %w", doc.Title, err)
				}
				doc.Text = string(data)
			}
		}
	}

	return nil
}

// WeightSet converts the bundle's weight entries to the scoring weight set.
func (b *Bundle) WeightSet() interfaces.CategoryWeightSet {
	out := make(interfaces.CategoryWeightSet, 0, len(b.Weights))
	for _, w := range b.Weights {
		out = append(out, interfaces.CategoryWeight{Key: w.Category, Weight: w.Weight})
	}
	return out
}

// Questions flattens the bundle's sections into the questionnaire. A question
// without its own category inherits the section's.
func (b *Bundle) Questions() []interfaces.Question {
	var out []interfaces.Question
	for _, s := range b.Sections {
		for _, q := range s.Questions {
			cat := q.Category
			if cat == "" {
				cat = s.Category
			}
			out = append(out, interfaces.Question{
				ID:       q.ID,
				Section:  s.Title,
				Category: cat,
				Text:     q.Text,
				Keywords: q.Keywords,
			})
		}
	}
	return out
}

// Evidence converts the bundle's documents and answers into evidence items.
func (b *Bundle) Evidence() []interfaces.EvidenceItem {
	var out []interfaces.EvidenceItem

	for _, doc := range b.Documents {
		switch doc.Kind {
		case "export":
			results := make([]interfaces.DeclaredResult, 0, len(doc.Results))
			for _, r := range doc.Results {
				results = append(results, interfaces.DeclaredResult{
					QuestionID: r.QuestionID,
					Answer:     r.Answer,
					Score:      r.Score,
					Confidence: r.Confidence,
				})
			}
			out = append(out, interfaces.EvidenceItem{
				Source:  interfaces.SourceAIExtracted,
				Title:   doc.Title,
				Results: results,
			})
		default:
			out = append(out, interfaces.EvidenceItem{
				Source: interfaces.SourceUploadedDocument,
				Title:  doc.Title,
				Text:   doc.Text,
			})
		}
	}

	for _, a := range b.Answers {
		out = append(out, interfaces.EvidenceItem{
			Source:     interfaces.SourceManualAnswer,
			QuestionID: a.QuestionID,
			Text:       a.Text,
		})
	}

	return out
}
