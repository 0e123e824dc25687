// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft generates thesis content (title options, search formulas,
// chapter outlines, section prose) into a session through a text
// generator, grounding section prose in the uploaded reference corpus.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/thesis-engine/internal/llm"
	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/internal/retrieve"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// ErrMissingInput reports a required session field that is empty. It is
// returned before any generation call.
var ErrMissingInput = errors.New("missing required input")

// summaryChars bounds how much of the results chapter is quoted when
// drafting the conclusion.
const summaryChars = 1000

// contextTopK is the number of corpus chunks quoted per section.
const contextTopK = 3

// Drafter fills a session with generated content.
type Drafter struct {
	Gen llm.Generator
	Log logrus.FieldLogger
}

// New returns a Drafter over gen.
func New(gen llm.Generator, log logrus.FieldLogger) *Drafter {
	return &Drafter{Gen: gen, Log: logging.OrDiscard(log)}
}

func (d *Drafter) log() logrus.FieldLogger { return logging.OrDiscard(d.Log) }

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, field)
}

// SuggestTitles asks for three thesis titles for the session's field and
// topic and stores them as TitleOptions.
func (d *Drafter) SuggestTitles(ctx context.Context, s *session.Session) ([]string, error) {
	if strings.TrimSpace(s.Field) == "" {
		return nil, missing("field")
	}
	if strings.TrimSpace(s.Topic) == "" {
		return nil, missing("topic")
	}

	prompt, err := render(titlesTmpl, promptData{Field: s.Field, Topic: s.Topic})
	if err != nil {
		return nil, err
	}
	text, err := d.Gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	titles := ParseList(text)
	s.TitleOptions = titles
	d.log().WithField("count", len(titles)).Info("suggested titles")
	return titles, nil
}

// SearchFormulas asks for basic, synonym, and advanced boolean search
// strings for the chosen title, falling back to the topic.
func (d *Drafter) SearchFormulas(ctx context.Context, s *session.Session) ([]string, error) {
	subject := strings.TrimSpace(s.Title)
	if subject == "" {
		subject = strings.TrimSpace(s.Topic)
	}
	if subject == "" {
		return nil, missing("title or topic")
	}

	prompt, err := render(formulasTmpl, promptData{Field: s.Field, Title: subject})
	if err != nil {
		return nil, err
	}
	text, err := d.Gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	formulas := ParseList(text)
	s.Formulas = formulas
	return formulas, nil
}

// Outline asks for the sub-section headings of one chapter and stores them.
func (d *Drafter) Outline(ctx context.Context, s *session.Session, ch types.Chapter) ([]string, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: unknown chapter %q", ErrMissingInput, ch)
	}
	if strings.TrimSpace(s.Title) == "" {
		return nil, missing("title")
	}

	prompt, err := render(outlineTmpl, promptData{Field: s.Field, Title: s.Title, Chapter: ch.Name()})
	if err != nil {
		return nil, err
	}
	text, err := d.Gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items := ParseList(text)
	if s.Outlines == nil {
		s.Outlines = map[types.Chapter][]string{}
	}
	s.Outlines[ch] = items
	return items, nil
}

// WriteSection drafts one sub-section, grounded in the corpus chunks most
// relevant to it, and appends it to the chapter. On failure the session is
// left unchanged.
func (d *Drafter) WriteSection(ctx context.Context, s *session.Session, ch types.Chapter, sub string) (string, error) {
	if !ch.Valid() {
		return "", fmt.Errorf("%w: unknown chapter %q", ErrMissingInput, ch)
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return "", missing("sub-section")
	}
	if strings.TrimSpace(s.Title) == "" {
		return "", missing("title")
	}

	data := promptData{
		Field:   s.Field,
		Title:   s.Title,
		Chapter: ch.Name(),
		Sub:     sub,
		Context: retrieve.Retrieve(sub, s.Corpus.Text(), contextTopK),
	}
	switch ch {
	case types.ChapterResults:
		data.Data = s.ResearchData
	case types.ChapterConclusion:
		data.Summary = prefix(s.Chapters[types.ChapterResults], summaryChars)
	}

	prompt, err := render(sectionTmpl, data)
	if err != nil {
		return "", err
	}
	text, err := d.Gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	if s.Chapters == nil {
		s.Chapters = map[types.Chapter]string{}
	}
	s.Chapters[ch] += fmt.Sprintf("\n\n## %s\n%s", sub, text)

	d.log().WithFields(logrus.Fields{
		"chapter":     ch,
		"sub":         sub,
		"context_len": len(data.Context),
	}).Info("drafted section")
	return text, nil
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
