// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session persists a student's thesis workspace (field, title,
// outlines, drafted chapters, uploaded reference corpus) behind a
// key-value store with memory, SQLite, and Redis backends.
package session

import (
	"time"

	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Session is one user's thesis workspace.
type Session struct {
	ID   string `json:"id" yaml:"id"`
	User string `json:"user" yaml:"user"`

	Field        string   `json:"field" yaml:"field"`
	Topic        string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	TitleOptions []string `json:"title_options,omitempty" yaml:"title_options,omitempty"`
	Title        string   `json:"title,omitempty" yaml:"title,omitempty"`
	Formulas     []string `json:"formulas,omitempty" yaml:"formulas,omitempty"`

	Outlines map[types.Chapter][]string `json:"outlines,omitempty" yaml:"outlines,omitempty"`
	Chapters map[types.Chapter]string   `json:"chapters,omitempty" yaml:"chapters,omitempty"`

	// ResearchData is free-form result data fed to the results chapter.
	ResearchData string `json:"research_data,omitempty" yaml:"research_data,omitempty"`

	Corpus  corpus.Corpus               `json:"corpus" yaml:"corpus"`
	Records []types.BibliographicRecord `json:"records,omitempty" yaml:"records,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// DefaultField is the field of study a new session starts with.
var DefaultField = types.Fields[0]

// New returns an empty session for user.
func New(id, user string, now time.Time) *Session {
	return &Session{
		ID:        id,
		User:      user,
		Field:     DefaultField,
		Outlines:  map[types.Chapter][]string{},
		Chapters:  map[types.Chapter]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ensureMaps initializes maps dropped by an empty serialization.
func (s *Session) ensureMaps() {
	if s.Outlines == nil {
		s.Outlines = map[types.Chapter][]string{}
	}
	if s.Chapters == nil {
		s.Chapters = map[types.Chapter]string{}
	}
}

// SetTitle records the chosen title.
func (s *Session) SetTitle(title string) {
	s.Title = title
}

// ResetChapter clears one chapter's outline and drafted text.
func (s *Session) ResetChapter(ch types.Chapter) {
	s.ensureMaps()
	delete(s.Outlines, ch)
	delete(s.Chapters, ch)
}
