// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/export"
	"github.com/pdiddy/thesis-engine/internal/llm"
	"github.com/pdiddy/thesis-engine/internal/retrieve"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// searchRequest is the search payload. An absent max_age_years uses the
// default window rather than the current year only.
type searchRequest struct {
	Field          string `json:"field"`
	Keyword        string `json:"keyword" validate:"required"`
	Limit          int    `json:"limit" validate:"gte=0,lte=100"`
	MaxAgeYears    *int   `json:"max_age_years" validate:"omitempty,gte=0,lte=100"`
	OpenAccessOnly bool   `json:"open_access_only"`
	FullTextOnly   bool   `json:"fulltext_only"`
}

func (s searchRequest) query() types.SearchQuery {
	q := types.SearchQuery{
		Field:          s.Field,
		Keyword:        s.Keyword,
		Limit:          s.Limit,
		MaxAgeYears:    types.DefaultMaxAgeYears,
		OpenAccessOnly: s.OpenAccessOnly,
		FullTextOnly:   s.FullTextOnly,
	}
	if s.MaxAgeYears != nil {
		q.MaxAgeYears = *s.MaxAgeYears
	}
	return q
}

type searchResponse struct {
	Records []types.BibliographicRecord `json:"records"`
	Count   int                         `json:"count"`
}

func (a *api) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest) ([]types.BibliographicRecord, bool) {
	records, err := a.deps.Search.Search(r.Context(), req.query())
	if errors.Is(err, types.ErrInvalidQuery) {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return records, true
}

func (a *api) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, ok := a.runSearch(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Records: records, Count: len(records)})
}

// sessionSearch searches with the session's field and keeps the records.
func (a *api) sessionSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.withSession(w, r, func(s *session.Session) (any, int, error) {
		if req.Field == "" {
			req.Field = s.Field
		}
		records, err := a.deps.Search.Search(r.Context(), req.query())
		if err != nil {
			return nil, statusFor(err), err
		}
		s.Records = records
		return searchResponse{Records: records, Count: len(records)}, http.StatusOK, nil
	})
}

type retrieveRequest struct {
	Query  string `json:"query" validate:"required"`
	Corpus string `json:"corpus"`
	TopK   int    `json:"top_k" validate:"gte=0,lte=20"`
}

type retrieveResponse struct {
	Context string `json:"context"`
}

func (a *api) retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, retrieveResponse{Context: retrieve.Retrieve(req.Query, req.Corpus, req.TopK)})
}

// sessionView is the session as returned by the API. The corpus is
// summarized rather than echoed.
type sessionView struct {
	*session.Session
	Corpus    any      `json:"corpus"`
	Documents []string `json:"documents"`
}

func view(s *session.Session) sessionView {
	return sessionView{
		Session:   s,
		Corpus:    map[string]int{"chars": s.Corpus.Len(), "documents": len(s.Corpus.Segments)},
		Documents: s.Corpus.Documents(),
	}
}

func (a *api) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.deps.Sessions.Load(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

type sessionUpdate struct {
	Field        *string `json:"field" validate:"omitempty,max=200"`
	Topic        *string `json:"topic" validate:"omitempty,max=2000"`
	Title        *string `json:"title" validate:"omitempty,max=500"`
	ResearchData *string `json:"research_data"`
}

func (a *api) updateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdate
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.withSession(w, r, func(s *session.Session) (any, int, error) {
		if req.Field != nil {
			s.Field = *req.Field
		}
		if req.Topic != nil {
			s.Topic = *req.Topic
		}
		if req.Title != nil {
			s.SetTitle(*req.Title)
		}
		if req.ResearchData != nil {
			s.ResearchData = *req.ResearchData
		}
		return view(s), http.StatusOK, nil
	})
}

func (a *api) resetSession(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	unlock := a.lock(user)
	defer unlock()

	s, err := a.deps.Sessions.Reset(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

type uploadResponse struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped,omitempty"`
	Chars   int      `json:"chars"`
}

func (a *api) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.deps.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(`no files in form field "files"`))
		return
	}

	var resp uploadResponse
	var segs []corpus.Segment
	for _, fh := range files {
		seg, err := a.extractUpload(fh)
		if err != nil {
			a.log.WithError(err).WithField("file", fh.Filename).Warn("skipping unreadable upload")
			resp.Skipped = append(resp.Skipped, fh.Filename)
			continue
		}
		segs = append(segs, seg)
		resp.Added = append(resp.Added, fh.Filename)
	}
	if len(segs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, corpus.ErrNoText)
		return
	}

	a.withSession(w, r, func(s *session.Session) (any, int, error) {
		s.Corpus.AppendAll(segs)
		resp.Chars = s.Corpus.Len()
		return resp, http.StatusOK, nil
	})
}

func (a *api) extractUpload(fh *multipart.FileHeader) (corpus.Segment, error) {
	f, err := fh.Open()
	if err != nil {
		return corpus.Segment{}, err
	}
	defer f.Close()
	return a.deps.Extractor.ExtractReader(fh.Filename, f, fh.Size)
}

func (a *api) suggestTitles(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, func(d *draft.Drafter, s *session.Session) (any, error) {
		titles, err := d.SuggestTitles(r.Context(), s)
		return map[string][]string{"titles": titles}, err
	})
}

func (a *api) searchFormulas(w http.ResponseWriter, r *http.Request) {
	a.generate(w, r, func(d *draft.Drafter, s *session.Session) (any, error) {
		formulas, err := d.SearchFormulas(r.Context(), s)
		return map[string][]string{"formulas": formulas}, err
	})
}

func (a *api) outline(w http.ResponseWriter, r *http.Request) {
	ch, err := types.ParseChapter(chi.URLParam(r, "chapter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.generate(w, r, func(d *draft.Drafter, s *session.Session) (any, error) {
		items, err := d.Outline(r.Context(), s, ch)
		return map[string][]string{"outline": items}, err
	})
}

type sectionRequest struct {
	Sub string `json:"sub" validate:"required,max=300"`
}

func (a *api) writeSection(w http.ResponseWriter, r *http.Request) {
	ch, err := types.ParseChapter(chi.URLParam(r, "chapter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req sectionRequest
	if err := a.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.generate(w, r, func(d *draft.Drafter, s *session.Session) (any, error) {
		text, err := d.WriteSection(r.Context(), s, ch, req.Sub)
		if err != nil {
			return nil, err
		}
		return map[string]string{"text": text, "chapter": s.Chapters[ch]}, nil
	})
}

func (a *api) resetChapter(w http.ResponseWriter, r *http.Request) {
	ch, err := types.ParseChapter(chi.URLParam(r, "chapter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.withSession(w, r, func(s *session.Session) (any, int, error) {
		s.ResetChapter(ch)
		return view(s), http.StatusOK, nil
	})
}

type citationReport struct {
	Unmatched []string `json:"unmatched"`
	Numeric   bool     `json:"numeric"`
}

func (a *api) checkCitations(w http.ResponseWriter, r *http.Request) {
	s, err := a.deps.Sessions.Load(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	text := draft.Manuscript(s)
	report := citationReport{Unmatched: []string{}, Numeric: draft.HasNumericCitations(text)}
	for _, c := range draft.UnmatchedCitations(text, s.Records) {
		report.Unmatched = append(report.Unmatched, c.String())
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *api) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(export.FormatDOCX)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s, err := a.deps.Sessions.Load(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	text, name := draft.Manuscript(s), "tesis"
	if c := r.URL.Query().Get("chapter"); c != "" {
		ch, err := types.ParseChapter(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		text, name = draft.ChapterDocument(s, ch), string(ch)
	}

	data, err := export.Export(f, text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, name, f.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// withSession loads the path user's session under its lock, applies fn,
// and saves when fn succeeds.
func (a *api) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (any, int, error)) {
	user := chi.URLParam(r, "user")
	unlock := a.lock(user)
	defer unlock()

	s, err := a.deps.Sessions.Load(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	body, status, err := fn(s)
	if err != nil {
		writeError(w, status, err)
		return
	}
	if err := a.deps.Sessions.Save(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, status, body)
}

// generate runs a drafting operation against the session.
func (a *api) generate(w http.ResponseWriter, r *http.Request, fn func(*draft.Drafter, *session.Session) (any, error)) {
	if a.deps.Drafter == nil {
		writeError(w, http.StatusServiceUnavailable, llm.ErrNoCredentials)
		return
	}
	a.withSession(w, r, func(s *session.Session) (any, int, error) {
		body, err := fn(a.deps.Drafter, s)
		if err != nil {
			return nil, statusFor(err), err
		}
		return body, http.StatusOK, nil
	})
}

// statusFor maps domain errors onto HTTP statuses. Anything else is a
// generation failure reported as an upstream error.
func statusFor(err error) int {
	if errors.Is(err, draft.ErrMissingInput) || errors.Is(err, types.ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
