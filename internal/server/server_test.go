// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/thesis-engine/internal/access"
	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/llm"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

type fakeSearcher struct {
	got types.SearchQuery
}

func (f *fakeSearcher) Search(_ context.Context, q types.SearchQuery) ([]types.BibliographicRecord, error) {
	f.got = q
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return []types.BibliographicRecord{{Title: "Effects of X", Author: "Lee et al.", Year: 2024, Source: "pubmed"}}, nil
}

type fakeGen struct {
	reply string
	err   error
}

func (g *fakeGen) Generate(context.Context, string) (string, error) { return g.reply, g.err }

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	srv      *httptest.Server
	searcher *fakeSearcher
	gen      *fakeGen
	sessions *session.Manager
}

func newFixture(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		searcher: &fakeSearcher{},
		gen:      &fakeGen{reply: "- Judul A\n- Judul B\n- Judul C"},
		sessions: session.NewManager(session.NewMemoryStore(0)),
	}
	deps := &Deps{
		Search:   f.searcher,
		Sessions: f.sessions,
		Drafter:  draft.New(f.gen, nil),
		Now:      func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(deps)
	}
	f.srv = httptest.NewServer(NewRouter(deps))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	resp, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/search", `{"field":"Kedokteran","keyword":"stunting","limit":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out searchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Effects of X", out.Records[0].Title)
	assert.Equal(t, types.DefaultMaxAgeYears, f.searcher.got.MaxAgeYears)

	f.do(t, http.MethodPost, "/api/search", `{"keyword":"x","max_age_years":0}`)
	assert.Equal(t, 0, f.searcher.got.MaxAgeYears)
}

func TestSearchValidation(t *testing.T) {
	f := newFixture(t, nil)
	for _, body := range []string{
		`{"keyword":""}`,
		`{"keyword":"x","limit":101}`,
		`{"keyword":"x","limit":-1}`,
		`{"keyword":"x","unknown":true}`,
		`not json`,
	} {
		resp, out := f.do(t, http.MethodPost, "/api/search", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%s -> %s", body, out)
	}

	resp, _ := f.do(t, http.MethodPost, "/api/search", `{"keyword":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetrieve(t *testing.T) {
	f := newFixture(t, nil)
	body := `{"query":"stunting prevalence","corpus":"` + strings.Repeat("a", 120) + ` stunting"}`
	resp, out := f.do(t, http.MethodPost, "/api/retrieve", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(out), "stunting")

	resp, _ = f.do(t, http.MethodPost, "/api/retrieve", `{"corpus":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPut, "/api/sessions/ana", `{"topic":"gizi balita","title":"Edukasi Gizi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = f.do(t, http.MethodGet, "/api/sessions/ana", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"title":"Edukasi Gizi"`)
	assert.Contains(t, string(body), `"field":"Kesehatan/Keperawatan"`)

	resp, _ = f.do(t, http.MethodDelete, "/api/sessions/ana", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s, err := f.sessions.Load(context.Background(), "ana")
	require.NoError(t, err)
	assert.Empty(t, s.Title)
}

func TestSessionSearchKeepsRecords(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPut, "/api/sessions/ana", `{"field":"Kedokteran"}`)

	resp, body := f.do(t, http.MethodPost, "/api/sessions/ana/search", `{"keyword":"anemia"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Kedokteran", f.searcher.got.Field)

	s, _ := f.sessions.Load(context.Background(), "ana")
	assert.Len(t, s.Records, 1)
}

func TestGenerationEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/sessions/ana/titles", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "missing topic: %s", body)

	f.do(t, http.MethodPut, "/api/sessions/ana", `{"topic":"gizi"}`)
	resp, body = f.do(t, http.MethodPost, "/api/sessions/ana/titles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Judul B")

	f.do(t, http.MethodPut, "/api/sessions/ana", `{"title":"Judul A"}`)
	resp, _ = f.do(t, http.MethodPost, "/api/sessions/ana/outline/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f.gen.reply = "Isi bagian (Lee, 2024)."
	resp, body = f.do(t, http.MethodPost, "/api/sessions/ana/chapters/bab1/sections", `{"sub":"Latar Belakang"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	s, _ := f.sessions.Load(context.Background(), "ana")
	assert.Equal(t, []string{"Judul A", "Judul B", "Judul C"}, s.Outlines[types.ChapterIntroduction])
	assert.Equal(t, "\n\n## Latar Belakang\nIsi bagian (Lee, 2024).", s.Chapters[types.ChapterIntroduction])

	resp, body = f.do(t, http.MethodGet, "/api/sessions/ana/citations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Lee, 2024")

	resp, _ = f.do(t, http.MethodPost, "/api/sessions/ana/chapters/bab9/sections", `{"sub":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/sessions/ana/chapters/bab1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s, _ = f.sessions.Load(context.Background(), "ana")
	assert.Empty(t, s.Chapters[types.ChapterIntroduction])
	assert.Empty(t, s.Outlines[types.ChapterIntroduction])
}

func TestGenerationFailureIsBadGateway(t *testing.T) {
	f := newFixture(t, nil)
	f.gen.err = &llm.GenerationError{Messages: []string{"quota exceeded"}, Err: llm.ErrQuotaExhausted}
	f.do(t, http.MethodPut, "/api/sessions/ana", `{"title":"T"}`)

	resp, body := f.do(t, http.MethodPost, "/api/sessions/ana/chapters/bab2/sections", `{"sub":"Teori"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "quota exceeded")

	s, _ := f.sessions.Load(context.Background(), "ana")
	assert.Empty(t, s.Chapters[types.ChapterLiterature])
}

func TestGenerationDisabled(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Drafter = nil })
	resp, _ := f.do(t, http.MethodPost, "/api/sessions/ana/formulas", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func samplePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.MultiCell(0, 10, text, "", "", false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func upload(t *testing.T, f *fixture, files map[string][]byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/sessions/ana/documents", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestUploadDocuments(t *testing.T) {
	f := newFixture(t, nil)

	resp := upload(t, f, map[string][]byte{
		"jurnal.pdf": samplePDF(t, "Stunting prevalence in toddlers"),
		"rusak.pdf":  []byte("not a pdf"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s, _ := f.sessions.Load(context.Background(), "ana")
	assert.Equal(t, []string{"jurnal.pdf"}, s.Corpus.Documents())
	assert.Contains(t, s.Corpus.Text(), "--- SUMBER: jurnal.pdf ---")

	resp = upload(t, f, map[string][]byte{"rusak.pdf": []byte("junk")})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExport(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPut, "/api/sessions/ana", `{"title":"T"}`)

	resp, body := f.do(t, http.MethodGet, "/api/sessions/ana/export?format=docx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "wordprocessingml")
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp, body = f.do(t, http.MethodGet, "/api/sessions/ana/export?format=md&chapter=bab1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "bab1.md")
	assert.True(t, strings.HasPrefix(string(body), "# BAB I PENDAHULUAN"))

	resp, _ = f.do(t, http.MethodGet, "/api/sessions/ana/export?format=xlsx", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccessControl(t *testing.T) {
	reg, err := access.Parse([]byte(`tokens:
  ANA: {user: ana, expires: 2026-12-31}
  OLD: {user: budi, expires: 2025-01-01}
`), testNow)
	require.NoError(t, err)
	f := newFixture(t, func(d *Deps) { d.Tokens = reg })

	resp, _ := f.do(t, http.MethodGet, "/api/sessions/ana", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/sessions/budi", "", "Authorization", "Bearer OLD")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/sessions/budi", "", "Authorization", "Bearer ANA")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/sessions/ana", "", "Authorization", "Bearer ANA")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(draft.ErrMissingInput))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.New("upstream")))
}
