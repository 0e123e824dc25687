// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Chapter identifies one of the five thesis chapters.
type Chapter string

const (
	ChapterIntroduction Chapter = "bab1"
	ChapterLiterature   Chapter = "bab2"
	ChapterMethod       Chapter = "bab3"
	ChapterResults      Chapter = "bab4"
	ChapterConclusion   Chapter = "bab5"
)

// Chapters lists every chapter in manuscript order.
var Chapters = []Chapter{
	ChapterIntroduction,
	ChapterLiterature,
	ChapterMethod,
	ChapterResults,
	ChapterConclusion,
}

var chapterNames = map[Chapter]string{
	ChapterIntroduction: "BAB I PENDAHULUAN",
	ChapterLiterature:   "BAB II TINJAUAN PUSTAKA",
	ChapterMethod:       "BAB III METODOLOGI PENELITIAN",
	ChapterResults:      "BAB IV HASIL DAN PEMBAHASAN",
	ChapterConclusion:   "BAB V KESIMPULAN DAN SARAN",
}

// Name returns the display heading for the chapter.
func (c Chapter) Name() string {
	if n, ok := chapterNames[c]; ok {
		return n
	}
	return strings.ToUpper(string(c))
}

// Valid reports whether c is one of the known chapters.
func (c Chapter) Valid() bool {
	_, ok := chapterNames[c]
	return ok
}

// ParseChapter accepts "bab3", "3", or "BAB3".
func ParseChapter(s string) (Chapter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && s[0] <= '5' {
		s = "bab" + s
	}
	c := Chapter(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown chapter %q: use bab1..bab5", s)
	}
	return c, nil
}

// Fields lists the fields of study offered to students.
var Fields = []string{
	"Kesehatan/Keperawatan",
	"Kedokteran",
	"Teknik",
	"Ekonomi",
	"Hukum",
	"Pendidikan",
	"Sosial",
	"Pertanian",
}
