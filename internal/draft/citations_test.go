// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"fmt"
	"testing"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

func TestExtractCitations(t *testing.T) {
	text := `Prevalensi meningkat (Lee, 2021; Putri dkk., 2023). Menurut WHO (2022) dan
(Smith et al., 2020) serta (World Health Organization, 2019). Nilai (p = 0,003) bukan sitasi (2020).`

	got := ExtractCitations(text)
	want := []Citation{
		{"Lee", 2021},
		{"Putri", 2023},
		{"Smith", 2020},
		{"World Health Organization", 2019},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("ExtractCitations = %v, want %v", got, want)
	}
}

func TestUnmatchedCitations(t *testing.T) {
	records := []types.BibliographicRecord{
		{Author: "Lee et al.", Year: 2021},
		{Author: "Team", Year: 2024},
	}
	text := "(Lee, 2021) lalu (Lee, 2021) dan (Putri dkk., 2023) serta (Adams, 2019)."

	got := UnmatchedCitations(text, records)
	want := []Citation{{"Adams", 2019}, {"Putri", 2023}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("UnmatchedCitations = %v, want %v", got, want)
	}
}

func TestHasNumericCitations(t *testing.T) {
	if !HasNumericCitations("hasil ini [1] dan [2, 3]") {
		t.Error("expected numeric citations")
	}
	if HasNumericCitations("(Lee, 2021) dan [lihat lampiran]") {
		t.Error("unexpected numeric citation")
	}
}
