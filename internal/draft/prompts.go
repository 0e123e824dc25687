// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"fmt"
	"strings"
	"text/template"
)

// promptData is the view every prompt template renders from.
type promptData struct {
	Field   string
	Topic   string
	Title   string
	Chapter string
	Sub     string
	Context string
	Data    string
	Summary string
}

const listContract = `Format jawaban: satu butir per baris, tanpa penomoran ganda, tanpa kalimat pembuka atau penutup.`

var titlesTmpl = template.Must(template.New("titles").Parse(`Buat 3 judul tesis untuk bidang {{.Field}} dengan topik: {{.Topic}}.
Judul harus spesifik, dapat diteliti, dan memuat variabel penelitian.
` + listContract))

var formulasTmpl = template.Must(template.New("formulas").Parse(`Bertindaklah sebagai pustakawan riset senior.
Judul penelitian: "{{.Title}}" (bidang: {{.Field}}).

Buat 3 rumus pencarian untuk database jurnal internasional (PubMed, Scopus):
1. Rumus dasar: kata kunci utama saja.
2. Rumus menengah: tambahkan sinonim sederhana.
3. Rumus boolean lanjutan: gunakan tanda kurung, OR antar sinonim, AND antar variabel.
   Contoh: ("Var1" OR "Sinonim1") AND ("Var2" OR "Sinonim2")
` + listContract))

var outlineTmpl = template.Must(template.New("outline").Parse(`Buat 4 sampai 6 judul sub-bab untuk {{.Chapter}} tesis berjudul "{{.Title}}" (bidang: {{.Field}}).
` + listContract))

var sectionTmpl = template.Must(template.New("section").Parse(`Peran: penulis tesis akademik bidang {{.Field}}.
Judul tesis: {{.Title}}
Bab: {{.Chapter}}
Sub-bab yang ditulis: {{.Sub}}

DATA PENDUKUNG (KUTIPAN REFERENSI):
{{if .Context}}{{.Context}}{{else}}(tidak ada referensi yang diunggah){{end}}
{{- if .Data}}

DATA PENELITIAN:
{{.Data}}
{{- end}}
{{- if .Summary}}

RINGKASAN HASIL DAN PEMBAHASAN:
{{.Summary}}
{{- end}}

INSTRUKSI:
1. Jangan jadikan data referensi sebelum tahun 2015 sebagai argumen utama.
2. Gunakan sitasi gaya APA (Nama, Tahun). Jangan gunakan sitasi angka seperti [1].
3. Tulis dengan gaya bahasa natural dan kalimat yang bervariasi.
4. Langsung ke isi tanpa pengantar.
5. Panjang 600 sampai 900 kata.
`))

func render(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}
