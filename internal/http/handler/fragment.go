package handler

import (
	"bytes"
	"html/template"

	"referensi/internal/model"
)

var resultsTemplate = template.Must(template.New("results").Parse(`<div id="search-results" class="grid grid-cols-1 pt-5 md:grid-cols-2 lg:grid-cols-3 gap-4">
{{- range . }}
  <div class="book-card" data-id="{{ .ID }}">
    <h3>{{ .Name }}</h3>
    <div class="book-card__footer">
      {{- with .CategoryName }}
      <span class="category">{{ . }}</span>
      {{- end }}
      <a href="/referensi/{{ .ID }}/download" target="_blank" rel="noopener">Unduh</a>
    </div>
  </div>
{{- else }}
  <p class="empty">Referensi tidak ditemukan</p>
{{- end }}
</div>
`))

// renderResults renders search results as an HTML fragment for in-page replacement.
func renderResults(docs []model.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := resultsTemplate.Execute(&buf, docs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
