package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

type pageData struct {
	Title    string
	Empty    string
	Chart    template.HTML
	Points   []dataset.Point
	MinYear  int
	MaxYear  int
	Filename string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2937; }
.chart { border: 1px solid #e5e7eb; border-radius: 8px; min-height: 120px; }
.empty { padding: 3rem; text-align: center; color: #6b7280; }
ul { list-style: none; padding: 0; display: flex; flex-wrap: wrap; gap: .5rem; }
li { background: #f3f4f6; border-radius: 4px; padding: .25rem .5rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form id="add">
  <input id="year" type="number" min="{{.MinYear}}" max="{{.MaxYear}}" placeholder="{{.MinYear}}-{{.MaxYear}}">
  <button type="submit">추가</button>
  <button type="button" id="clear">초기화</button>
  <button type="button" id="export"{{if not .Points}} disabled{{end}}>PNG 다운로드</button>
</form>
<ul>{{range .Points}}<li>{{.Year}}년 · {{printf "%.2f" .Rate}}</li>{{end}}</ul>
<div class="chart">{{if .Chart}}{{.Chart}}{{else}}<p class="empty">{{.Empty}}</p>{{end}}</div>
<script>
const reload = () => location.reload();
document.getElementById("add").addEventListener("submit", async (e) => {
  e.preventDefault();
  const year = parseInt(document.getElementById("year").value, 10);
  const res = await fetch("/api/points", {method: "POST", body: JSON.stringify({year})});
  if (!res.ok) { alert((await res.json()).message); return; }
  reload();
});
document.getElementById("clear").addEventListener("click", async () => {
  await fetch("/api/points", {method: "DELETE"});
  reload();
});
document.getElementById("export").addEventListener("click", async () => {
  const res = await fetch("/api/export", {method: "POST"});
  if (res.status !== 200) return;
  const url = URL.createObjectURL(await res.blob());
  const a = document.createElement("a");
  a.href = url;
  a.download = "{{.Filename}}";
  a.click();
  URL.revokeObjectURL(url);
});
</script>
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:    chart.Title,
		Empty:    chart.EmptyMessage,
		Points:   dataset.Sorted(s.sel.Points()),
		MinYear:  errors.MinYear,
		MaxYear:  errors.MaxYear,
		Filename: export.Filename,
	}
	if len(data.Points) > 0 {
		var svg bytes.Buffer
		if err := pipeline.Preview(&svg, data.Points, s.options(r)); err != nil {
			writeError(w, err)
			return
		}
		data.Chart = template.HTML(svg.String())
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
