package render

import (
	"bytes"
	"html/template"
)

var tableDocument = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
<style>
body { font-family: Arial, sans-serif; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 6px 10px; border: 1px solid #dee2e6; text-align: left; }
thead th { background-color: #04922b; color: white; }
tbody tr:nth-child(even) { background-color: #f2f2f2; }
</style>
</head>
<body>
<div class="container my-5">
<h2>{{.Title}}</h2>
<table class="table table-striped table-bordered">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</div>
</body>
</html>
`))

type tableView struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// HTML renders t as a standalone HTML document headed by title. Cell values use
// default formatting after the unknown-label and rounding policy is applied.
func (f *Formatter) HTML(title string, t Table) ([]byte, error) {
	view := tableView{Title: title, Columns: t.Columns, Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				cells[i] = f.Label(c, row[i])
			}
		}
		view.Rows = append(view.Rows, cells)
	}

	var buf bytes.Buffer
	if err := tableDocument.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
