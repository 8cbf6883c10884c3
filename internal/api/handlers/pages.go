package handlers

import (
	"html/template"
	"net/http"
)

// PageHandler serves the application shell for page routes. The actual UI
// is a client-side app; the server's job on these routes is the route
// gate's redirect logic, after which any allowed path gets the shell.
type PageHandler struct {
	tmpl *template.Template
}

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head><title>FitStudio</title></head>
<body>
<div id="root" data-path="{{.Path}}"></div>
<script src="/static/app.js"></script>
</body>
</html>
`))

func NewPageHandler() *PageHandler {
	return &PageHandler{tmpl: shellTemplate}
}

func (h *PageHandler) Shell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.tmpl.Execute(w, struct{ Path string }{Path: r.URL.Path})
}
