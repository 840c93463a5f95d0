package notify

import (
	"bytes"
	"html/template"
)

var containerTemplate = template.Must(template.New("toasts").Parse(`<div id="{{.ID}}" class="{{.Class}}">
{{- range .Toasts}}
<div class="toast align-items-center text-white bg-{{.Severity}} border-0" role="alert" data-toast-id="{{.ID}}">
<div class="d-flex">
<div class="toast-body">{{.Message}}</div>
<button type="button" class="btn-close btn-close-white me-2 m-auto" data-bs-dismiss="toast"></button>
</div>
</div>
{{- end}}
</div>`))

// Render returns the container markup, or an empty string when nothing
// has been shown. Messages are HTML-escaped.
func Render(b *Board) (template.HTML, error) {
	b.mu.Lock()
	if b.container == nil {
		b.mu.Unlock()
		return "", nil
	}
	data := struct {
		ID     string
		Class  string
		Toasts []Toast
	}{b.container.ID, b.container.Class, append([]Toast(nil), b.container.toasts...)}
	b.mu.Unlock()

	var buf bytes.Buffer
	if err := containerTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
