package render

import (
	"fmt"
	"html/template"
	"os"

	"videogen/internal/domain"
)

// readyID is the element the capture session waits for before taking the
// screenshot. The page appends it only after layout and fonts have settled.
const readyID = "scene-ready"

var sceneTemplate = template.Must(template.New("scene").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  html, body { margin: 0; padding: 0; width: 100%; height: 100%; }
  body {
    display: flex; flex-direction: column; justify-content: center;
    padding: 6vw; box-sizing: border-box;
    font-family: "Helvetica Neue", Arial, sans-serif;
    background: {{if eq .Style "light"}}#f7f7f5{{else}}#101418{{end}};
    color: {{if eq .Style "light"}}#1a1a1a{{else}}#f2f4f6{{end}};
  }
  h1 { font-size: 4.5vw; margin: 0 0 2vw 0; line-height: 1.15; }
  p { font-size: 2.2vw; margin: 0 0 2vw 0; line-height: 1.5; max-width: 70vw; }
  ul { font-size: 2vw; line-height: 1.8; margin: 0; padding-left: 2.5vw; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Body}}<p>{{.Body}}</p>{{end}}
  {{if .Bullets}}<ul>{{range .Bullets}}<li>{{.}}</li>{{end}}</ul>{{end}}
  <script>
    window.addEventListener("load", function () {
      requestAnimationFrame(function () {
        var marker = document.createElement("div");
        marker.id = "scene-ready";
        marker.style.display = "none";
        document.body.appendChild(marker);
      });
    });
  </script>
</body>
</html>
`))

// WriteDocument renders the visual spec into a self-contained HTML document at
// path, ready for a headless capture session to load.
func WriteDocument(spec domain.VisualSpec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create document: %w", err)
	}
	defer f.Close()

	if err := sceneTemplate.Execute(f, spec); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	return nil
}
