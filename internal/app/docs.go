// internal/app/docs.go
//
// Interactive API documentation, served outside production only.
//
// /openapi.json is generated from config at construction time; /docs
// (Swagger UI) and /redoc load their assets from jsDelivr and therefore
// replace the default self-only CSP with one that admits the CDN.

package app

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/talentflux/talentflux-api/internal/api"
	v1 "github.com/talentflux/talentflux-api/internal/api/v1"
	"github.com/talentflux/talentflux-api/internal/config"
	"github.com/talentflux/talentflux-api/internal/middleware"
)

const (
	docsPath    = "/docs"
	redocPath   = "/redoc"
	openAPIPath = "/openapi.json"
)

const docsCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; " +
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; worker-src 'self' blob:; frame-ancestors 'none'"

var swaggerTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - Swagger UI</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui"});
</script>
</body>
</html>
`))

var redocTemplate = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - ReDoc</title>
<meta charset="utf-8">
</head>
<body>
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

// docsPage renders tpl once and serves the bytes.
func docsPage(cfg *config.Config, tpl *template.Template) http.HandlerFunc {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, struct{ Title, SpecURL string }{cfg.AppName, openAPIPath}); err != nil {
		panic("app: render " + tpl.Name() + ": " + err.Error())
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(middleware.HeaderCSP, docsCSP)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

// openAPI describes the endpoints this layer owns.  Domain routers document
// themselves under /api/v1.
func openAPI(cfg *config.Config) http.HandlerFunc {
	obj := func(props map[string]any) map[string]any {
		return map[string]any{"type": "object", "properties": props}
	}
	str := map[string]any{"type": "string"}
	jsonResp := func(desc, ref string) map[string]any {
		return map[string]any{
			"description": desc,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/" + ref},
				},
			},
		}
	}

	doc := map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":       cfg.AppName,
			"version":     cfg.Version,
			"description": cfg.Description,
		},
		"paths": map[string]any{
			"/health": map[string]any{"get": map[string]any{
				"summary":   "Liveness probe",
				"responses": map[string]any{"200": jsonResp("Service is alive", "Health")},
			}},
			"/health/ready": map[string]any{"get": map[string]any{
				"summary": "Readiness probe",
				"responses": map[string]any{
					"200": jsonResp("All dependencies reachable", "Ready"),
					"503": jsonResp("At least one dependency unreachable", "Ready"),
				},
			}},
			"/": map[string]any{"get": map[string]any{
				"summary":   "Service metadata",
				"responses": map[string]any{"200": jsonResp("Welcome message", "Root")},
			}},
			v1.Prefix + "/features": map[string]any{"get": map[string]any{
				"summary":   "Enabled product features",
				"responses": map[string]any{"200": map[string]any{"description": "Feature flags"}},
			}},
		},
		"components": map[string]any{"schemas": map[string]any{
			"Health": obj(map[string]any{
				"status": str, "version": str, "environment": str,
				"timestamp": map[string]any{"type": "string", "format": "date-time"},
			}),
			"Ready": obj(map[string]any{
				"status": str,
				"checks": map[string]any{"type": "object", "additionalProperties": str},
			}),
			"Root": obj(map[string]any{
				"message": str, "version": str, "description": str,
				"docs": map[string]any{"type": []string{"string", "null"}},
			}),
			"Error": obj(map[string]any{
				"error": obj(map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{"http_exception", "validation_error", "internal_error"},
					},
					"message":     str,
					"status_code": map[string]any{"type": "integer"},
					"details":     map[string]any{"type": "array"},
				}),
			}),
		}},
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, doc)
	}
}
