package http

import (
	_ "embed"
	"net/http"
)

//go:embed docs/facility-assistant.openapi.yaml
var openAPISpec []byte

// apiDocsHTML renders the OpenAPI document. The interceptors remember the X-Session-Id returned by
// POST /api/v1/sessions and attach it to later "Try it out" calls, so a whole chat flow can be
// exercised from the page.
const apiDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Facility Assistant API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="api-docs"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    let sessionId = "";
    SwaggerUIBundle({
      url: "/swagger/openapi.yaml",
      dom_id: "#api-docs",
      tryItOutEnabled: true,
      requestInterceptor: (req) => {
        if (sessionId && !req.headers["X-Session-Id"]) {
          req.headers["X-Session-Id"] = sessionId;
        }
        return req;
      },
      responseInterceptor: (res) => {
        const issued = res.headers && res.headers["x-session-id"];
        if (issued) {
          sessionId = issued;
        }
        return res;
      }
    });
  </script>
</body>
</html>`

func (h *Handler) apiDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(apiDocsHTML))
}

func (h *Handler) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(openAPISpec)
}
