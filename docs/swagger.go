package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health check endpoint", "produces": ["text/plain"], "responses": {"200": {"description": "Healthy"}}}},
        "/api/state": {"get": {"tags": ["state"], "summary": "Full session view", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/api/date": {
            "get": {"tags": ["state"], "summary": "Selected logging date", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["state"], "summary": "Select the logging date", "consumes": ["application/x-www-form-urlencoded"], "parameters": [{"type": "string", "name": "date", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}}
        },
        "/api/cards/{index}/{action}": {"post": {"tags": ["cards"], "summary": "Card actions", "parameters": [{"type": "integer", "name": "index", "in": "path", "required": true}, {"type": "string", "name": "action", "in": "path", "required": true, "enum": ["tap", "press", "release"]}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}, "404": {"description": "Card not found"}}}},
        "/api/cards/reset": {"post": {"tags": ["cards"], "summary": "Clear every card", "responses": {"200": {"description": "OK"}}}},
        "/api/swipe": {"post": {"tags": ["cards"], "summary": "Swipe the carousel", "consumes": ["application/x-www-form-urlencoded"], "parameters": [{"type": "number", "name": "distance", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}}},
        "/api/gesture": {"post": {"tags": ["cards"], "summary": "Raw pointer event", "consumes": ["application/x-www-form-urlencoded"], "parameters": [{"type": "string", "name": "kind", "in": "formData", "required": true}, {"type": "number", "name": "x", "in": "formData"}, {"type": "integer", "name": "index", "in": "formData"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}}},
        "/api/cheers": {"post": {"tags": ["logs"], "summary": "Confirm pending cups", "responses": {"200": {"description": "OK"}}}},
        "/api/history": {"get": {"tags": ["logs"], "summary": "History list", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}}},
        "/api/history/{id}": {"delete": {"tags": ["logs"], "summary": "Delete a history entry", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}}}},
        "/api/stats/{name}": {"get": {"tags": ["stats"], "summary": "Statistics", "parameters": [{"type": "string", "name": "name", "in": "path", "required": true, "enum": ["today", "calendar", "monthly", "totals"]}, {"type": "integer", "name": "year", "in": "query"}, {"type": "integer", "name": "month", "in": "query"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/connect": {"get": {"tags": ["websocket"], "summary": "WebSocket connection endpoint", "responses": {"101": {"description": "Switching Protocols to WebSocket"}}}}
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cheers API",
	Description:      "Drink logging with a swipeable card carousel and consumption statistics",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
