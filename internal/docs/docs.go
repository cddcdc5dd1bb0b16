// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate email"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Rotate tokens", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid token"}}}},
        "/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/accounts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List accounts with balances", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Create account", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Get account", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Update account", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Delete account", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/{id}/transactions": {"get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List account transactions", "responses": {"200": {"description": "OK"}}}},
        "/categories": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "List categories", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Create category", "responses": {"201": {"description": "Created"}}}
        },
        "/categories/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Get category", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Update category", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Delete or archive category", "responses": {"200": {"description": "OK"}}}
        },
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List transactions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Create transaction", "responses": {"201": {"description": "Created"}}}
        },
        "/transactions/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get transaction", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Update transaction", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Delete transaction", "responses": {"200": {"description": "OK"}}}
        },
        "/transactions/{id}/split": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Split transaction", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid split"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Unsplit transaction", "responses": {"200": {"description": "OK"}}}
        },
        "/transactions/{id}/links": {"get": {"security": [{"BearerAuth": []}], "tags": ["links"], "summary": "List transaction links", "responses": {"200": {"description": "OK"}}}},
        "/transactions/{id}/tags/{tagId}": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Attach tag", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Detach tag", "responses": {"200": {"description": "OK"}}}
        },
        "/rules": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "List rules", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Create rule", "responses": {"201": {"description": "Created"}}}
        },
        "/rules/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Get rule", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Update rule", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Delete rule", "responses": {"200": {"description": "OK"}}}
        },
        "/rules/reorder": {"put": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Reorder rules", "responses": {"200": {"description": "OK"}}}},
        "/rules/apply": {"post": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Apply rules", "responses": {"200": {"description": "OK"}}}},
        "/rules/test": {"post": {"security": [{"BearerAuth": []}], "tags": ["rules"], "summary": "Test a pattern", "responses": {"200": {"description": "OK"}}}},
        "/budgets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "List budgets for a month", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Create budget", "responses": {"201": {"description": "Created"}, "409": {"description": "Budget exists"}}}
        },
        "/budgets/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Get budget", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Update budget", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Delete budget", "responses": {"200": {"description": "OK"}}}
        },
        "/budgets/{id}/details": {"get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Budget details for a month", "responses": {"200": {"description": "OK"}}}},
        "/goals": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "List goals", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Create goal", "responses": {"201": {"description": "Created"}}}
        },
        "/goals/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Get goal", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Update goal", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Delete goal", "responses": {"200": {"description": "OK"}}}
        },
        "/goals/{id}/contributions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "List contributions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Add contribution", "responses": {"201": {"description": "Created"}}}
        },
        "/goals/{id}/contributions/{contributionId}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Remove contribution", "responses": {"200": {"description": "OK"}}}},
        "/goals/{id}/share": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Share goal", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["goals"], "summary": "Stop sharing goal", "responses": {"200": {"description": "OK"}}}
        },
        "/shared/goals/{token}": {"get": {"tags": ["goals"], "summary": "Public view of a shared goal", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/recurring": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "List recurring templates", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Create recurring template", "responses": {"201": {"description": "Created"}}}
        },
        "/recurring/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Get recurring template", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Update recurring template", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Delete recurring template", "responses": {"200": {"description": "OK"}}}
        },
        "/recurring/generate": {"post": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Generate due transactions", "responses": {"200": {"description": "OK"}}}},
        "/recurring/upcoming": {"get": {"security": [{"BearerAuth": []}], "tags": ["recurring"], "summary": "Preview upcoming occurrences", "responses": {"200": {"description": "OK"}}}},
        "/internal/recurring/generate": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["internal"], "summary": "Generate due transactions for all users", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid API key"}}}},
        "/links": {"post": {"security": [{"BearerAuth": []}], "tags": ["links"], "summary": "Link two transactions", "responses": {"201": {"description": "Created"}, "409": {"description": "Link exists"}}}},
        "/links/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["links"], "summary": "Delete link", "responses": {"200": {"description": "OK"}}}},
        "/tags": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "List tags", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Create tag", "responses": {"201": {"description": "Created"}}}
        },
        "/tags/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Update tag", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tags"], "summary": "Delete tag", "responses": {"200": {"description": "OK"}}}
        },
        "/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["data"], "summary": "Export transactions", "produces": ["text/csv", "application/json", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "File"}}}},
        "/import/csv": {"post": {"security": [{"BearerAuth": []}], "tags": ["data"], "summary": "Import transactions from CSV", "consumes": ["multipart/form-data"], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid import"}}}},
        "/assistant/chat": {"post": {"security": [{"BearerAuth": []}], "tags": ["assistant"], "summary": "Chat with the finance assistant", "responses": {"200": {"description": "OK"}, "503": {"description": "Not configured"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pocket Pilot API",
	Description:      "Pocket Pilot is a personal finance API for accounts, budgets, savings goals, recurring transactions and categorization rules.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
