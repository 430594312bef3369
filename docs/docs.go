// Package docs registers the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {"tags": ["system"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/metrics": {
            "get": {"tags": ["system"], "summary": "Metrics snapshot", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/cache/stats": {
            "get": {"tags": ["system"], "summary": "Cache statistics", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/v1/answers": {
            "post": {"tags": ["scoring"], "summary": "Score raw answers",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.AnswersRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/submit": {
            "post": {"tags": ["scoring"], "summary": "Submit a finished questionnaire",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.SubmitRequest"}}],
                "responses": {"200": {"description": "not passed, not stored"}, "201": {"description": "stored"},
                    "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}
        },
        "/v1/results": {
            "post": {"tags": ["scoring"], "summary": "Score a matrix or payload",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.SubjectInput"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/decode": {
            "get": {"tags": ["codec"], "summary": "Decode a payload", "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "data", "type": "string", "required": true, "description": "base64 payload"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/v1/encode": {
            "post": {"tags": ["codec"], "summary": "Encode a payload",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.EncodeRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/pair": {
            "post": {"tags": ["scoring"], "summary": "Analyze a pair",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.PairRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/v1/team": {
            "post": {"tags": ["scoring"], "summary": "Analyze a team",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/server.TeamRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/admin/login": {
            "post": {"tags": ["admin"], "summary": "Admin login",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "object", "properties": {"password": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}}
        },
        "/admin/results": {
            "get": {"tags": ["admin"], "summary": "List stored results", "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer", "description": "Page size (default 50)"},
                    {"in": "query", "name": "offset", "type": "integer", "description": "Offset"}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/admin/results/export": {
            "get": {"tags": ["admin"], "summary": "Export stored results",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/results/{id}": {
            "get": {"tags": ["admin"], "summary": "Get a stored result", "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["admin"], "summary": "Delete a stored result",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/admin/journal": {
            "get": {"tags": ["admin"], "summary": "Staff journal", "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "server.SubjectInput": {
            "type": "object",
            "properties": {
                "matrix": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "encoded": {"type": "string"},
                "diff": {"type": "number"}
            }
        },
        "server.AnswersRequest": {
            "type": "object",
            "required": ["answers"],
            "properties": {
                "answers": {"type": "array", "items": {"type": "object", "properties": {"id": {"type": "string"}, "value": {"type": "string"}}}},
                "personalInfo": {"type": "array", "items": {"type": "integer"}},
                "diff": {"type": "number"}
            }
        },
        "server.SubmitRequest": {
            "type": "object",
            "required": ["personalInfo"],
            "properties": {
                "teammate": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "personalInfo": {"type": "array", "items": {"type": "integer"}},
                "answers": {"type": "array", "items": {"type": "object", "properties": {"id": {"type": "string"}, "value": {"type": "string"}}}},
                "testData": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "start": {"type": "integer"},
                "end": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "server.EncodeRequest": {
            "type": "object",
            "required": ["personalInfo"],
            "properties": {
                "personalInfo": {"type": "array", "items": {"type": "integer"}},
                "matrix": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}}
            }
        },
        "server.PairRequest": {
            "type": "object",
            "properties": {
                "partner1": {"$ref": "#/definitions/server.SubjectInput"},
                "partner2": {"$ref": "#/definitions/server.SubjectInput"}
            }
        },
        "server.TeamRequest": {
            "type": "object",
            "required": ["members"],
            "properties": {
                "members": {"type": "array", "items": {"type": "object", "properties": {
                    "id": {"type": "string"}, "name": {"type": "string"}, "position": {"type": "string"},
                    "matrix": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                    "encoded": {"type": "string"}, "baseID": {"type": "integer"}
                }}},
                "poolIds": {"type": "array", "items": {"type": "integer"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Team Constructor API",
	Description:      "Psychometric scoring of questionnaires, pairs and teams.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
