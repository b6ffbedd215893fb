// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.meResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/dispatch": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "List every job",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.jobResponse"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Schedule a new job",
                "parameters": [
                    {"description": "Job details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createJobRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.jobResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/dispatch/driver": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "List jobs assigned to the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.jobResponse"}}}
                }
            }
        },
        "/api/dispatch/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Get a job",
                "parameters": [{"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.jobResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Delete a job",
                "parameters": [{"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/dispatch/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Advance a job's status",
                "parameters": [
                    {"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true},
                    {"description": "Scheduled, In Progress or Completed", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.jobResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/api/dispatch/{id}/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Audit trail of a job",
                "parameters": [{"type": "string", "description": "Job id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.jobEventResponse"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.registerRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 64},
                "password": {"type": "string", "minLength": 6, "maxLength": 72},
                "role": {"type": "string", "enum": ["admin", "dispatcher"]}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "expires_at": {"type": "string"}}
        },
        "handler.meResponse": {
            "type": "object",
            "properties": {"subject_id": {"type": "string"}, "role": {"type": "string"}, "expires_at": {"type": "string"}}
        },
        "handler.createJobRequest": {
            "type": "object",
            "required": ["job_id", "location", "scheduled_time"],
            "properties": {
                "job_id": {"type": "string"},
                "location": {"type": "string"},
                "scheduled_time": {"type": "string", "example": "2025-01-01T10:00"},
                "driver": {"type": "string"},
                "truck_id": {"type": "string"}
            }
        },
        "handler.updateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["Scheduled", "In Progress", "Completed"]}}
        },
        "handler.jobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "job_id": {"type": "string"},
                "scheduled_by": {"type": "string"},
                "location": {"type": "string"},
                "scheduled_time": {"type": "string"},
                "driver": {"type": "string"},
                "truck_id": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "handler.jobEventResponse": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "actor_id": {"type": "string"},
                "from_status": {"type": "string"},
                "to_status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Waste Management Dispatch API",
	Description:      "Authorization-gated dispatch job lifecycle for waste collection.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
