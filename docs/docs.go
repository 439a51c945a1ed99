// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g internal/api/router.go
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
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/auth/users": {
            "get": {
                "security": [{"AdminKey": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.usersResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"AdminKey": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "New user credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.credentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/installations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "List installations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Installation"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "Create an installation",
                "parameters": [
                    {"description": "Installation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.installationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Installation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/installations/bulk": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "Bulk create installations",
                "parameters": [
                    {"type": "string", "description": "Retry key for this batch", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Rows to import", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.bulkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.bulkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/installations/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "Get an installation",
                "parameters": [{"type": "string", "description": "Installation id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Installation"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "Update an installation",
                "parameters": [
                    {"type": "string", "description": "Installation id", "name": "id", "in": "path", "required": true},
                    {"description": "Installation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.installationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Installation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["installations"],
                "summary": "Delete an installation",
                "parameters": [{"type": "string", "description": "Installation id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/territories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["territories"],
                "summary": "List utility territories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.territoriesResponse"}}
                }
            }
        },
        "/api/territories/resolve": {
            "get": {
                "produces": ["application/json"],
                "tags": ["territories"],
                "summary": "Resolve the territory of a location",
                "parameters": [
                    {"type": "string", "description": "Two-letter state code", "name": "state", "in": "query"},
                    {"type": "string", "description": "City name", "name": "city", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Territory"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.BulkFailure": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"type": "string"}},
                "index": {"type": "integer"}
            }
        },
        "domain.Identity": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "domain.Installation": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "city": {"type": "string"},
                "createdAt": {"type": "string"},
                "homeownerName": {"type": "string"},
                "id": {"type": "string"},
                "installDate": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "notes": {"type": "string"},
                "ownerId": {"type": "string"},
                "ownerUsername": {"type": "string"},
                "state": {"type": "string"},
                "systemSize": {"type": "number"},
                "updatedAt": {"type": "string"},
                "zip": {"type": "string"}
            }
        },
        "domain.Territory": {
            "type": "object",
            "properties": {
                "cities": {"type": "array", "items": {"type": "string"}},
                "code": {"type": "string"},
                "color": {"type": "string"},
                "name": {"type": "string"},
                "states": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.UserSummary": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "id": {"type": "string"},
                "managedByEnv": {"type": "boolean"},
                "username": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "failures": {"type": "array", "items": {"$ref": "#/definitions/domain.BulkFailure"}}
            }
        },
        "handler.bulkRequest": {
            "type": "object",
            "properties": {
                "installations": {"type": "array", "items": {"$ref": "#/definitions/handler.installationRequest"}}
            }
        },
        "handler.bulkResponse": {
            "type": "object",
            "properties": {
                "added": {"type": "integer"},
                "installations": {"type": "array", "items": {"$ref": "#/definitions/domain.Installation"}}
            }
        },
        "handler.credentialsRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handler.installationRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "city": {"type": "string"},
                "homeownerName": {"type": "string"},
                "installDate": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "notes": {"type": "string"},
                "state": {"type": "string"},
                "systemSize": {"type": "number"},
                "zip": {"type": "string"}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.Identity"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.territoriesResponse": {
            "type": "object",
            "properties": {
                "default": {"$ref": "#/definitions/domain.Territory"},
                "territories": {"type": "array", "items": {"$ref": "#/definitions/domain.Territory"}}
            }
        },
        "handler.userResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/domain.Identity"}
            }
        },
        "handler.usersResponse": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/domain.UserSummary"}}
            }
        }
    },
    "securityDefinitions": {
        "AdminKey": {"type": "apiKey", "name": "X-Admin-Key", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Solar Installation Tracker API",
	Description:      "Tracks solar installation records per user with territory tagging and bulk import.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
