// Package docs holds the OpenAPI document served under /swagger. It follows
// the swag layout and must be kept in step with the handler annotations.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register an account",
                "parameters": [
                    {"description": "Registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Admins cannot self-register", "schema": {"$ref": "#/definitions/types.Response"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/types.Response"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Account pending verification", "schema": {"$ref": "#/definitions/types.Response"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Identity"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Identity no longer exists", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/admin/professionals/{id}/verify": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Verify a professional",
                "parameters": [
                    {"type": "string", "description": "Identity ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Identity"}},
                    "400": {"description": "Invalid identity ID", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/types.Response"}},
                    "404": {"description": "Identity not found", "schema": {"$ref": "#/definitions/types.Response"}},
                    "409": {"description": "Identity is not a doctor or nurse", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/admin/professionals/pending": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Pending professionals",
                "parameters": [
                    {"type": "string", "name": "role", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Identity"}}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/types.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/types.Response"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        },
        "/professionals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Professionals"],
                "summary": "Professionals directory",
                "parameters": [
                    {"type": "string", "name": "role", "in": "query"},
                    {"type": "string", "name": "city", "in": "query"},
                    {"type": "string", "name": "specialty", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.PublicProfessional"}}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/types.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.Response"}}
                }
            }
        }
    },
    "definitions": {
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "Str0ngP@ss"},
                "role": {"type": "string", "example": "patient"},
                "name": {"type": "string", "example": "Jane Doe"},
                "specialty": {"type": "string", "example": "cardiology"},
                "city": {"type": "string", "example": "Lisbon"},
                "experience": {"type": "integer", "example": 7},
                "license_number": {"type": "string"},
                "government_id": {"type": "string"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "a@x.com"},
                "password": {"type": "string", "example": "Str0ngP@ss"}
            }
        },
        "auth.AuthResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "role": {"type": "string"},
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "message": {"type": "string", "example": "Login successful"}
            }
        },
        "types.Identity": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "verified": {"type": "boolean"},
                "name": {"type": "string"},
                "specialty": {"type": "string"},
                "city": {"type": "string"},
                "experience": {"type": "integer"},
                "license_number": {"type": "string"},
                "government_id": {"type": "string"},
                "verified_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "types.PublicProfessional": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "specialty": {"type": "string"},
                "city": {"type": "string"},
                "experience": {"type": "integer"}
            }
        },
        "types.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Operation successful"},
                "error": {"type": "string", "example": "Resource not found"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "MediBook API",
	Description:      "Registration, login and professional verification for the MediBook booking platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
