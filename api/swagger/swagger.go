package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Enlistment Gateway API",
        "description": "Public boundary for the course enlistment service mesh",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Session", "description": "Login, registration, logout"},
        {"name": "Offerings", "description": "Course offering catalogue"},
        {"name": "Enrollments", "description": "Student enrollment"},
        {"name": "Grades", "description": "Grade viewing and recording"}
    ],
    "paths": {
        "/login": {
            "post": {
                "tags": ["Session"],
                "summary": "Authenticate and open a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/register": {
            "post": {
                "tags": ["Session"],
                "summary": "Register a new account and open a session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Rejected registration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Session"],
                "summary": "Close the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offerings": {
            "get": {
                "tags": ["Offerings"],
                "summary": "List all course offerings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offerings/open": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List offerings annotated for the calling student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not a student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll the calling student into an offering",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Offering full or already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List the calling student's graded enrollments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/offerings": {
            "get": {
                "tags": ["Grades"],
                "summary": "List offerings taught by the calling faculty member",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not faculty", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/offerings/{id}/students": {
            "get": {
                "tags": ["Grades"],
                "summary": "List the roster of one offering",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown offering", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/offerings/{id}/roster": {
            "get": {
                "tags": ["Grades"],
                "summary": "Download the roster as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment"}
                }
            }
        },
        "/faculty/grades": {
            "post": {
                "tags": ["Grades"],
                "summary": "Record a grade for one enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown enrollment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "offeringId": {"type": "string"}
            },
            "required": ["offeringId"]
        },
        "SetGradeRequest": {
            "type": "object",
            "properties": {
                "enrollmentId": {"type": "string"},
                "grade": {"type": "number"}
            },
            "required": ["enrollmentId", "grade"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
