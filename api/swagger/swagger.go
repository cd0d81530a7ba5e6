package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timeweaver Engine API",
        "description": "Timetable generation, conflict detection and publishing for academic scopes",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetable", "description": "Timetable generation and publishing"},
        {"name": "Conflicts", "description": "Conflict detection and resolution"},
        {"name": "Preferences", "description": "Faculty availability grids"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Generate a timetable for a scope",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Run outcome, feasible or not", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent modification", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get the published timetable of a scope",
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Timetable"],
                "summary": "Publish a manually edited timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplaceTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/versions": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List the publication history of a scope",
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download the published timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/scan": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Run a conflict scan over a scope's published timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScanConflictsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Scan complete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Scan queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List stored conflicts for a scope",
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"},
                    {"name": "semesterId", "in": "query", "required": true, "type": "string"},
                    {"name": "sectionId", "in": "query", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["open", "resolved"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}/resolve": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Mark a conflict as resolved",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "departmentId", "in": "query", "type": "string"},
                    {"name": "semesterId", "in": "query", "type": "string"},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Unknown conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faculty/{id}/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "Get a faculty member's availability grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace a faculty member's availability grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplacePreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "departmentId": {"type": "string"},
                "semesterId": {"type": "string"},
                "sectionId": {"type": "string"},
                "options": {"$ref": "#/definitions/GenerateOptions"}
            },
            "required": ["departmentId", "semesterId", "sectionId"]
        },
        "GenerateOptions": {
            "type": "object",
            "properties": {
                "backtrackBudget": {"type": "integer"},
                "timeoutMs": {"type": "integer"}
            }
        },
        "ReplaceTimetableRequest": {
            "type": "object",
            "properties": {
                "departmentId": {"type": "string"},
                "semesterId": {"type": "string"},
                "sectionId": {"type": "string"},
                "assignments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ReplaceAssignment"}
                }
            },
            "required": ["departmentId", "semesterId", "sectionId", "assignments"]
        },
        "ReplaceAssignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "unitId": {"type": "string"},
                "courseId": {"type": "string"},
                "sectionId": {"type": "string"},
                "dayOfWeek": {"type": "integer"},
                "timeSlot": {"type": "integer"},
                "roomId": {"type": "string"},
                "facultyId": {"type": "string"}
            },
            "required": ["id", "unitId", "courseId", "sectionId", "dayOfWeek", "timeSlot", "roomId", "facultyId"]
        },
        "ScanConflictsRequest": {
            "type": "object",
            "properties": {
                "departmentId": {"type": "string"},
                "semesterId": {"type": "string"},
                "sectionId": {"type": "string"},
                "async": {"type": "boolean"}
            },
            "required": ["departmentId", "semesterId", "sectionId"]
        },
        "ReplacePreferencesRequest": {
            "type": "object",
            "properties": {
                "cells": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PreferenceCell"}
                },
                "maxHours": {"type": "integer"}
            }
        },
        "PreferenceCell": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer"},
                "timeSlot": {"type": "integer"},
                "kind": {"type": "string", "enum": ["preferred", "not_available"]}
            },
            "required": ["dayOfWeek", "timeSlot", "kind"]
        },
        "Conflict": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "severity": {"type": "string"},
                "status": {"type": "string"},
                "description": {"type": "string"},
                "assignmentIds": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "parties": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "detectedAt": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
