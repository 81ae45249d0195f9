package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Camp Ops API",
        "description": "Camp schedule construction and consistency engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Session lifecycle and camper groups"},
        {"name": "Schedule", "description": "Grid construction, solving, manual edits, conflicts"},
        {"name": "Weather", "description": "Forecast impact and substitutions"},
        {"name": "Catalog", "description": "Activities, facilities, staff, constraints, day templates"},
        {"name": "Analytics", "description": "Schedule aggregates and system metrics"},
        {"name": "Export", "description": "Async CSV/PDF grid exports"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List sessions",
                "parameters": [
                    {"name": "organizationId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "tags": ["Sessions"],
                "summary": "Update session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Dates locked for active session"}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Delete session (cascades to groups and slots)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/sessions/{id}/status": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Advance session lifecycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/sessions/{id}/groups": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List groups",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Add group",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/schedule/grid": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Build the empty slot grid from a day template",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BuildGridRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session not editable"},
                    "422": {"description": "Infeasible grid"}
                }
            }
        },
        "/sessions/{id}/schedule/auto": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Run the assignment solver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/AutoScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK; unfillable slots reported in the body", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List schedule slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "facilityId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/schedule/slots/{slotId}": {
            "put": {
                "tags": ["Schedule"],
                "summary": "Edit one slot manually",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Hard constraint violated"}
                }
            }
        },
        "/sessions/{id}/schedule/conflicts": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Detect conflicts over the current grid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/weather/impact": {
            "post": {
                "tags": ["Weather"],
                "summary": "Check forecast impact and propose substitutions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WeatherImpactRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/weather/substitutions": {
            "post": {
                "tags": ["Weather"],
                "summary": "Apply selected substitutions atomically",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplySubstitutionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "One or more selections invalid; nothing applied"}
                }
            }
        },
        "/sessions/{id}/analytics/schedule": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Schedule analytics for a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "System metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/schedule/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Queue a grid export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "view", "in": "query", "type": "string", "enum": ["master", "group", "day", "facility"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{jobId}": {
            "get": {
                "tags": ["Export"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a rendered export via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Token invalid or expired"}
                }
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "organizationId": {"type": "string"},
                "name": {"type": "string"},
                "startDate": {"type": "string", "example": "2025-07-01"},
                "endDate": {"type": "string", "example": "2025-07-14"},
                "maxCampers": {"type": "integer"}
            },
            "required": ["organizationId", "name", "startDate", "endDate"]
        },
        "UpdateSessionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "maxCampers": {"type": "integer"},
                "currentCampers": {"type": "integer"}
            }
        },
        "UpdateSessionStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["draft", "planning", "active", "completed", "cancelled"]}
            },
            "required": ["status"]
        },
        "CreateGroupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"},
                "capacity": {"type": "integer"},
                "currentCount": {"type": "integer"},
                "ageMin": {"type": "integer"},
                "ageMax": {"type": "integer"},
                "gender": {"type": "string", "enum": ["male", "female", "mixed"]},
                "sortOrder": {"type": "integer"}
            },
            "required": ["name", "ageMin", "ageMax"]
        },
        "BuildGridRequest": {
            "type": "object",
            "properties": {
                "dayTemplateId": {"type": "string"},
                "templateByDate": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            },
            "required": ["dayTemplateId"]
        },
        "AutoScheduleRequest": {
            "type": "object",
            "properties": {
                "maxAttemptsPerSlot": {"type": "integer"}
            }
        },
        "UpdateSlotRequest": {
            "type": "object",
            "properties": {
                "activityId": {"type": "string"},
                "facilityId": {"type": "string"},
                "staffIds": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"}
            }
        },
        "WeatherImpactRequest": {
            "type": "object",
            "properties": {
                "weather": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/WeatherAssignment"}
                }
            },
            "required": ["weather"]
        },
        "WeatherAssignment": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2025-07-03"},
                "condition": {"type": "string", "enum": ["sunny", "cloudy", "rainy", "stormy"]}
            },
            "required": ["date", "condition"]
        },
        "ApplySubstitutionsRequest": {
            "type": "object",
            "properties": {
                "substitutions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SelectedSubstitution"}
                }
            },
            "required": ["substitutions"]
        },
        "SelectedSubstitution": {
            "type": "object",
            "properties": {
                "slotId": {"type": "string"},
                "activityId": {"type": "string"},
                "facilityId": {"type": "string"},
                "reason": {"type": "string"}
            },
            "required": ["slotId", "activityId"]
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
