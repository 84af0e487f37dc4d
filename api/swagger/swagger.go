// Package swagger registers a handwritten OpenAPI document for the docs UI.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassDesk API",
        "description": "Teacher productivity dashboard backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "PIN gate and session tokens"},
        {"name": "Classes", "description": "Class sections and rosters"},
        {"name": "Attendance", "description": "Daily register"},
        {"name": "Seating", "description": "Seating charts"},
        {"name": "Schedule", "description": "Weekly timetable"},
        {"name": "Curriculum", "description": "Lesson plans by term and week"},
        {"name": "Homework", "description": "Assignment tracking and watchlist"},
        {"name": "Scores", "description": "Pasted score analysis"},
        {"name": "Todos", "description": "Shared task list"},
        {"name": "Terms", "description": "Term settings and week resolution"},
        {"name": "Insights", "description": "Journal and assistant features"},
        {"name": "Images", "description": "Schedule image attachments"},
        {"name": "Focus", "description": "Classroom countdown timer"},
        {"name": "Dashboard", "description": "Composed morning overview"},
        {"name": "Exports", "description": "Report rendering and download"},
        {"name": "Stream", "description": "Live document snapshots"},
        {"name": "Metrics", "description": "Runtime status"}
    ],
    "paths": {
        "/auth/status": {
            "get": {
                "tags": ["Auth"],
                "summary": "Report whether a PIN is configured",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/setup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Configure the initial PIN",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Already configured"}}
            }
        },
        "/auth/unlock": {
            "post": {
                "tags": ["Auth"],
                "summary": "Verify the PIN and issue a session token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Wrong PIN"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create a class",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/classes/{id}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get the register for one class and date",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get the composed morning overview",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/scores/analyze": {
            "post": {
                "tags": ["Scores"],
                "summary": "Parse pasted score lines and summarise the batch",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/stream/document": {
            "get": {
                "tags": ["Stream"],
                "summary": "Stream document snapshots as server-sent events",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "Envelope": {
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
