package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>employee-portal — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "employee-portal", "version": "v0.1.0" },
  "paths": {
    "/api/Register": {
      "post": {
        "summary": "Create a credential and open a session",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "accessToken and expiration; refresh token set as HttpOnly cookie" }, "400": { "description": "validation failure" }, "409": { "description": "username taken" } }
      }
    },
    "/api/Authenticate": {
      "post": {
        "summary": "Authenticate a credential and open a session",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "accessToken and expiration" }, "401": { "description": "wrong password" }, "403": { "description": "unknown username" } }
      }
    },
    "/api/Authenticate/Refresh": {
      "post": { "summary": "Exchange the refresh cookie for a new access token", "responses": { "200": { "description": "new access token" }, "401": { "description": "no cookie" }, "403": { "description": "invalid or expired cookie" } } }
    },
    "/api/Authenticate/Logout": {
      "post": { "summary": "Clear and revoke the refresh cookie", "responses": { "200": { "description": "cookie cleared" }, "204": { "description": "no cookie to clear" } } }
    },
    "/api/Employees": {
      "get": { "summary": "List employees with skill populated", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "employee list" }, "401": { "description": "no bearer token" }, "403": { "description": "invalid bearer token" } } },
      "post": { "summary": "Add an employee", "security": [{"bearerAuth": []}], "responses": { "201": { "description": "created id" }, "400": { "description": "validation failure" }, "409": { "description": "duplicate email" } } }
    },
    "/api/Employees/{id}": {
      "put": { "summary": "Update an employee", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "updated employee" }, "400": { "description": "invalid id or payload" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete an employee and its skill document", "security": [{"bearerAuth": []}], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  },
  "components": { "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } }
}`
