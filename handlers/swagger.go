package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>profilekit — Swagger</title>
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

// OpenAPI document for the authentication and profile endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "profilekit", "version": "v1.0.0", "description": "User authentication and profile-management API. Admins can list both public and private profiles; regular users only see public ones." },
  "components": {
    "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "User": {
        "type": "object",
        "properties": {
          "id": {"type":"string"},
          "username": {"type":"string"},
          "name": {"type":"string"},
          "email": {"type":"string"},
          "isAdmin": {"type":"boolean"},
          "isProfilePublic": {"type":"boolean"},
          "createdAt": {"type":"string","format":"date-time"},
          "updatedAt": {"type":"string","format":"date-time"}
        }
      }
    }
  },
  "paths": {
    "/api/login": {
      "post": { "summary": "Login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}},"required":["email","password"]}}}}, "responses": { "200": { "description": "JWT token returned" }, "403": { "description": "missing, unknown or wrong credentials" } } }
    },
    "/api/register": {
      "post": { "summary": "Register", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"},"name":{"type":"string"},"username":{"type":"string"}},"required":["email","password"]}}}}, "responses": { "201": { "description": "user created (no password in response)" }, "403": { "description": "missing field or duplicate username/email" } } }
    },
    "/api/logout": {
      "get": { "summary": "Logout", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/google": {
      "get": { "summary": "Google login", "responses": { "302": { "description": "redirect to Google consent page" } } }
    },
    "/api/auth/google/callback": {
      "get": { "summary": "Google callback", "responses": { "302": { "description": "redirect to dashboard with a one-hour token" } } }
    },
    "/profile": {
      "get": { "summary": "List profiles", "security": [{"bearerAuth": []}], "parameters": [
        {"in":"query","name":"limit","schema":{"type":"integer"}},
        {"in":"query","name":"offset","schema":{"type":"integer"}},
        {"in":"query","name":"sort","schema":{"type":"string"}},
        {"in":"query","name":"fields","schema":{"type":"string"}},
        {"in":"query","name":"populate","schema":{"type":"string"}}
      ], "responses": { "200": { "description": "role-scoped list of users in a data envelope" }, "401": { "description": "missing or invalid token" } } }
    },
    "/profile/{id}": {
      "get": { "summary": "Get profile by id", "security": [{"bearerAuth": []}], "parameters": [{"in":"path","name":"id","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "user record" }, "404": { "description": "invalid id or no such user" } } },
      "patch": { "summary": "Update profile", "security": [{"bearerAuth": []}], "parameters": [{"in":"path","name":"id","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "updated" }, "403": { "description": "invalid id or nothing to update" } } }
    },
    "/profile/upload": {
      "post": { "summary": "Upload a file", "security": [{"bearerAuth": []}], "responses": { "201": { "description": "object key returned" }, "404": { "description": "no file in request" } } }
    },
    "/profile/download": {
      "get": { "summary": "Download a file", "security": [{"bearerAuth": []}], "parameters": [{"in":"query","name":"fileLocation","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "binary stream" }, "403": { "description": "missing fileLocation" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
