// Package docs registra el documento OpenAPI de la API para /swagger.
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
        "/api/close": {
            "post": {
                "description": "Registra la salida por id de visita. Cerrar una visita ya cerrada responde ok.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Cerrar visita",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID del operador", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"description": "Visita a cerrar", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/visits.closeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/visits.messageResponse"}}
                }
            }
        },
        "/api/list": {
            "get": {
                "description": "Últimas visitas, más recientes primero. query (o q) filtra sin distinguir mayúsculas ni tildes.",
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Listar visitas",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID del operador", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "Texto a buscar", "name": "query", "in": "query"},
                    {"type": "string", "description": "Alias de query", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Máximo de filas (default 500, máx 2000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/visits.listResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/visits.messageResponse"}}
                }
            }
        },
        "/api/manual": {
            "post": {
                "description": "Registra un ingreso con nombre y RUT digitados. La hora opcional (HH:MM) es de hoy y no puede ser futura.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Ingreso manual",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID del operador", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"description": "Datos del ingreso", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/visits.manualRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/visits.manualResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/visits.messageResponse"}}
                }
            }
        },
        "/api/places": {
            "get": {
                "description": "Lista los destinos disponibles ordenados por nombre.",
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Listar lugares",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID del operador", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/places.listPlacesResponse"}},
                    "401": {"description": "no autenticado", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "operador no válido", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "error interno", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/scan": {
            "post": {
                "description": "Resuelve el RUT del texto escaneado y registra ingreso o salida según el estado actual. Con dryRun solo informa si la persona está dentro.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["visits"],
                "summary": "Escanear documento",
                "parameters": [
                    {"type": "string", "description": "Solo en modo dev, ID del operador", "name": "X-Debug-User-ID", "in": "header"},
                    {"type": "string", "description": "Bearer token en producción", "name": "Authorization", "in": "header"},
                    {"description": "Texto escaneado", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/visits.scanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/visits.scanResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/visits.messageResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/visits.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "places.listPlacesResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "places": {"type": "array", "items": {"$ref": "#/definitions/places.placeResponse"}}
            }
        },
        "places.placeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "visits.closeRequest": {
            "type": "object",
            "properties": {
                "visitId": {"type": "integer"}
            }
        },
        "visits.listResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/visits.listRowResponse"}}
            }
        },
        "visits.listRowResponse": {
            "type": "object",
            "properties": {
                "entryTime": {"type": "string"},
                "exitTime": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "nationalId": {"type": "string"},
                "place": {"type": "string"},
                "state": {"type": "string", "enum": ["Inside", "Outside"]}
            }
        },
        "visits.manualRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "placeId": {"type": "integer"},
                "rut": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "visits.manualResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "ok": {"type": "boolean"},
                "visitId": {"type": "integer"}
            }
        },
        "visits.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "ok": {"type": "boolean"}
            }
        },
        "visits.scanRequest": {
            "type": "object",
            "properties": {
                "dryRun": {"type": "boolean"},
                "placeId": {"type": "integer"},
                "raw": {"type": "string"}
            }
        },
        "visits.scanResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["check_in", "check_out"]},
                "inside": {"type": "boolean"},
                "message": {"type": "string"},
                "name": {"type": "string"},
                "ok": {"type": "boolean"},
                "rut": {"type": "string"},
                "visitId": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "visitasegura API",
	Description:      "Registro de ingresos y salidas de visitas por RUT.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
