// Package docs содержит описание HTTP API для swagger UI.
// Файл генерируется командой swag init по аннотациям обработчиков.
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
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация",
                "parameters": [
                    {"description": "Данные пользователя", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход",
                "parameters": [
                    {"description": "Email и пароль", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Текущий пользователь",
                "parameters": [
                    {"type": "string", "description": "Токен доступа", "name": "access_token", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/password/update": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Смена пароля",
                "parameters": [
                    {"type": "string", "description": "Токен доступа", "name": "access_token", "in": "header", "required": true},
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true},
                    {"description": "Пароли", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/password.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/users/{id}/lastexercise": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Отметить последнее упражнение",
                "parameters": [
                    {"type": "string", "description": "Токен доступа", "name": "access_token", "in": "header", "required": true},
                    {"type": "string", "description": "ID пользователя", "name": "id", "in": "path", "required": true},
                    {"description": "Упражнение", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/lastexercise.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/exercises": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["exercises"],
                "summary": "Создать упражнение",
                "parameters": [
                    {"type": "string", "description": "Токен доступа", "name": "access_token", "in": "header", "required": true},
                    {"description": "Упражнение", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/exercises.Request"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "register.Request": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "passwordConfirm": {"type": "string"},
                "firstname": {"type": "string"},
                "lastname": {"type": "string"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "password.Request": {
            "type": "object",
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"},
                "newPasswordConfirm": {"type": "string"}
            }
        },
        "lastexercise.Request": {
            "type": "object",
            "required": ["exerciseId"],
            "properties": {
                "exerciseId": {"type": "string"},
                "duration": {"type": "string"}
            }
        },
        "exercises.TypeRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "seriesCardNumber": {"type": "integer"},
                "seriesCardsColor": {"type": "string"},
                "cardTextColor": {"type": "string"},
                "order": {"type": "integer"},
                "numberOfRepetitions": {"type": "integer"}
            }
        },
        "exercises.Request": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "userId": {"type": "string"},
                "duration": {"type": "string"},
                "cardColor": {"type": "string"},
                "textColor": {"type": "string"},
                "order": {"type": "integer"},
                "exerciseTypes": {"type": "array", "items": {"$ref": "#/definitions/exercises.TypeRequest"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "passwords_must_match"}
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
	Title:            "Last Exercise API",
	Description:      "Учёт упражнений и истории тренировок.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
