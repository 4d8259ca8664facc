// Package docs registers the swagger document served under /doc.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "BSD License",
            "url": "https://opensource.org/license/bsd-2-clause"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/locate": {
            "post": {
                "description": "resolve the coordinates of an ordered chain of stops",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locator"],
                "summary": "locate stops",
                "parameters": [
                    {
                        "description": "stops, travel times in minutes, route type",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/locateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "locations, path and encoded polyline"},
                    "400": {"description": "invalid request"},
                    "404": {"description": "no stop has any candidate"},
                    "500": {"description": "search exhausted"}
                }
            }
        },
        "/candidates": {
            "get": {
                "description": "list dataset candidates by name or around a point",
                "produces": ["application/json"],
                "tags": ["locator"],
                "summary": "dataset candidates",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "name": "route_type", "in": "query"},
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "number", "name": "radius", "in": "query", "description": "meters, default 250"}
                ],
                "responses": {
                    "200": {"description": "candidates"},
                    "400": {"description": "invalid query"},
                    "404": {"description": "no candidate matches the name"}
                }
            }
        }
    },
    "definitions": {
        "stopRequest": {
            "type": "object",
            "required": ["stop_id", "stop_name"],
            "properties": {
                "stop_id": {"type": "string"},
                "stop_name": {"type": "string"},
                "lat": {"type": "number"},
                "lon": {"type": "number"}
            }
        },
        "locateRequest": {
            "type": "object",
            "required": ["stops"],
            "properties": {
                "stops": {"type": "array", "items": {"$ref": "#/definitions/stopRequest"}},
                "travel_times": {"type": "array", "items": {"type": "number"}},
                "route_type": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:6060",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Stoplocator API",
	Description:      "Resolves transit stop names to coordinates using openstreetmap data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
