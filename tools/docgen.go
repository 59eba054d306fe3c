// Package main provides an OpenAPI documentation generator for the ocserv panel API.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// OpenAPISpec represents a simplified OpenAPI specification structure for documentation generation.
type OpenAPISpec struct {
	OpenAPI string `yaml:"openapi"`
	Info    struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Version     string `yaml:"version"`
	} `yaml:"info"`
	Servers []struct {
		URL string `yaml:"url"`
	} `yaml:"servers"`
	Paths      map[string]map[string]Operation `yaml:"paths"`
	Components struct {
		Schemas         map[string]interface{} `yaml:"schemas"`
		SecuritySchemes map[string]interface{} `yaml:"securitySchemes"`
		Parameters      map[string]Parameter   `yaml:"parameters"`
	} `yaml:"components"`
	Tags []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"tags"`
}

// Operation represents an OpenAPI operation definition with its metadata and parameters.
type Operation struct {
	Summary     string                 `yaml:"summary"`
	Description string                 `yaml:"description"`
	Tags        []string               `yaml:"tags"`
	Parameters  []Parameter            `yaml:"parameters"`
	RequestBody map[string]interface{} `yaml:"requestBody"`
	Responses   map[string]interface{} `yaml:"responses"`
	Security    []map[string][]string  `yaml:"security"`
	OperationID string                 `yaml:"operationId"`
}

// Parameter represents an OpenAPI parameter definition with validation schema.
type Parameter struct {
	Name        string                 `yaml:"name"`
	In          string                 `yaml:"in"`
	Required    bool                   `yaml:"required"`
	Description string                 `yaml:"description"`
	Schema      map[string]interface{} `yaml:"schema"`
	Ref         string                 `yaml:"$ref"`
	Example     interface{}            `yaml:"example"`
}

// EndpointInfo holds structured endpoint information for better organization
type EndpointInfo struct {
	Method    string
	Path      string
	Operation Operation
	SortKey   string
}

const markdownTemplate = `# {{.Info.Title}} API Reference

{{.Info.Description}}

**Version:** {{.Info.Version}}
**Base URL:** {{(index .Servers 0).URL}}

## Table of Contents

1. [Authentication](#authentication)
2. [Authorization](#authorization)
3. [Common Parameters](#common-parameters)
4. [Response Formats](#response-formats)
5. [Error Handling](#error-handling)
6. [API Endpoints](#api-endpoints)
{{range .Tags}}   - [{{.Name}}](#{{lower .Name | replace " " "-"}})
{{end}}

---

## Authentication

The panel API uses session-based authentication with encrypted cookies. All endpoints require authentication except:
- ` + "`GET /health`" + ` - Health check endpoint
- ` + "`POST /session/login`" + ` - Login endpoint
- ` + "`GET /auth/config`" + ` - Authentication configuration
- ` + "`POST /admin/setup`" + ` - One-time admin bootstrap

### Authentication Methods

1. **Local Authentication**
   - Username/password authentication
   - Login: ` + "`POST /session/login`" + ` with ` + "`{\"username\": \"string\", \"password\": \"string\"}`" + `
   - Returns session cookie valid for 24 hours

2. **OAuth/OIDC Authentication**
   - Supports Microsoft Entra ID, Google, Okta
   - Start flow: ` + "`GET /session/oauth/start?frontend_url=<redirect_url>`" + `
   - Auto-provisioning for new accounts (default role: staff)

3. **Session Management**
   - Check session: ` + "`GET /session`" + `
   - Logout: ` + "`DELETE /session`" + `

## Authorization

Role-based access control (RBAC) with two roles:

| Role | Permissions |
|------|------------|
| **admin** | Full access including panel configuration, staff management and server control |
| **staff** | Manage VPN users, read groups and traffic statistics |

## Common Parameters

### Pagination
All list endpoints support page-based pagination:

| Parameter | Type | Default | Description |
|-----------|------|---------|-------------|
| ` + "`page`" + ` | integer | 1 | Page number (1-based) |
| ` + "`item_per_page`" + ` | integer | 20 | Items per page (1-100) |

## Response Formats

### Success Response - Single Resource
` + "```json" + `
{
  "id": 1,
  "username": "example",
  "created_at": "2024-01-15T10:30:00Z",
  "updated_at": "2024-01-15T10:30:00Z"
}
` + "```" + `

### Success Response - Paginated List
` + "```json" + `
{
  "result": [
    {
      "id": 1,
      "username": "example1"
    },
    {
      "id": 2,
      "username": "example2"
    }
  ],
  "pages": 8,
  "page": 1,
  "total_count": 150
}
` + "```" + `

## Error Handling

The API uses RFC 9457 Problem Details for error responses:

` + "```json" + `
{
  "type": "https://ocserv-panel.api/problems/validation-error",
  "title": "Validation Error",
  "status": 422,
  "detail": "The request contains invalid fields",
  "errors": [
    {
      "field": "username",
      "message": "Username is required"
    }
  ]
}
` + "```" + `

### Common Error Types

| Status | Type | Description |
|--------|------|-------------|
| 400 | ` + "`bad-request`" + ` | Malformed request parameters or body |
| 401 | ` + "`unauthorized`" + ` | Missing or invalid authentication |
| 403 | ` + "`forbidden`" + ` | Insufficient permissions |
| 404 | ` + "`not-found`" + ` | Resource not found |
| 409 | ` + "`conflict`" + ` | Resource conflict (duplicate) |
| 422 | ` + "`validation-error`" + ` | Invalid field values |
| 500 | ` + "`internal-server-error`" + ` | Server error |
| 502 | ` + "`ocserv-control-error`" + ` | occtl or ocpasswd command failed |

---

## API Endpoints

{{range $tag := .Tags}}
### {{$tag.Name}}

{{if $tag.Description}}{{$tag.Description}}{{end}}

{{range $endpoint := index $.EndpointsByTag $tag.Name}}
#### {{$endpoint.Operation.Summary}}

` + "`{{$endpoint.Method}} {{$endpoint.Path}}`" + `

{{if $endpoint.Operation.Description}}{{$endpoint.Operation.Description}}{{end}}

{{if $endpoint.Operation.Parameters}}
**Parameters:**

| Name | In | Type | Required | Description |
|------|-----|------|----------|-------------|
{{range $param := $endpoint.Operation.Parameters}}| ` + "`{{$param.Name}}`" + ` | {{$param.In}} | {{getParamType $param}} | {{if $param.Required}}Yes{{else}}No{{end}} | {{$param.Description}} |
{{end}}{{end}}

{{if $endpoint.Operation.RequestBody}}
**Request Body:** {{getRequestBodyInfo $endpoint.Operation.RequestBody}}
{{end}}

{{if hasSuccessResponse $endpoint.Operation.Responses}}
**Response:** {{getSuccessResponse $endpoint.Operation.Responses}}
{{end}}

{{if hasErrorResponses $endpoint.Operation.Responses}}
**Error Responses:**
{{range $code, $response := $endpoint.Operation.Responses}}{{if isErrorCode $code}}
- ` + "`{{$code}}`" + `: {{getResponseDescription $response}}{{end}}{{end}}
{{end}}

---
{{end}}
{{end}}

## Additional Resources

- [OpenAPI Specification](../openapi.yaml) - Full API specification
`

func main() {
	var (
		input  = flag.String("input", "openapi.yaml", "Input OpenAPI specification file")
		output = flag.String("output", "docs/API_REFERENCE.md", "Output markdown file")
	)
	flag.Parse()

	// Read OpenAPI spec
	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read OpenAPI spec: %v", err)
	}

	// Parse YAML
	var spec OpenAPISpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		log.Fatalf("Failed to parse OpenAPI spec: %v", err)
	}

	// Create output directory if needed
	outputDir := filepath.Dir(*output)
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Generate markdown
	markdown, err := generateMarkdown(spec)
	if err != nil {
		log.Fatalf("Failed to generate markdown: %v", err)
	}

	// Write output
	if err := os.WriteFile(*output, []byte(markdown), 0600); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	fmt.Printf("✓ Documentation generated at %s\n", *output)
}

func generateMarkdown(spec OpenAPISpec) (string, error) {
	// Group endpoints by tag
	endpointsByTag := make(map[string][]EndpointInfo)

	// Collect all endpoints
	for path, methods := range spec.Paths {
		for method, op := range methods {
			// Resolve parameter references
			resolvedParams := make([]Parameter, 0)
			for _, param := range op.Parameters {
				if param.Ref != "" {
					// Extract parameter name from $ref
					// Format: #/components/parameters/paramName
					parts := strings.Split(param.Ref, "/")
					if len(parts) == 4 && parts[0] == "#" && parts[1] == "components" && parts[2] == "parameters" {
						paramName := parts[3]
						if resolvedParam, ok := spec.Components.Parameters[paramName]; ok {
							resolvedParams = append(resolvedParams, resolvedParam)
						}
					}
				} else {
					resolvedParams = append(resolvedParams, param)
				}
			}
			op.Parameters = resolvedParams

			endpoint := EndpointInfo{
				Method:    strings.ToUpper(method),
				Path:      path,
				Operation: op,
				SortKey:   path + method,
			}

			// Add to each tag
			if len(op.Tags) == 0 {
				op.Tags = []string{"Other"}
			}
			for _, tag := range op.Tags {
				endpointsByTag[tag] = append(endpointsByTag[tag], endpoint)
			}
		}
	}

	// Sort endpoints within each tag
	for tag := range endpointsByTag {
		sort.Slice(endpointsByTag[tag], func(i, j int) bool {
			return endpointsByTag[tag][i].SortKey < endpointsByTag[tag][j].SortKey
		})
	}

	// Ensure all tags are present
	if len(spec.Tags) == 0 {
		// Create tags from collected endpoints
		for tag := range endpointsByTag {
			spec.Tags = append(spec.Tags, struct {
				Name        string `yaml:"name"`
				Description string `yaml:"description"`
			}{Name: tag})
		}
		// Sort tags alphabetically
		sort.Slice(spec.Tags, func(i, j int) bool {
			return spec.Tags[i].Name < spec.Tags[j].Name
		})
	}

	funcMap := template.FuncMap{
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"replace": strings.ReplaceAll,
		"getParamType": func(param Parameter) string {
			if param.Schema != nil {
				if t, ok := param.Schema["type"].(string); ok {
					return t
				}
			}
			return "string"
		},
		"getRequestBodyInfo": func(rb map[string]interface{}) string {
			if content, ok := rb["content"].(map[string]interface{}); ok {
				var contentTypes []string
				for ct := range content {
					contentTypes = append(contentTypes, ct)
				}

				// Get description if available
				desc := ""
				if d, ok := rb["description"].(string); ok {
					desc = " - " + d
				}

				if len(contentTypes) > 0 {
					return fmt.Sprintf("`%s`%s", contentTypes[0], desc)
				}
			}
			return "Required"
		},
		"hasSuccessResponse": func(responses map[string]interface{}) bool {
			for code := range responses {
				if code == "200" || code == "201" || code == "202" || code == "204" {
					return true
				}
			}
			return false
		},
		"getSuccessResponse": func(responses map[string]interface{}) string {
			codes := []string{"200", "201", "202", "204"}
			for _, code := range codes {
				if resp, ok := responses[code]; ok {
					if respMap, ok := resp.(map[string]interface{}); ok {
						if desc, ok := respMap["description"].(string); ok {
							return fmt.Sprintf("`%s` - %s", code, desc)
						}
					}
					return fmt.Sprintf("`%s`", code)
				}
			}
			return ""
		},
		"hasErrorResponses": func(responses map[string]interface{}) bool {
			for code := range responses {
				if code != "200" && code != "201" && code != "202" && code != "204" {
					return true
				}
			}
			return false
		},
		"isErrorCode": func(code string) bool {
			return code != "200" && code != "201" && code != "202" && code != "204"
		},
		"getResponseDescription": func(response interface{}) string {
			if respMap, ok := response.(map[string]interface{}); ok {
				if desc, ok := respMap["description"].(string); ok {
					return desc
				}
			}
			return "Error"
		},
	}

	// Prepare template data
	templateData := struct {
		OpenAPISpec
		EndpointsByTag map[string][]EndpointInfo
	}{
		OpenAPISpec:    spec,
		EndpointsByTag: endpointsByTag,
	}

	tmpl, err := template.New("markdown").Funcs(funcMap).Parse(markdownTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData); err != nil {
		return "", err
	}

	return buf.String(), nil
}
