package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Rajac Admission Portal API",
        "description": "Parent admission flow and staff review for Rajac International Schools",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {
            "name": "Pages",
            "description": "Route rendering and navigation"
        },
        {
            "name": "Authentication",
            "description": "Parent sessions"
        },
        {
            "name": "Admission",
            "description": "Form submission and exam booking"
        },
        {
            "name": "Admin",
            "description": "Staff review"
        },
        {
            "name": "Security",
            "description": "CSRF tokens"
        },
        {
            "name": "Operations",
            "description": "Probes and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Operations"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Operations"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Operations"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Landing page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Parent sign-in and sign-up page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/form": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Admission form page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Admission"
                ],
                "summary": "Submit the admission form",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AdmissionFormRequest"
                        }
                    }
                ],
                "responses": {
                    "303": {
                        "description": "Continue to exam booking",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not signed in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Already submitted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Too many attempts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/enter-outlook": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Exam slot booking page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Admission"
                ],
                "summary": "Book the entrance exam slot",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BookSlotRequest"
                        }
                    }
                ],
                "responses": {
                    "303": {
                        "description": "Continue to fees",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid slot",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Not signed in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No submission",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/pay-fees": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Fee payment page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Parent dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/login": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Staff sign-in page",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Authenticate a staff member",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AdminLoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Signed in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid email or password",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Too many attempts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Login failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": [
                    "Pages"
                ],
                "summary": "Staff review dashboard",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered view",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "303": {
                        "description": "Redirect",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string",
                        "description": "Case-insensitive father or student name filter"
                    }
                ]
            }
        },
        "/auth/signup": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register a parent",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SignUpRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Signed in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "User already registered",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Authenticate a parent",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SignInRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Signed in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Invalid login credentials",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "429": {
                        "description": "Too many attempts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign the parent out",
                "responses": {
                    "303": {
                        "description": "Back to sign-in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/auth/pagehide": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Page lifecycle beacon",
                "parameters": [
                    {
                        "name": "event",
                        "in": "query",
                        "type": "string",
                        "required": true,
                        "enum": [
                            "pagehide",
                            "beforeunload"
                        ]
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Durable session cleared"
                    },
                    "400": {
                        "description": "Unsupported event",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Sign the staff member out",
                "responses": {
                    "303": {
                        "description": "Back to staff sign-in",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/applications/{id}": {
            "patch": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update an application",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReviewUpdateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Reloaded review list with stats",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Application not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/admin/applications/export": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Export applications",
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx"
                        ],
                        "default": "csv"
                    },
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/csrf": {
            "get": {
                "tags": [
                    "Security"
                ],
                "summary": "Issue a single-use CSRF token",
                "responses": {
                    "200": {
                        "description": "Token issued",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "AdmissionFormRequest": {
            "type": "object",
            "properties": {
                "studentFirstName": {
                    "type": "string"
                },
                "studentLastName": {
                    "type": "string"
                },
                "studentNameAr": {
                    "type": "string"
                },
                "dob": {
                    "type": "string"
                },
                "religion": {
                    "type": "string"
                },
                "citizenship": {
                    "type": "string"
                },
                "secondLang": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "gender": {
                    "type": "string"
                },
                "school": {
                    "type": "string"
                },
                "grade": {
                    "type": "string"
                },
                "prevSchool": {
                    "type": "string"
                },
                "scholarNotes": {
                    "type": "string"
                },
                "fatherName": {
                    "type": "string"
                },
                "fatherDob": {
                    "type": "string"
                },
                "fatherPhone": {
                    "type": "string"
                },
                "fatherEmail": {
                    "type": "string"
                },
                "fatherDegree": {
                    "type": "string"
                },
                "fatherWork": {
                    "type": "string"
                },
                "fatherBusiness": {
                    "type": "string"
                },
                "motherName": {
                    "type": "string"
                },
                "motherDob": {
                    "type": "string"
                },
                "motherPhone": {
                    "type": "string"
                },
                "motherEmail": {
                    "type": "string"
                },
                "motherDegree": {
                    "type": "string"
                },
                "motherWork": {
                    "type": "string"
                },
                "motherBusiness": {
                    "type": "string"
                }
            }
        },
        "BookSlotRequest": {
            "type": "object",
            "properties": {
                "testDate": {
                    "type": "string",
                    "format": "date"
                },
                "testTime": {
                    "type": "string"
                }
            }
        },
        "ReviewUpdateRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "admin_notes": {
                    "type": "string"
                },
                "test_result": {
                    "type": "string"
                },
                "test_date": {
                    "type": "string"
                },
                "test_time": {
                    "type": "string"
                }
            }
        },
        "SignUpRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "fatherName": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password",
                "fatherName"
            ]
        },
        "SignInRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "AdminLoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "View": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "string"
                },
                "identity": {
                    "type": "object"
                },
                "admin": {
                    "type": "object"
                },
                "data": {
                    "type": "object"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
