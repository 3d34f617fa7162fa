package config

// profileSchemaJSON describes the YAML profile shape. Unknown keys are
// rejected so misspelled knobs surface at load time.
const profileSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": ["object", "null"],
  "additionalProperties": false,
  "properties": {
    "baseUrl": { "type": "string" },
    "followRedirects": { "type": "boolean" },
    "maxRedirects": { "type": "integer", "minimum": 0 },
    "timeout": { "type": "number", "minimum": 0 },
    "restrictions": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "forceHttps": { "type": "boolean" },
        "rejectPrivateHosts": { "type": "boolean" },
        "allowedSchemes": {
          "type": "array",
          "items": { "type": "string" }
        }
      }
    },
    "transport": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "maxConnections": { "type": "integer", "minimum": 1 },
        "maxKeepaliveConnections": { "type": "integer", "minimum": 0 },
        "keepaliveExpiry": { "type": "number", "minimum": 0 },
        "http2": { "type": "boolean" },
        "insecureSkipVerify": { "type": "boolean" },
        "socket": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "nodelay": { "type": "boolean" },
            "enableKeepalive": { "type": "boolean" },
            "keepaliveIdle": { "type": "number", "minimum": 0 },
            "keepaliveInterval": { "type": "number", "minimum": 0 },
            "keepaliveCount": { "type": "integer", "minimum": 0 },
            "userTimeout": { "type": "number", "minimum": 0 }
          }
        }
      }
    },
    "retry": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "attempts": { "type": "integer", "minimum": 1 },
        "delay": { "type": "number", "minimum": 0 },
        "jitter": { "type": "number", "minimum": 0, "exclusiveMaximum": 1 }
      }
    },
    "headers": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "browser": { "type": "boolean" },
        "profile": { "enum": ["navigation", "api"] },
        "dnt": { "type": "boolean" }
      }
    },
    "userAgent": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "randomize": { "type": "boolean" },
        "platforms": {
          "type": "array",
          "items": { "enum": ["windows", "macos", "linux", "android", "ios"] }
        },
        "browsers": {
          "type": "array",
          "items": { "enum": ["chrome", "edge", "firefox", "safari"] }
        },
        "devices": {
          "type": "array",
          "items": { "enum": ["desktop", "mobile"] }
        },
        "overwrite": { "type": "boolean" },
        "clientHints": { "type": "boolean" }
      }
    },
    "rateLimit": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "perSecond": { "type": "number", "exclusiveMinimum": 0 },
        "burst": { "type": "integer", "minimum": 1 }
      }
    }
  }
}`
