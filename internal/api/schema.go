package api

import "github.com/santhosh-tekuri/jsonschema/v5"

// Payload schemas. Every response body is validated against its schema before
// it is decoded into a typed record, so malformed payloads are rejected in one
// place instead of being guarded field-by-field in every consumer.

const stateSchema = `{
  "type": "object",
  "required": ["step", "agents"],
  "properties": {
    "step": {"type": "integer", "minimum": 0},
    "sim_time": {"type": "string"},
    "grid": {
      "type": "object",
      "properties": {
        "width": {"type": "integer", "minimum": 1},
        "height": {"type": "integer", "minimum": 1}
      }
    },
    "agents": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["name", "pos"],
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string"},
          "pos": {
            "type": "array",
            "items": {"type": "integer"},
            "minItems": 2,
            "maxItems": 2
          },
          "sprite": {"type": "string"},
          "pronunciatio": {"type": "string"},
          "activity": {"type": "string"},
          "location": {"type": "string"}
        }
      }
    }
  }
}`

const eventsSchema = `{
  "type": "object",
  "required": ["events"],
  "properties": {
    "events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["step", "type"],
        "properties": {
          "step": {"type": "integer", "minimum": 0},
          "type": {"type": "string"},
          "timestamp": {"type": "string"},
          "agent": {"type": "string"},
          "target": {"type": "string"},
          "content": {"type": "string"}
        }
      }
    }
  }
}`

const resultsSchema = `{
  "type": "object",
  "required": ["run_id", "total_steps", "attack_success", "targets"],
  "properties": {
    "run_id": {"type": "string"},
    "deviant_id": {"type": "string"},
    "deviant_name": {"type": "string"},
    "total_steps": {"type": "integer", "minimum": 0},
    "sim_time": {"type": "string"},
    "total_messages": {"type": "integer", "minimum": 0},
    "total_reveals": {"type": "integer", "minimum": 0},
    "total_tactics": {"type": "integer", "minimum": 0},
    "attack_success": {"type": "boolean"},
    "targets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["target_id", "trust_level", "current_phase"],
        "properties": {
          "target_id": {"type": "string"},
          "target_name": {"type": "string"},
          "messages_sent": {"type": "integer", "minimum": 0},
          "messages_received": {"type": "integer", "minimum": 0},
          "trust_level": {"type": "number", "minimum": 0, "maximum": 1},
          "current_phase": {"type": "integer", "minimum": 1, "maximum": 5},
          "phase_name": {"type": "string"},
          "channels_used": {"type": "array", "items": {"type": "string"}},
          "tactics_used": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "tactic": {"type": "string"},
                "phase": {"type": "integer"},
                "step": {"type": "integer"}
              }
            }
          },
          "info_extracted": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "info_type": {"type": "string"},
                "sensitivity": {"type": "string"},
                "channel": {"type": "string"},
                "step": {"type": "integer"},
                "value": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

const runsSchema = `{
  "type": "object",
  "required": ["runs"],
  "properties": {
    "runs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["run_id"],
        "properties": {
          "run_id": {"type": "string"},
          "date": {"type": "string"},
          "steps": {"type": "integer", "minimum": 0},
          "reveals": {"type": "integer", "minimum": 0},
          "size_kb": {"type": "number", "minimum": 0}
        }
      }
    }
  }
}`

var (
	compiledState   = jsonschema.MustCompileString("state.schema.json", stateSchema)
	compiledEvents  = jsonschema.MustCompileString("events.schema.json", eventsSchema)
	compiledResults = jsonschema.MustCompileString("results.schema.json", resultsSchema)
	compiledRuns    = jsonschema.MustCompileString("runs.schema.json", runsSchema)
)
