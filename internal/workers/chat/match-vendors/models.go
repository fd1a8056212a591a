// internal/workers/chat/match-vendors/models.go
package matchvendors

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type Output struct {
	Reply      string `json:"reply"`
	IsFollowUp bool   `json:"isFollowUp"`
	Outcome    string `json:"outcome"`
	SessionID  string `json:"sessionId"`
}

const inputSchema = `{
  "type": "object",
  "properties": {
    "message": {"type": "string", "maxLength": 2000},
    "sessionId": {"type": "string", "minLength": 1, "maxLength": 128}
  },
  "required": ["message", "sessionId"]
}`
