// Package assistant implements the client side of the PlatePal AI
// integration: prompt assembly with user preference context, transport
// selection (proxy, direct, or Gemini), and extraction of structured
// data from free-text model replies.
package assistant

// Message roles accepted by the completion provider. Each request is a
// system message establishing the task followed by one user message.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single role-tagged message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Temperatures per task family. Structured tasks run cooler so the model
// produces parseable output.
const (
	DefaultChatTemperature float32 = 0.7
	StructuredTemperature  float32 = 0.3
)

// noResponseFallback is returned when the provider replies successfully
// but with no completion content. Matches the gateway's fallback so both
// transports behave identically.
const noResponseFallback = "No response from AI"

// NutritionInfo is the parsed nutrition breakdown for a recipe. Values
// are kept as display strings (e.g. "320 kcal", "12g") since the model
// reports them with units.
type NutritionInfo struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Fiber    string `json:"fiber"`
	Sugar    string `json:"sugar"`
}
