package prompts

// DefaultPersona is the name the assistant introduces itself with
const DefaultPersona = "Dairinin"

// SystemPromptTemplate is the fixed instruction sent with every model request
var SystemPromptTemplate = NewPromptTemplate(`You are {{ .persona }}, a helpful AI assistant.
You can send briefs of what the user has on their plate by reading their email, calendar, and other sources.

You can perform these tasks on a schedule or on demand.
When users ask for web information like weather.
Introduce yourself as {{ .persona }}, not as Claude.`, []string{"persona"})

// GreetingTemplate is the first message of the assistant
var GreetingTemplate = NewPromptTemplate(`Hello! I'm {{ .persona }}, your AI assistant. `+
	`I can send briefs of what you have on your plate by reading your email, calendar, and other sources. `+
	`I can do this on a schedule or on demand. How can I help you today?`, []string{"persona"})

// BannerTemplate is printed when the session starts
var BannerTemplate = NewPromptTemplate(`🤖 {{ .persona }} AI Assistant started. Type '{{ .exit }}' to quit.`, []string{"persona", "exit"}).
	WithPartialVariables(map[string]any{"exit": "exit"})

// SystemPrompt returns the system prompt for the persona
func SystemPrompt(persona string) (string, error) {
	return SystemPromptTemplate.Format(map[string]any{"persona": persona})
}

// Greeting returns the greeting for the persona
func Greeting(persona string) (string, error) {
	return GreetingTemplate.Format(map[string]any{"persona": persona})
}

// Banner returns the startup banner for the persona
func Banner(persona string) (string, error) {
	return BannerTemplate.Format(map[string]any{"persona": persona})
}
