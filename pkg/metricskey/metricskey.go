package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsLLMMessagesSent is base for counter metric for total messages sent to LLM
	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides total messages sent to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides total bytes sent to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_received",
		Help:         "stats_llm_bytes_received provides total bytes received from LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides total input tokens sent to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides total output tokens received from LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsLLMCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_calls_failed",
		Help:         "stats_llm_calls_failed provides total failed requests to LLM",
		RequiredTags: []string{"agent", "model"},
	}

	StatsTurnsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_turns_succeeded",
		Help:         "stats_turns_succeeded provides total conversation turns succeeded",
		RequiredTags: []string{"agent"},
	}

	StatsTurnsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_turns_failed",
		Help:         "stats_turns_failed provides total conversation turns failed",
		RequiredTags: []string{"agent"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsToolServersConnected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_servers_connected",
		Help:         "stats_tool_servers_connected provides total tool servers connected at discovery",
		RequiredTags: []string{"server"},
	}

	StatsToolServersFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_servers_failed",
		Help:         "stats_tool_servers_failed provides total tool servers failed at discovery",
		RequiredTags: []string{"server"},
	}
)

// Perf
var (
	PerfTurn = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_turn",
		Help:         "perf_turn provides duration of a conversation turn",
		RequiredTags: []string{"agent"},
	}

	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides duration of LLM call",
		RequiredTags: []string{"agent", "model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfLLMCall,
	&PerfToolCall,
	&PerfTurn,
	&StatsLLMBytesReceived,
	&StatsLLMBytesSent,
	&StatsLLMCallsFailed,
	&StatsLLMInputTokens,
	&StatsLLMMessagesSent,
	&StatsLLMOutputTokens,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
	&StatsToolServersConnected,
	&StatsToolServersFailed,
	&StatsTurnsFailed,
	&StatsTurnsSucceeded,
}
