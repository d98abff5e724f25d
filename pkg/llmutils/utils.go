package llmutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/dairinin/pkg/llms"
)

// JSONIndent re-indents JSON body with two spaces.
// Invalid JSON is returned as is.
func JSONIndent(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// ToJSON returns compact JSON of val, HTML characters are not escaped.
func ToJSON(val any) string {
	return marshal(val, "")
}

// ToJSONIndent returns JSON of val indented with two spaces,
// HTML characters are not escaped.
func ToJSONIndent(val any) string {
	return marshal(val, "  ")
}

func marshal(val any, indent string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(val); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// PrintMessages is a debugging helper for transcript messages.
func PrintMessages(w io.Writer, msgs []llms.Message) {
	for _, m := range msgs {
		fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}
}

// CountMessagesContentSize counts the size of the content in the messages
func CountMessagesContentSize(msgs []llms.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.Role))
		size += uint64(len(m.Content))
	}
	return size
}

// CountResponseContentSize counts the size of the content in the content response
func CountResponseContentSize(resp *llms.ContentResponse) uint64 {
	if resp == nil {
		return 0
	}
	var size uint64
	for _, block := range resp.Blocks {
		switch b := block.(type) {
		case llms.ThinkingBlock:
			size += uint64(len(b.Thinking))
		case llms.TextBlock:
			size += uint64(len(b.Text))
		case llms.ToolUseBlock:
			size += uint64(len(b.ID))
			size += uint64(len(b.Name))
			size += uint64(len(b.Input))
		case llms.OtherBlock:
			size += uint64(len(b.Raw))
		}
	}
	return size
}

// CountTokens returns the token usage reported by the service
func CountTokens(resp *llms.ContentResponse) (in, out, total int64) {
	if resp == nil {
		return
	}
	in = resp.Usage.InputTokens
	out = resp.Usage.OutputTokens
	total = in + out
	return
}
