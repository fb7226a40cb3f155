package response

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParsePlan extracts an ordered list of step descriptions from planner
// output. Fences are stripped and the outermost [...] span is parsed; non-string
// and blank items are dropped. Returns nil when no plan can be recovered.
func ParsePlan(text string) []string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start < 0 || end <= start {
		return nil
	}

	raw := cleaned[start : end+1]
	if !gjson.Valid(raw) {
		return nil
	}

	var steps []string
	gjson.Parse(raw).ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			if step := strings.TrimSpace(item.Str); step != "" {
				steps = append(steps, step)
			}
		}
		return true
	})

	return steps
}
