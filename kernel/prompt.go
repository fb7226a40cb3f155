package kernel

import (
	"fmt"
	"strings"
)

const capabilitiesPlaceholder = "{capabilities}"

const defaultSystemPrompt = `You are an autonomous task agent. You work in turns: each turn you either call exactly one capability or report your result in plain text.

Available capabilities:
{capabilities}
To call a capability, reply with a single JSON object and nothing else:
{"thought": "<your reasoning>", "action": "<capability name>", "args": {"<param>": "<value>"}}

When the task is complete, reply with:
{"thought": "<your reasoning>", "action": "finish", "args": {"summary": "<what was done>"}}
or state "task complete" in plain text together with the result.

Rules:
- Call one capability per reply and wait for its output before the next step.
- Do not call the same capability repeatedly with the same arguments.
- Use only the capabilities listed above.`

const plannerSystemPrompt = "You are an efficient, pragmatic software architect."

const plannerPrompt = `Task: %s

Break the task into steps according to its difficulty:
1. A single-script task gets exactly 1 step.
2. Only complex tasks get 2-3 steps.

Reply with a JSON list of strings only, no Markdown:
["Step 1: write the complete program", "Step 2: run and test it"]`

const (
	repeatCorrection = "You already called %s. Summarize the task result now and do not call it again."
	nudgeStructured  = `Reply with a JSON capability call: {"thought": "...", "action": "<capability>", "args": {...}}. Use the "finish" action when the task is complete.`
	nudgeFinish      = `The task appears to be finished. Reply "task complete" (or a "finish" action) to end the session. Do not issue further capability calls.`
)

// renderSystemPrompt substitutes the capability listing into tmpl. A
// template without the placeholder gets the listing appended.
func renderSystemPrompt(tmpl, capabilities string) string {
	if tmpl == "" {
		tmpl = defaultSystemPrompt
	}
	if strings.Contains(tmpl, capabilitiesPlaceholder) {
		return strings.ReplaceAll(tmpl, capabilitiesPlaceholder, capabilities)
	}
	return tmpl + "\n\nAvailable capabilities:\n" + capabilities
}

func kickoffMessage(task string, plan []string) string {
	return fmt.Sprintf("Task: %s\n\nPlan:\n%s\n\nBegin execution.", task, strings.Join(plan, "\n"))
}

func feedbackMessage(name, content string) string {
	return fmt.Sprintf("[%s output]:\n%s", name, content)
}

func defaultPlan(task string) []string {
	return []string{"Step 1: complete " + task}
}
