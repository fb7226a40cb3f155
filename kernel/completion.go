package kernel

import "strings"

// CompletionPolicy decides whether a reply without an action ends the task.
type CompletionPolicy interface {
	Complete(task, reply string, turn int) bool
}

var (
	defaultPhrases = []string{
		"task complete", "task completed", "task is complete", "task has been completed",
		"all steps completed", "all steps are complete",
		"任务完成", "完成了", "已完成", "全部完成", "执行完毕", "操作完毕", "运行成功",
		"以上就是", "这就是全部", "就是这些",
	}
	defaultQueryKeywords = []string{
		"what files", "which files", "list ", "show ", "what is in",
		"什么文件", "有哪些", "列出", "查看",
	}
	defaultAnswerMarkers = []string{
		"as follows", "the following", "here are", "here is", "contains",
		"如下", "以下", "列表", "文件夹",
	}
)

// PhrasePolicy completes a task on either of two independent signals: the
// reply contains a completion phrase, or the task reads as a simple query,
// the reply looks like an answer, and at least MinTurn turns have run.
// Matching is case-insensitive.
type PhrasePolicy struct {
	Phrases       []string
	QueryKeywords []string
	AnswerMarkers []string
	MinTurn       int
}

// DefaultPhrasePolicy returns the built-in English and Chinese policy.
func DefaultPhrasePolicy() *PhrasePolicy {
	return &PhrasePolicy{
		Phrases:       defaultPhrases,
		QueryKeywords: defaultQueryKeywords,
		AnswerMarkers: defaultAnswerMarkers,
		MinTurn:       defaultQueryMinTurn,
	}
}

// NewPhrasePolicy builds a policy from configuration, keeping the default
// for every list left empty.
func NewPhrasePolicy(cfg *CompletionConfig) *PhrasePolicy {
	p := DefaultPhrasePolicy()
	if len(cfg.Phrases) > 0 {
		p.Phrases = cfg.Phrases
	}
	if len(cfg.QueryKeywords) > 0 {
		p.QueryKeywords = cfg.QueryKeywords
	}
	if len(cfg.AnswerMarkers) > 0 {
		p.AnswerMarkers = cfg.AnswerMarkers
	}
	if cfg.QueryMinTurn > 0 {
		p.MinTurn = cfg.QueryMinTurn
	}
	return p
}

func (p *PhrasePolicy) Complete(task, reply string, turn int) bool {
	reply = strings.ToLower(reply)
	if containsAny(reply, p.Phrases) {
		return true
	}
	return turn >= p.MinTurn &&
		containsAny(strings.ToLower(task), p.QueryKeywords) &&
		containsAny(reply, p.AnswerMarkers)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
