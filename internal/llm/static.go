package llm

import "context"

// StaticModelSource serves a fixed model list for providers without a
// list-models endpoint.
type StaticModelSource struct {
	List   []string
	Detail string
}

func (s StaticModelSource) Models(context.Context) []string {
	return append([]string(nil), s.List...)
}

func (s StaticModelSource) Status(context.Context) (bool, string) {
	return true, s.Detail
}
