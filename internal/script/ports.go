package script

import "context"

// Completer — LLM, отвечающий JSON-объектом.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type PromptSource interface {
	GetByName(ctx context.Context, name string) (string, error)
}

// ContentElement — элемент тела статьи из CMS; в сценарий идут только type=text.
type ContentElement struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Article struct {
	Title    string           `json:"title"`
	Elements []ContentElement `json:"content_elements"`
}
