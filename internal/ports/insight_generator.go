package ports

import "context"

type InsightKind string

const (
	InsightOverview   InsightKind = "overview"
	InsightBooks      InsightKind = "books"
	InsightCareer     InsightKind = "career"
	InsightVocabulary InsightKind = "vocabulary"
)

// InsightRequest carries the data summarised by the AI collaborator. Payload
// is marshalled to JSON as the prompt body.
type InsightRequest struct {
	Kind    InsightKind
	Payload any
}

type InsightGenerator interface {
	Generate(ctx context.Context, req InsightRequest) (string, error)
}
