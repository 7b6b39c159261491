// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// InboundMessage is one citizen message received from the messaging gateway.
// Immutable once constructed; the channel prefix is already stripped from Sender.
type InboundMessage struct {
	Sender      string // phone-like identifier, e.g. "+919800000000"
	Body        string
	Latitude    string // optional, as sent by the gateway
	Longitude   string // optional
	ProfileName string // optional display name
}

// Department is a civic department a query can be routed to.
type Department string

const (
	DepartmentHealth       Department = "health"
	DepartmentElectricity  Department = "electricity"
	DepartmentWater        Department = "water"
	DepartmentMunicipality Department = "municipality"

	// DepartmentNone means no department keywords matched.
	DepartmentNone Department = ""
)

// IntentResult is the outcome of keyword classification for one message.
type IntentResult struct {
	Department      Department
	MatchedKeywords []string
}

// RetrievedChunk is one verified content chunk returned by the retriever.
// Distance is an embedding distance: lower means more relevant.
// Never mutated after creation.
type RetrievedChunk struct {
	ID         string
	Text       string
	Distance   float64
	Title      string
	Location   string
	TenantName string
}

// ResponseStatus tags the terminal outcome of a pipeline invocation.
type ResponseStatus string

const (
	StatusRateLimited ResponseStatus = "rate_limited"
	StatusCached      ResponseStatus = "cached"
	StatusFallback    ResponseStatus = "fallback"
	StatusRAG         ResponseStatus = "rag"
	StatusFiltered    ResponseStatus = "filtered"
)

// PipelineResult is the sole externally observable output of the pipeline.
type PipelineResult struct {
	Status  ResponseStatus `json:"status"`
	Message string         `json:"message"`
}

// QueryRecord is the per-message analytics record emitted to the query log sink.
// Fire-and-forget: the pipeline never reads it back.
type QueryRecord struct {
	Sender          string
	TenantID        string
	QueryText       string
	QueryLanguage   string
	Location        string
	ResponseText    string
	ResponseType    ResponseStatus
	RetrievedChunks []string
	Latency         time.Duration
}
