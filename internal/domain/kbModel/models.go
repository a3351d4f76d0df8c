package kbModel

import "time"

type Document struct {
	Name                string    `json:"doc_name"`
	ContentType         DocType   `json:"contentType"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
}

// DocChunk is the atomic retrievable unit. Identifier doubles as the
// DocumentStore key and the VectorIndex datapoint id.
type DocChunk struct {
	Identifier    string `json:"id"`
	DocumentName  string `json:"document_name"`
	PageContent   string `json:"page_content"`
	SequenceIndex int    `json:"sequence_index"`
}

// MatchResult is one k-NN hit. Score is a cosine similarity, higher is closer.
type MatchResult struct {
	Identifier string
	Score      float32
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"
