package types

type RelationItem struct {
	Id       string `json:"id" yaml:"id"`
	Sentence int    `json:"sentence" yaml:"sentence"`
	Trigger  Entity `json:"trigger" yaml:"trigger"`
	Receiver Entity `json:"receiver" yaml:"receiver"`
	Type     string `json:"type" yaml:"type"`
}

type RelationResponse struct {
	DocId     string         `json:"docId" yaml:"doc_id"`
	Sentences int            `json:"sentences" yaml:"sentences"`
	Relations []RelationItem `json:"relations" yaml:"relations"`
	Errors    []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}
