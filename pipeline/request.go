package pipeline

// Request carries one CoNLL document to the pipeline.
type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}

// Pipeline answers a request with a single JSON document holding one
// response per configuration.
type Pipeline func(request Request) <-chan string
