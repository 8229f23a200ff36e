package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/peter-xbs/FSM/pipeline"
	"github.com/peter-xbs/FSM/utils"
)

const defaultTid = "api"

// DefaultMaxBodyBytes limits the size of a posted CoNLL document.
const DefaultMaxBodyBytes int64 = 8 << 20

type Request struct {
	Pipeline     pipeline.Pipeline
	MaxBodyBytes int64
	cache        *lru.Cache[uint64, string]
}

// NewRequest serves documents through ppln. Responses are cached by document
// and tid when cacheSize is positive.
func NewRequest(ppln pipeline.Pipeline, cacheSize int) (*Request, error) {
	if ppln == nil {
		return nil, errors.New("api requires a pipeline")
	}
	req := &Request{Pipeline: ppln, MaxBodyBytes: DefaultMaxBodyBytes}
	if cacheSize > 0 {
		cache, err := lru.New[uint64, string](cacheSize)
		if err != nil {
			return nil, err
		}
		req.cache = cache
	}
	return req, nil
}

func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if req.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, req.MaxBodyBytes)
	}
	msg, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		logger.Err(err).Int("status", http.StatusRequestEntityTooLarge).Msg("Request body is too large")
		http.Error(w, "CoNLL document is too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}
	if len(msg) == 0 {
		logger.Error().Int("status", http.StatusBadRequest).Msg("Request body is empty")
		http.Error(w, "empty CoNLL document", http.StatusBadRequest)
		return
	}

	request := pipeline.Request{
		Tid:  requestTid(r),
		Text: string(msg),
	}
	key := utils.HashBytes([]byte(request.Tid), msg)
	if req.cache != nil {
		if resp, ok := req.cache.Get(key); ok {
			w.Header().Set("X-Relex-Cache", "hit")
			_, _ = w.Write([]byte(resp))
			logger.Info().Str("tid", request.Tid).Msg("Served request from cache")
			return
		}
	}

	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	var resp string
	select {
	case res, ok := <-req.Pipeline(request):
		if !ok {
			logger.Error().Int("status", http.StatusInternalServerError).Msg("Pipeline returned nothing")
			http.Error(w, "", http.StatusInternalServerError)
			return
		}
		resp = res
	case <-r.Context().Done():
		logger.Err(r.Context().Err()).Msg("Client went away before pipeline finished")
		return
	}

	if req.cache != nil {
		req.cache.Add(key, resp)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp)))
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func (req *Request) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func requestTid(r *http.Request) string {
	if tid := r.URL.Query().Get("tid"); tid != "" {
		return tid
	}
	return defaultTid
}
