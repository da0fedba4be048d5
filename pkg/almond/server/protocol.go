package server

import (
	"context"
	"fmt"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/seq2seq"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Request is one JSON-lines request. The token-level arrays are parallel;
// a null in nerValues decodes to the empty string, which stands for "no
// normalized value".
type Request struct {
	Req         int64    `json:"req"`
	LanguageTag string   `json:"languageTag"`
	Utterance   string   `json:"utterance"`
	Expect      string   `json:"expect,omitempty"`
	Tokens      []string `json:"tokens"`
	LemmaTokens []string `json:"lemmaTokens"`
	PosTags     []string `json:"posTags"`
	NerTags     []string `json:"nerTags"`
	NerValues   []string `json:"nerValues"`
	Sentiment   string   `json:"sentiment,omitempty"`
}

// Response echoes the request id and carries the normalized streams. Values
// is keyed by placeholder token ("DATE_0", "CURRENCY_1", ...).
type Response struct {
	Req            int64                  `json:"req"`
	Tokens         []string               `json:"tokens"`
	RawTokens      []string               `json:"rawTokens"`
	Pos            []string               `json:"pos"`
	TokensNoQuotes []string               `json:"tokensNoQuotes"`
	Values         map[string]value.Value `json:"values"`
	Sentiment      string                 `json:"sentiment"`
}

// ErrorResponse is sent instead of a Response when a request fails.
type ErrorResponse struct {
	Req   int64  `json:"req"`
	Error string `json:"error"`
}

// Service is the processing backend the server delegates to.
type Service interface {
	Tokenize(ctx context.Context, languageTag string, ex *seq2seq.Example) (*seq2seq.Result, error)
	ClearCaches()
}

// toExample converts a wire request into an engine example.
func toExample(req *Request) (*seq2seq.Example, error) {
	n := len(req.Tokens)
	if len(req.NerTags) != n || len(req.NerValues) != n || len(req.PosTags) != n {
		return nil, fmt.Errorf("%w: token array lengths differ", internalerr.ErrInvalidInput)
	}

	li := langinfo.New(req.Sentiment)
	for i := 0; i < n; i++ {
		lemma := req.Tokens[i]
		if i < len(req.LemmaTokens) {
			lemma = req.LemmaTokens[i]
		}
		tag := req.NerTags[i]
		if tag == "" {
			tag = langinfo.NoEntity
		}
		li.Append(req.Tokens[i], lemma, req.PosTags[i], tag, req.NerValues[i])
	}

	return &seq2seq.Example{
		ID:        fmt.Sprintf("req-%d", req.Req),
		Utterance: req.Utterance,
		Expect:    req.Expect,
		Info:      li,
	}, nil
}

// toResponse converts an engine result into the wire form.
func toResponse(req *Request, res *seq2seq.Result) *Response {
	values := make(map[string]value.Value, len(res.Entities))
	for key, v := range res.Entities {
		values[key.String()] = v
	}
	return &Response{
		Req:            req.Req,
		Tokens:         res.Tokens,
		RawTokens:      res.RawTokens,
		Pos:            res.PosTags,
		TokensNoQuotes: res.TokensNoQuotes,
		Values:         values,
		Sentiment:      res.Sentiment,
	}
}
