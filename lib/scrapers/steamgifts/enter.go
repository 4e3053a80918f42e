package steamgifts

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EntryResult is the decoded ajax response of an entry submission. Raw
// always holds the untouched body for diagnostics.
type EntryResult struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
	Raw  string `json:"-"`
}

func (r EntryResult) Success() bool {
	return r.Type == "success"
}

// EnterGiveaway submits an entry for the giveaway behind `code`.
// A decoded non-success response is not an error, the caller interprets it.
func (c *Client) EnterGiveaway(ctx context.Context, xsrfToken, code string) (EntryResult, error) {
	ctx, span := tracer.Start(ctx, "client:EnterGiveaway")
	defer span.End()
	span.SetAttributes(attribute.String("code", code))

	c.submitJitter.Sleep()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"xsrf_token": xsrfToken,
			"do":         "entry_insert",
			"code":       code,
		}).
		Post("/ajax.php")
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit entry")
		return EntryResult{}, err
	}

	out := EntryResult{Raw: string(res.Body())}
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		span.SetStatus(codes.Error, "unexpected entry response body")
		return out, err
	}
	return out, nil
}
