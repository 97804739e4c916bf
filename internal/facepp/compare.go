package facepp

import (
	"context"
	"net/url"
)

type compareResponse struct {
	Confidence float64 `json:"confidence"`
}

// Compare computes the similarity confidence (0-100) between two face tokens.
func (c *Client) Compare(ctx context.Context, tokenA, tokenB string) (float64, error) {
	form := url.Values{}
	form.Set("face_token1", tokenA)
	form.Set("face_token2", tokenB)

	resp, err := doPostForm[compareResponse](ctx, c, "compare", form)
	if err != nil {
		return 0, err
	}
	return resp.Confidence, nil
}
