package facepp

import (
	"context"
	"net/url"
)

// Candidate is one entry of a ranked search result.
type Candidate struct {
	Token      string  `json:"face_token"`
	Confidence float64 `json:"confidence"`
}

type addFaceResponse struct {
	FaceSetToken string `json:"faceset_token"`
	FaceAdded    int    `json:"face_added"`
}

type createSetResponse struct {
	FaceSetToken string `json:"faceset_token"`
}

type searchResponse struct {
	Results []Candidate `json:"results"`
}

// AddFace adds a face token to an existing face set.
func (c *Client) AddFace(ctx context.Context, faceToken, setToken string) error {
	form := url.Values{}
	form.Set("face_tokens", faceToken)
	form.Set("faceset_token", setToken)

	_, err := doPostForm[addFaceResponse](ctx, c, "faceset/addface", form)
	return err
}

// CreateSet creates a new face set seeded with the given face token and
// returns the provider-issued set token.
func (c *Client) CreateSet(ctx context.Context, faceToken, displayName string) (string, error) {
	form := url.Values{}
	form.Set("face_tokens", faceToken)
	form.Set("display_name", displayName)

	resp, err := doPostForm[createSetResponse](ctx, c, "faceset/create", form)
	if err != nil {
		return "", err
	}
	return resp.FaceSetToken, nil
}

// SearchInSet looks up the probe token in a face set and returns candidates
// ranked by confidence (best first). An empty slice means the set holds no
// similar face; that is a result, not an error.
func (c *Client) SearchInSet(ctx context.Context, probeToken, setToken string) ([]Candidate, error) {
	form := url.Values{}
	form.Set("face_token", probeToken)
	form.Set("faceset_token", setToken)

	resp, err := doPostForm[searchResponse](ctx, c, "search", form)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}
