package facepp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Rectangle is the bounding box of a detected face in pixel coordinates.
type Rectangle struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Face is a single detected face with the attributes the quality gate needs.
// Quality and Blur are on the provider's 0-100 scale (higher blur = blurrier).
type Face struct {
	Token     string
	Rectangle Rectangle
	Quality   float64
	Blur      float64
}

// detectResponse mirrors the subset of the Face++ detect payload we consume.
type detectResponse struct {
	Faces []struct {
		FaceToken     string    `json:"face_token"`
		FaceRectangle Rectangle `json:"face_rectangle"`
		Attributes    struct {
			FaceQuality struct {
				Value float64 `json:"value"`
			} `json:"facequality"`
			Blur struct {
				Blurness struct {
					Value float64 `json:"value"`
				} `json:"blurness"`
			} `json:"blur"`
		} `json:"attributes"`
	} `json:"faces"`
}

// Detect uploads a base64-encoded image and returns all detected faces.
// Returns ErrNoFace when the provider finds no face in the image.
func (c *Client) Detect(ctx context.Context, imageBase64 string) ([]Face, error) {
	form := url.Values{}
	form.Set("image_base64", imageBase64)
	form.Set("return_attributes", "facequality,blur")

	resp, err := doPostForm[detectResponse](ctx, c, "detect", form)
	if err != nil {
		return nil, err
	}

	if len(resp.Faces) == 0 {
		return nil, fmt.Errorf("detect: %w", ErrNoFace)
	}

	faces := make([]Face, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, Face{
			Token:     f.FaceToken,
			Rectangle: f.FaceRectangle,
			Quality:   f.Attributes.FaceQuality.Value,
			Blur:      f.Attributes.Blur.Blurness.Value,
		})
	}
	return faces, nil
}

// MarshalJSON keeps Face serializable for logs and API responses.
func (f Face) MarshalJSON() ([]byte, error) {
	type alias struct {
		Token     string    `json:"face_token"`
		Rectangle Rectangle `json:"face_rectangle"`
		Quality   float64   `json:"quality"`
		Blur      float64   `json:"blur"`
	}
	return json.Marshal(alias(f))
}
