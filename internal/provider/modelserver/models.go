package modelserver

import "github.com/saturnino-fabrica-de-software/pea/internal/geometry"

// LandmarksRequest for POST /landmarks
type LandmarksRequest struct {
	Img string `json:"img"` // base64 encoded image
	Box Box    `json:"box"`
}

type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// LandmarksResponse from POST /landmarks
type LandmarksResponse struct {
	Points []geometry.Point `json:"points"`
}

// ClassifyRequest for POST /classify
type ClassifyRequest struct {
	Img  string    `json:"img"`
	Pose []float64 `json:"pose"`
}

// ClassifyResponse from POST /classify; Index follows the classifier's label order.
type ClassifyResponse struct {
	Index  int       `json:"index"`
	Scores []float64 `json:"scores,omitempty"`
}

// StylizeRequest for POST /stylize
type StylizeRequest struct {
	Img   string `json:"img"`
	Style int    `json:"style"`
}

// StylizeResponse from POST /stylize
type StylizeResponse struct {
	Img string `json:"img"`
}

// ErrorResponse is the body the model server sends on failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
