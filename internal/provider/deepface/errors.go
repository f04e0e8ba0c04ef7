package deepface

import "errors"

var (
	ErrInvalidResponse  = errors.New("invalid response from deepface")
	ErrNoFaceInResponse = errors.New("no face data in deepface response")
	ErrUnknownEmotion   = errors.New("deepface returned an unknown emotion label")
)
