package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/saturnino-fabrica-de-software/pea/internal/domain"
)

// ImageInfo describes one candidate in a Retrieve body. The body is the
// painting bytes followed by the portrait bytes for each candidate in order,
// so clients slice it with the two lengths.
type ImageInfo struct {
	EntryID        string  `json:"Entry-Id"`
	PaintingID     string  `json:"Painting-Id"`
	PaintingLength int     `json:"Painting-Length"`
	PortraitLength int     `json:"Portrait-Length"`
	Distance       float64 `json:"Distance"`
}

// EncodeRetrieve builds the Retrieve body and its Image-Info header value.
func EncodeRetrieve(candidates []domain.Candidate) ([]byte, string, error) {
	size := 0
	for _, c := range candidates {
		size += len(c.Painting) + len(c.Portrait)
	}

	body := make([]byte, 0, size)
	infos := make([]ImageInfo, 0, len(candidates))
	for _, c := range candidates {
		body = append(body, c.Painting...)
		body = append(body, c.Portrait...)
		infos = append(infos, ImageInfo{
			EntryID:        c.Entry.ID.String(),
			PaintingID:     c.Entry.PaintingID,
			PaintingLength: len(c.Painting),
			PortraitLength: len(c.Portrait),
			Distance:       c.Distance,
		})
	}

	header, err := json.Marshal(infos)
	if err != nil {
		return nil, "", fmt.Errorf("encode image info: %w", err)
	}
	return body, string(header), nil
}

// SplitRetrieve is the client side of EncodeRetrieve.
func SplitRetrieve(body []byte, header string) ([]ImageInfo, [][2][]byte, error) {
	var infos []ImageInfo
	if err := json.Unmarshal([]byte(header), &infos); err != nil {
		return nil, nil, fmt.Errorf("decode image info: %w", err)
	}

	parts := make([][2][]byte, 0, len(infos))
	offset := 0
	for i, info := range infos {
		end := offset + info.PaintingLength + info.PortraitLength
		if info.PaintingLength < 0 || info.PortraitLength < 0 || end > len(body) {
			return nil, nil, fmt.Errorf("image info %d exceeds body of %d bytes", i, len(body))
		}
		mid := offset + info.PaintingLength
		parts = append(parts, [2][]byte{body[offset:mid], body[mid:end]})
		offset = end
	}
	if offset != len(body) {
		return nil, nil, fmt.Errorf("body has %d trailing bytes", len(body)-offset)
	}
	return infos, parts, nil
}
