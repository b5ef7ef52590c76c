package models

import (
	"encoding/json"
	"fmt"
)

// CardImage is one entry of the upstream record's image list.
type CardImage struct {
	ImageURL      string `json:"image_url"`
	ImageURLSmall string `json:"image_url_small,omitempty"`
}

// CardRecord is one raw entry of the upstream catalog envelope. Only the
// fields we project into the store are decoded; Raw keeps the full original
// record so search results can return it verbatim.
type CardRecord struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Desc       string      `json:"desc"`
	CardImages []CardImage `json:"card_images"`

	Raw json.RawMessage `json:"-"`
}

// Card is the stored form of a catalog entry: the projected columns plus the
// original record as JSON text. The projected fields are never mutated
// independently of Data.
type Card struct {
	ID       int64
	Name     string
	Type     string
	Desc     string
	Data     []byte
	ImageURL string
}

// Project maps a raw record into its stored form. Records without a positive
// id or without an image list are rejected; the pipeline skips those rather
// than aborting the run.
func (r CardRecord) Project() (Card, error) {
	if r.ID <= 0 {
		return Card{}, fmt.Errorf("card %q: missing id", r.Name)
	}
	if len(r.CardImages) == 0 || r.CardImages[0].ImageURL == "" {
		return Card{}, fmt.Errorf("card %d: no image url", r.ID)
	}

	data := r.Raw
	if len(data) == 0 {
		b, err := json.Marshal(r)
		if err != nil {
			return Card{}, fmt.Errorf("marshal card %d: %w", r.ID, err)
		}
		data = b
	}

	return Card{
		ID:       r.ID,
		Name:     r.Name,
		Type:     r.Type,
		Desc:     r.Desc,
		Data:     data,
		ImageURL: r.CardImages[0].ImageURL,
	}, nil
}
