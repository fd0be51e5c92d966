package domain

import "github.com/cockroachdb/errors"

type Hotel struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	PricePerNight float64 `json:"price"`
	Rating        float64 `json:"rating"`
	Image         string  `json:"image"`
}

func (h Hotel) Validate() error {
	switch {
	case h.ID == "":
		return errors.Wrap(ErrMalformedDocument, "hotel: id is required")
	case h.Name == "":
		return errors.Wrapf(ErrMalformedDocument, "hotel %s: name is required", h.ID)
	case h.PricePerNight <= 0:
		return errors.Wrapf(ErrMalformedDocument, "hotel %s: price must be positive", h.ID)
	case h.Rating < 0 || h.Rating > 5:
		return errors.Wrapf(ErrMalformedDocument, "hotel %s: rating out of range", h.ID)
	}
	return nil
}

func (h Hotel) ToDocument() Document {
	return Document{
		"id":       h.ID,
		"name":     h.Name,
		"location": h.Location,
		"price":    h.PricePerNight,
		"rating":   h.Rating,
		"image":    h.Image,
		"listed":   true,
	}
}

func HotelFromDocument(d Document) (Hotel, error) {
	r := reader{doc: d}
	h := Hotel{
		ID:            r.str("id"),
		Name:          r.str("name"),
		Location:      r.optStr("location"),
		PricePerNight: r.num("price"),
		Rating:        r.optNum("rating"),
		Image:         r.optStr("image"),
	}
	if r.err != nil {
		return Hotel{}, r.err
	}
	return h, h.Validate()
}
