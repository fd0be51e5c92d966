package domain

import "time"

type ReviewRecord struct {
	ID        string    `json:"id"`
	HotelID   string    `json:"hotelId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r ReviewRecord) ToDocument() Document {
	return Document{
		"hotelId":   r.HotelID,
		"userId":    r.UserID,
		"name":      r.Name,
		"rating":    r.Rating,
		"comment":   r.Comment,
		"createdAt": r.CreatedAt.UTC(),
	}
}

func ReviewFromDocument(d Document) (ReviewRecord, error) {
	rd := reader{doc: d}
	rv := ReviewRecord{
		ID:        rd.optStr(IDField),
		HotelID:   rd.str("hotelId"),
		UserID:    rd.str("userId"),
		Name:      rd.optStr("name"),
		Rating:    rd.num("rating"),
		Comment:   rd.str("comment"),
		CreatedAt: rd.stamp("createdAt"),
	}
	if rd.err != nil {
		return ReviewRecord{}, rd.err
	}
	return rv, nil
}
