package catalog

import (
	"strconv"
	"strings"

	"hotel_booking/internal/domain"
)

/********** alias registry (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":       {"id", "hotel_id", "hotelId", "property_id"},
	"name":     {"name", "hotel_name", "hotelName", "title"},
	"location": {"location", "city", "address.city", "location.city"},
	"price":    {"price", "price_per_night", "pricePerNight", "rate", "nightly_rate", "price.amount"},
	"rating":   {"rating", "stars", "score", "rating.value", "review_score"},
	"image":    {"image", "image_url", "imageUrl", "thumbnail", "photo"},
	"images":   {"images", "photos"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString: first non-empty string (or number rendered as string) for an alias set.
func firstString(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstFloat: number from several paths (float64 or string like "4,5").
func firstFloat(m map[string]any, key string) float64 {
	for _, p := range hotelAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// firstImage: accept a single string or []any of strings or {url/src}.
func firstImage(m map[string]any) string {
	if s := firstString(m, "image"); s != "" {
		return s
	}
	for _, p := range hotelAliases["images"] {
		raw, ok := lookupAny(m, p).([]any)
		if !ok {
			continue
		}
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					return t
				}
			case map[string]any:
				for _, k := range []string{"url", "src"} {
					if u, ok := t[k].(string); ok && u != "" {
						return u
					}
				}
			}
		}
	}
	return ""
}

/********** hotel mapper **********/

func mapHotel(p map[string]any) domain.Hotel {
	return domain.Hotel{
		ID:            firstString(p, "id"),
		Name:          firstString(p, "name"),
		Location:      firstString(p, "location"),
		PricePerNight: firstFloat(p, "price"),
		Rating:        firstFloat(p, "rating"),
		Image:         firstImage(p),
	}
}
