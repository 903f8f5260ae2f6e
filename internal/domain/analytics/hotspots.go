package analytics

// Hotspot is a map marker for the regional disease view. The data is
// illustrative and does not come from the ledger.
type Hotspot struct {
	ID      int     `json:"id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Area    string  `json:"area"`
	Disease string  `json:"disease"`
	Cases   int     `json:"cases"`
	Color   string  `json:"color"`
	Radius  int     `json:"radius"`
}

var hotspots = []Hotspot{
	{ID: 1, Lat: 12.9716, Lng: 77.5946, Area: "Bangalore", Disease: "Viral Fever", Cases: 120, Color: "red", Radius: 1500},
	{ID: 2, Lat: 12.9279, Lng: 77.6271, Area: "Koramangala", Disease: "Dengue", Cases: 45, Color: "orange", Radius: 800},
	{ID: 3, Lat: 12.9925, Lng: 77.6737, Area: "Whitefield", Disease: "Flu", Cases: 88, Color: "yellow", Radius: 1000},
	{ID: 4, Lat: 12.9141, Lng: 77.6101, Area: "BTM Layout", Disease: "Gastroenteritis", Cases: 30, Color: "blue", Radius: 600},
}

// Hotspots returns a copy of the static marker list.
func Hotspots() []Hotspot {
	out := make([]Hotspot, len(hotspots))
	copy(out, hotspots)
	return out
}
