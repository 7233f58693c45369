package geolib

import "strings"

type cityCoords struct {
	lat float64
	lon float64
}

// staticCities covers the cities that commonly host VPN and relay
// infrastructure, so a group-geocode timeout still produces usable
// coordinates for most endpoint directories. Keys are
// "city|country" with full lowercase country names.
var staticCities = map[string]cityCoords{
	"amsterdam|netherlands":      {52.3676, 4.9041},
	"ashburn|united states":      {39.0438, -77.4874},
	"athens|greece":              {37.9838, 23.7275},
	"atlanta|united states":      {33.7490, -84.3880},
	"auckland|new zealand":       {-36.8509, 174.7645},
	"bangkok|thailand":           {13.7563, 100.5018},
	"barcelona|spain":            {41.3874, 2.1686},
	"belgrade|serbia":            {44.7866, 20.4489},
	"berlin|germany":             {52.5200, 13.4050},
	"bogota|colombia":            {4.7110, -74.0721},
	"bratislava|slovakia":        {48.1486, 17.1077},
	"brussels|belgium":           {50.8503, 4.3517},
	"bucharest|romania":          {44.4268, 26.1025},
	"budapest|hungary":           {47.4979, 19.0402},
	"buenos aires|argentina":     {-34.6037, -58.3816},
	"chicago|united states":      {41.8781, -87.6298},
	"copenhagen|denmark":         {55.6761, 12.5683},
	"dallas|united states":       {32.7767, -96.7970},
	"dubai|united arab emirates": {25.2048, 55.2708},
	"dublin|ireland":             {53.3498, -6.2603},
	"frankfurt|germany":          {50.1109, 8.6821},
	"helsinki|finland":           {60.1699, 24.9384},
	"hong kong|hong kong":        {22.3193, 114.1694},
	"johannesburg|south africa":  {-26.2041, 28.0473},
	"kyiv|ukraine":               {50.4501, 30.5234},
	"lisbon|portugal":            {38.7223, -9.1393},
	"london|united kingdom":      {51.5074, -0.1278},
	"los angeles|united states":  {34.0522, -118.2437},
	"madrid|spain":               {40.4168, -3.7038},
	"marseille|france":           {43.2965, 5.3698},
	"melbourne|australia":        {-37.8136, 144.9631},
	"mexico city|mexico":         {19.4326, -99.1332},
	"miami|united states":        {25.7617, -80.1918},
	"milan|italy":                {45.4642, 9.1900},
	"montreal|canada":            {45.5017, -73.5673},
	"mumbai|india":               {19.0760, 72.8777},
	"new york|united states":     {40.7128, -74.0060},
	"oslo|norway":                {59.9139, 10.7522},
	"paris|france":               {48.8566, 2.3522},
	"prague|czechia":             {50.0755, 14.4378},
	"reykjavik|iceland":          {64.1466, -21.9426},
	"riga|latvia":                {56.9496, 24.1052},
	"sao paulo|brazil":           {-23.5505, -46.6333},
	"seattle|united states":      {47.6062, -122.3321},
	"seoul|south korea":          {37.5665, 126.9780},
	"singapore|singapore":        {1.3521, 103.8198},
	"sofia|bulgaria":             {42.6977, 23.3219},
	"stockholm|sweden":           {59.3293, 18.0686},
	"sydney|australia":           {-33.8688, 151.2093},
	"tallinn|estonia":            {59.4370, 24.7536},
	"tel aviv|israel":            {32.0853, 34.7818},
	"tokyo|japan":                {35.6762, 139.6503},
	"toronto|canada":             {43.6532, -79.3832},
	"vienna|austria":             {48.2082, 16.3738},
	"vilnius|lithuania":          {54.6872, 25.2797},
	"warsaw|poland":              {52.2297, 21.0122},
	"zurich|switzerland":         {47.3769, 8.5417},
}

func staticCityCoordinates(city, country string) (Location, bool) {
	coords, ok := staticCities[geocodeKey(city, country)]
	if !ok {
		return Location{}, false
	}

	return Location{
		Latitude:  coords.lat,
		Longitude: coords.lon,
		Country:   strings.TrimSpace(country),
		City:      strings.TrimSpace(city),
	}, true
}
