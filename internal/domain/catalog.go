package domain

// Site is a drop-off location served by a route.
type Site struct {
	ID   string `json:"siteId"`
	Name string `json:"name"`
}

// Route is a fixed driver route and its sites.
type Route struct {
	ID    string `json:"routeId"`
	Label string `json:"label"`
	Sites []Site `json:"sites"`
}

// TruckNumbers is the fleet drivers can pick from when starting a shift.
var TruckNumbers = []string{
	"153", "154", "132", "133", "134", "141", "119",
	"TRUCK-01", "TRUCK-02", "TRUCK-03",
}

// Routes is the route catalog. Route and site IDs never change once published.
var Routes = []Route{
	{ID: "route_a", Label: "Route A", Sites: []Site{
		{ID: "midway", Name: "Midway"},
		{ID: "branch", Name: "Branch"},
		{ID: "hammonds", Name: "Hammonds"},
		{ID: "sanchez", Name: "Sanchez"},
		{ID: "red_springs_housing_authority", Name: "Red Springs Housing Authority"},
	}},
	{ID: "route_b", Label: "Route B", Sites: []Site{
		{ID: "marietta", Name: "Marietta"},
		{ID: "beaver_dam", Name: "Beaver Dam"},
		{ID: "chicken", Name: "Chicken"},
		{ID: "lewis_mcneill", Name: "Lewis McNeill"},
		{ID: "southeastern_ag_center", Name: "Southeastern Agricultural Center"},
	}},
	{ID: "route_c", Label: "Route C", Sites: []Site{
		{ID: "wiregrass", Name: "Wiregrass"},
		{ID: "alma", Name: "Alma"},
		{ID: "morgan_j", Name: "Morgan J"},
		{ID: "king_tuck", Name: "King Tuck"},
		{ID: "balance_farm", Name: "Balance Farm"},
	}},
	{ID: "route_d", Label: "Route D", Sites: []Site{
		{ID: "lowe_rd", Name: "Lowe Rd"},
		{ID: "south_robeson", Name: "South Robeson"},
		{ID: "purvis", Name: "Purvis"},
		{ID: "parkton", Name: "Parkton"},
		{ID: "church_community", Name: "Church & Community"},
		{ID: "homestore_warehouse", Name: "Homestore & Warehouse"},
	}},
	{ID: "route_e", Label: "Route E", Sites: []Site{
		{ID: "prospect", Name: "Prospect"},
		{ID: "sandrock", Name: "Sandrock"},
		{ID: "ivey", Name: "Ivey"},
		{ID: "lamb", Name: "Lamb"},
		{ID: "lumberton_housing_authority", Name: "Lumberton Housing Authority"},
	}},
}

// KnownTruck reports whether number is in the fleet.
func KnownTruck(number string) bool {
	for _, t := range TruckNumbers {
		if t == number {
			return true
		}
	}
	return false
}

// RouteByID looks up a route in the catalog.
func RouteByID(id string) (Route, bool) {
	for _, r := range Routes {
		if r.ID == id {
			return r, true
		}
	}
	return Route{}, false
}
