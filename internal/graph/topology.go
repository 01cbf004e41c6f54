// README: Static city topology used by the fallback planner and the seeder.
package graph

// DefaultNetwork builds the fixed service-area topology. Edge weights double
// as travel minutes for this network.
func DefaultNetwork() *Network {
	g := NewNetwork()

	locations := []Node{
		{0, "Home (123 Main St)"},
		{1, "City General Hospital"},
		{2, "City Center Mall"},
		{3, "Central Park"},
		{4, "City Library"},
		{5, "Senior Center"},
		{6, "Rehabilitation Center"},
		{7, "Medical Clinic"},
	}
	for _, n := range locations {
		if err := g.AddNode(n.ID, n.Name); err != nil {
			panic(err) // static data, never fails
		}
	}

	edges := [][4]float64{
		{0, 1, 15, 15}, // home -> hospital
		{0, 2, 10, 10}, // home -> mall
		{0, 3, 20, 20}, // home -> park
		{1, 2, 8, 8},   // hospital -> mall
		{2, 3, 12, 12}, // mall -> park
		{3, 4, 7, 7},   // park -> library
		{4, 0, 18, 18}, // library -> home
		{5, 1, 5, 5},   // senior center -> hospital
		{6, 1, 7, 7},   // rehab center -> hospital
		{7, 1, 3, 3},   // clinic -> hospital
	}
	for _, e := range edges {
		if err := g.AddEdge(int(e[0]), int(e[1]), e[2], e[3]); err != nil {
			panic(err)
		}
	}
	return g
}
